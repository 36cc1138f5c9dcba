package repository

import (
	"context"
	"errors"

	"github.com/zfogg/blogicum/internal/models"
	"gorm.io/gorm"
)

// LocationRepository handles all database operations for locations
type LocationRepository interface {
	CreateLocation(ctx context.Context, location *models.Location) error
	GetLocation(ctx context.Context, locationID uint) (*models.Location, error)
	ListLocations(ctx context.Context, publishedOnly bool) ([]models.Location, error)
	SetPublished(ctx context.Context, locationID uint, published bool) error
}

// locationRepository implements LocationRepository interface
type locationRepository struct {
	db *gorm.DB
}

// NewLocationRepository creates a new location repository
func NewLocationRepository(db *gorm.DB) LocationRepository {
	return &locationRepository{db: db}
}

// CreateLocation creates a new location
func (r *locationRepository) CreateLocation(ctx context.Context, location *models.Location) error {
	if location == nil || location.Name == "" {
		return ErrInvalidInput
	}

	return r.db.WithContext(ctx).Create(location).Error
}

// GetLocation gets a location by ID
func (r *locationRepository) GetLocation(ctx context.Context, locationID uint) (*models.Location, error) {
	var location models.Location
	err := r.db.WithContext(ctx).Where("id = ?", locationID).Take(&location).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLocationNotFound
	}
	if err != nil {
		return nil, err
	}

	return &location, nil
}

// ListLocations lists locations by name
func (r *locationRepository) ListLocations(ctx context.Context, publishedOnly bool) ([]models.Location, error) {
	query := r.db.WithContext(ctx)
	if publishedOnly {
		query = query.Where("is_published = ?", true)
	}

	var locations []models.Location
	err := query.Order("name ASC").Order("id ASC").Find(&locations).Error
	return locations, err
}

// SetPublished toggles the published flag of a location
func (r *locationRepository) SetPublished(ctx context.Context, locationID uint, published bool) error {
	result := r.db.WithContext(ctx).
		Model(&models.Location{}).
		Where("id = ?", locationID).
		Update("is_published", published)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLocationNotFound
	}
	return nil
}
