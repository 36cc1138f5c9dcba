package repository

import (
	"context"
	"errors"

	"github.com/zfogg/blogicum/internal/models"
	"gorm.io/gorm"
)

// CategoryRepository handles all database operations for categories
type CategoryRepository interface {
	CreateCategory(ctx context.Context, category *models.Category) error
	GetCategory(ctx context.Context, categoryID uint) (*models.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error)
	GetPublishedCategory(ctx context.Context, slug string) (*models.Category, error)
	ListCategories(ctx context.Context, publishedOnly bool) ([]models.Category, error)
	SetPublished(ctx context.Context, slug string, published bool) error
}

// categoryRepository implements CategoryRepository interface
type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// CreateCategory creates a new category
func (r *categoryRepository) CreateCategory(ctx context.Context, category *models.Category) error {
	if category == nil || category.Slug == "" || category.Title == "" {
		return ErrInvalidInput
	}

	return r.db.WithContext(ctx).Create(category).Error
}

// GetCategory gets a category by ID
func (r *categoryRepository) GetCategory(ctx context.Context, categoryID uint) (*models.Category, error) {
	return r.take(ctx, "id = ?", categoryID)
}

// GetCategoryBySlug gets a category by slug whether or not it is published
func (r *categoryRepository) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return r.take(ctx, "slug = ?", slug)
}

// GetPublishedCategory gets a published category by slug. Unpublished
// categories are reported as missing.
func (r *categoryRepository) GetPublishedCategory(ctx context.Context, slug string) (*models.Category, error) {
	return r.take(ctx, "slug = ? AND is_published = ?", slug, true)
}

// ListCategories lists categories by title
func (r *categoryRepository) ListCategories(ctx context.Context, publishedOnly bool) ([]models.Category, error) {
	query := r.db.WithContext(ctx)
	if publishedOnly {
		query = query.Where("is_published = ?", true)
	}

	var categories []models.Category
	err := query.Order("title ASC").Order("id ASC").Find(&categories).Error
	return categories, err
}

// SetPublished toggles the published flag of a category
func (r *categoryRepository) SetPublished(ctx context.Context, slug string, published bool) error {
	result := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("slug = ?", slug).
		Update("is_published", published)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (r *categoryRepository) take(ctx context.Context, query string, args ...interface{}) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).Where(query, args...).Take(&category).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}

	return &category, nil
}
