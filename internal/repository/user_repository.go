package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/zfogg/blogicum/internal/models"
	"gorm.io/gorm"
)

// UserRepository handles all database operations for users and their password reset tokens
type UserRepository interface {
	// User CRUD
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, userID uint) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UsernameTaken(ctx context.Context, username string, exceptUserID uint) (bool, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	SetPassword(ctx context.Context, userID uint, passwordHash string) (int, error)
	SetStaff(ctx context.Context, username string, staff bool) error

	// Password resets
	CreatePasswordReset(ctx context.Context, reset *models.PasswordReset) error
	GetPasswordReset(ctx context.Context, token string) (*models.PasswordReset, error)
	MarkPasswordResetUsed(ctx context.Context, resetID uint) error
}

// userRepository implements UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// CreateUser creates a new user
func (r *userRepository) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil || user.Username == "" {
		return ErrInvalidInput
	}

	taken, err := r.UsernameTaken(ctx, user.Username, 0)
	if err != nil {
		return err
	}
	if taken {
		return ErrUsernameTaken
	}

	return r.db.WithContext(ctx).Create(user).Error
}

// GetUser gets a user by ID
func (r *userRepository) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", userID).Take(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	return &user, err
}

// GetUserByEmail gets a user by email (case-insensitive)
func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?)", email).
		Order("id").
		First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	return &user, err
}

// GetUserByUsername gets a user by exact username
func (r *userRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		Take(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	return &user, err
}

// UsernameTaken reports whether another user already has username
func (r *userRepository) UsernameTaken(ctx context.Context, username string, exceptUserID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("username = ? AND id <> ?", username, exceptUserID).
		Count(&count).Error
	return count > 0, err
}

// UpdateProfile saves the user-editable profile fields
func (r *userRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	if user == nil || user.ID == 0 {
		return ErrInvalidInput
	}

	taken, err := r.UsernameTaken(ctx, user.Username, user.ID)
	if err != nil {
		return err
	}
	if taken {
		return ErrUsernameTaken
	}

	return r.db.WithContext(ctx).
		Model(&models.User{ID: user.ID}).
		Select("username", "first_name", "last_name", "email").
		Updates(user).Error
}

// SetPassword stores a new password hash and bumps the session version,
// returning the new version
func (r *userRepository) SetPassword(ctx context.Context, userID uint, passwordHash string) (int, error) {
	var version int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.User{}).
			Where("id = ?", userID).
			Updates(map[string]interface{}{
				"password_hash":   passwordHash,
				"session_version": gorm.Expr("session_version + 1"),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}

		var user models.User
		if err := tx.Select("session_version").Where("id = ?", userID).Take(&user).Error; err != nil {
			return err
		}
		version = user.SessionVersion
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to set password: %w", err)
	}

	return version, nil
}

// SetStaff grants or revokes staff status
func (r *userRepository) SetStaff(ctx context.Context, username string, staff bool) error {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("username = ?", username).
		Update("is_staff", staff)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// CreatePasswordReset stores a password reset token
func (r *userRepository) CreatePasswordReset(ctx context.Context, reset *models.PasswordReset) error {
	if reset == nil || reset.UserID == 0 || reset.Token == "" {
		return ErrInvalidInput
	}

	return r.db.WithContext(ctx).Omit("User").Create(reset).Error
}

// GetPasswordReset gets a reset token with its user
func (r *userRepository) GetPasswordReset(ctx context.Context, token string) (*models.PasswordReset, error) {
	var reset models.PasswordReset
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("token = ?", token).
		Take(&reset).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrResetNotFound
	}
	if err != nil {
		return nil, err
	}

	return &reset, nil
}

// MarkPasswordResetUsed consumes a reset token
func (r *userRepository) MarkPasswordResetUsed(ctx context.Context, resetID uint) error {
	return r.db.WithContext(ctx).
		Model(&models.PasswordReset{}).
		Where("id = ?", resetID).
		Update("used", true).Error
}
