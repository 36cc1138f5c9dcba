package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zfogg/blogicum/internal/logger"
	"github.com/zfogg/blogicum/internal/models"
	"github.com/zfogg/blogicum/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ResetTokenTTL is how long a password reset link stays valid
const ResetTokenTTL = time.Hour

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWrongPassword      = errors.New("old password is incorrect")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
)

// Service handles all account operations
type Service struct {
	users      repository.UserRepository
	bcryptCost int
	now        func() time.Time
}

// NewService creates a new account service
func NewService(users repository.UserRepository) *Service {
	return &Service{
		users:      users,
		bcryptCost: bcrypt.DefaultCost,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithBcryptCost overrides the hashing cost (tests use bcrypt.MinCost)
func (s *Service) WithBcryptCost(cost int) *Service {
	s.bcryptCost = cost
	return s
}

// RegisterRequest carries a validated registration form
type RegisterRequest struct {
	Username  string
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// Register creates a new user with a hashed password
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:       req.Username,
		FirstName:      strings.TrimSpace(req.FirstName),
		LastName:       strings.TrimSpace(req.LastName),
		Email:          strings.TrimSpace(req.Email),
		PasswordHash:   hash,
		SessionVersion: 1,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUsernameTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logger.Log.Info("User registered",
		logger.WithUserID(user.ID),
		zap.String("username", user.Username),
	)

	return user, nil
}

// Authenticate checks a username and password pair
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// ChangePassword verifies the old password and stores the new one. The
// user's session version is bumped so sessions issued before the change
// stop working; user is updated in place.
func (s *Service) ChangePassword(ctx context.Context, user *models.User, oldPassword, newPassword string) error {
	if !CheckPassword(user.PasswordHash, oldPassword) {
		return ErrWrongPassword
	}

	return s.setPassword(ctx, user, newPassword)
}

// RequestPasswordReset creates a reset token for the account with email.
// It returns nil without error when no account matches.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (*models.PasswordReset, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	// 64 hex characters from two UUIDs
	token := strings.ReplaceAll(uuid.New().String()+uuid.New().String(), "-", "")

	reset := &models.PasswordReset{
		UserID:    user.ID,
		User:      *user,
		Token:     token,
		ExpiresAt: s.now().Add(ResetTokenTTL),
	}
	if err := s.users.CreatePasswordReset(ctx, reset); err != nil {
		return nil, fmt.Errorf("failed to create reset token: %w", err)
	}

	return reset, nil
}

// CheckResetToken returns the reset record for a token that can still be redeemed
func (s *Service) CheckResetToken(ctx context.Context, token string) (*models.PasswordReset, error) {
	reset, err := s.users.GetPasswordReset(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrResetNotFound) {
			return nil, ErrInvalidResetToken
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !reset.IsUsable(s.now()) {
		return nil, ErrInvalidResetToken
	}

	return reset, nil
}

// ResetPassword redeems a reset token and sets the new password
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) (*models.User, error) {
	reset, err := s.CheckResetToken(ctx, token)
	if err != nil {
		return nil, err
	}

	user := reset.User
	if err := s.setPassword(ctx, &user, newPassword); err != nil {
		return nil, err
	}

	if err := s.users.MarkPasswordResetUsed(ctx, reset.ID); err != nil {
		logger.WarnWithFields("Failed to mark reset token as used", err)
	}

	return &user, nil
}

func (s *Service) setPassword(ctx context.Context, user *models.User, password string) error {
	hash, err := s.hashPassword(password)
	if err != nil {
		return err
	}

	version, err := s.users.SetPassword(ctx, user.ID, hash)
	if err != nil {
		return err
	}

	user.PasswordHash = hash
	user.SessionVersion = version
	return nil
}

func (s *Service) hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// CheckPassword compares a bcrypt hash with a plaintext password
func CheckPassword(hash, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
