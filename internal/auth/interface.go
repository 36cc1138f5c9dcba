package auth

import (
	"context"

	"github.com/zfogg/blogicum/internal/models"
)

// ServiceInterface defines the contract for account operations used by the handlers
type ServiceInterface interface {
	// Registration and Login
	Register(ctx context.Context, req RegisterRequest) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)

	// Password change
	ChangePassword(ctx context.Context, user *models.User, oldPassword, newPassword string) error

	// Password reset
	RequestPasswordReset(ctx context.Context, email string) (*models.PasswordReset, error)
	CheckResetToken(ctx context.Context, token string) (*models.PasswordReset, error)
	ResetPassword(ctx context.Context, token, newPassword string) (*models.User, error)
}

// Ensure Service implements ServiceInterface
var _ ServiceInterface = (*Service)(nil)
