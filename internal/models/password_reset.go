package models

import "time"

// PasswordReset is a single-use password reset token
type PasswordReset struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"not null;index" json:"user_id"`
	User   User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`

	Token     string    `gorm:"size:64;uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	Used      bool      `gorm:"not null" json:"used"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsUsable reports whether the token can still be redeemed at now
func (r *PasswordReset) IsUsable(now time.Time) bool {
	return !r.Used && now.Before(r.ExpiresAt)
}
