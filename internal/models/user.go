package models

import (
	"strings"
	"time"
)

// User is a registered blog account
type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"size:150;uniqueIndex;not null" json:"username"`
	FirstName    string `gorm:"size:150" json:"first_name"`
	LastName     string `gorm:"size:150" json:"last_name"`
	Email        string `gorm:"size:254;index" json:"email"`
	PasswordHash string `gorm:"type:text;not null" json:"-"`

	// SessionVersion is embedded in session tokens. Bumping it logs out
	// every session issued before the bump.
	SessionVersion int  `gorm:"not null" json:"-"`
	IsStaff        bool `gorm:"not null" json:"is_staff"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName joins first and last name
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// DisplayName returns the full name, falling back to the username
func (u *User) DisplayName() string {
	if name := u.FullName(); name != "" {
		return name
	}
	return u.Username
}
