package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUserDisplayName(t *testing.T) {
	u := User{Username: "leo"}
	assert.Equal(t, "leo", u.DisplayName())

	u.FirstName = "Leo"
	u.LastName = "Tolstoy"
	assert.Equal(t, "Leo Tolstoy", u.DisplayName())

	u.FirstName = ""
	assert.Equal(t, "Tolstoy", u.FullName())
}

func TestPostAuthorship(t *testing.T) {
	p := Post{AuthorID: 7}
	assert.True(t, p.IsAuthoredBy(7))
	assert.False(t, p.IsAuthoredBy(8))
	assert.False(t, (&Post{}).IsAuthoredBy(0), "anonymous viewers never own a post")
}

func TestPasswordResetIsUsable(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	r := PasswordReset{ExpiresAt: now.Add(time.Hour)}

	assert.True(t, r.IsUsable(now))
	assert.False(t, r.IsUsable(now.Add(2*time.Hour)))

	r.Used = true
	assert.False(t, r.IsUsable(now))
}
