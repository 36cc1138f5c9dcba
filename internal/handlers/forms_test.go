package handlers

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterValidatorsInstallsUsernameRule(t *testing.T) {
	require.NoError(t, registerValidators())
	// Repeat calls keep the first result
	require.NoError(t, registerValidators())

	tests := []struct {
		username string
		valid    bool
	}{
		{"ann", true},
		{"ann.author+blog@home_1-x", true},
		{"ann author", false},
		{"ann!", false},
	}

	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			form := ProfileForm{Username: tt.username}
			err := binding.Validator.ValidateStruct(&form)
			assert.Equal(t, tt.valid, err == nil, "%v", err)
		})
	}
}
