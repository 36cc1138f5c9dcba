package util

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/blogicum/internal/repository"
	"gorm.io/gorm"
)

var notFoundErrors = []error{
	gorm.ErrRecordNotFound,
	repository.ErrUserNotFound,
	repository.ErrPostNotFound,
	repository.ErrCommentNotFound,
	repository.ErrCategoryNotFound,
	repository.ErrLocationNotFound,
	repository.ErrPageOutOfRange,
}

// IsNotFound reports whether err means the requested resource does not exist
// (or is not visible, which is reported the same way)
func IsNotFound(err error) bool {
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// HandleDBError renders the error page for a failed lookup.
// Returns true if the error was handled (and a response was sent), false otherwise.
func HandleDBError(c *gin.Context, err error, resourceName string) bool {
	if err == nil {
		return false
	}

	if IsNotFound(err) {
		RenderNotFound(c, resourceName)
		return true
	}

	RenderInternalError(c, err)
	return true
}
