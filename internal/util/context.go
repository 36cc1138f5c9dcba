package util

import (
	"github.com/gin-gonic/gin"
	"github.com/zfogg/blogicum/internal/models"
)

// Context keys shared by middleware and handlers
const (
	UserKey      = "user"
	RequestIDKey = "request_id"
	CSRFTokenKey = "csrf_token"
)

// SetCurrentUser stores the authenticated user in the Gin context
func SetCurrentUser(c *gin.Context, user *models.User) {
	c.Set(UserKey, user)
}

// GetUserFromContext extracts the authenticated user from the Gin context.
// Returns the user and true if found, or nil and false for anonymous visitors.
func GetUserFromContext(c *gin.Context) (*models.User, bool) {
	user, exists := c.Get(UserKey)
	if !exists {
		return nil, false
	}
	userPtr, ok := user.(*models.User)
	if !ok || userPtr == nil {
		return nil, false
	}
	return userPtr, true
}

// GetUserIDFromContext returns the authenticated user's ID, or 0 for anonymous visitors
func GetUserIDFromContext(c *gin.Context) uint {
	if user, ok := GetUserFromContext(c); ok {
		return user.ID
	}
	return 0
}

// GetRequestID returns the request ID set by the request ID middleware
func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}

// PageData merges data with the values every page template needs
func PageData(c *gin.Context, data gin.H) gin.H {
	merged := gin.H{
		"csrf_token":   c.GetString(CSRFTokenKey),
		"request_path": c.Request.URL.Path,
	}
	if user, ok := GetUserFromContext(c); ok {
		merged["user"] = user
	}
	for k, v := range data {
		merged[k] = v
	}
	return merged
}
