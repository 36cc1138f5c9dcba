package middleware

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/blogicum/internal/auth"
	"github.com/zfogg/blogicum/internal/logger"
	"github.com/zfogg/blogicum/internal/models"
	"github.com/zfogg/blogicum/internal/util"
	"go.uber.org/zap"
)

// LoginURL is where anonymous visitors are sent for login-only pages
const LoginURL = "/auth/login/"

// UserLoader loads the account behind a session
type UserLoader interface {
	GetUser(ctx context.Context, userID uint) (*models.User, error)
}

// LoadSession resolves the session cookie to the current user. Requests
// without a valid session continue anonymously, and stale cookies (expired,
// tampered, or from before a password change) are cleared.
func LoadSession(sessions *auth.SessionManager, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := c.Request.Cookie(auth.SessionCookieName); err != nil {
			c.Next()
			return
		}

		claims, err := sessions.FromRequest(c.Request)
		if err != nil {
			logger.Log.Debug("Discarding invalid session", zap.Error(err))
			sessions.Logout(c.Writer)
			c.Next()
			return
		}

		user, err := users.GetUser(c.Request.Context(), claims.UserID)
		if err != nil || !claims.Matches(user) {
			logger.Log.Debug("Discarding stale session",
				logger.WithUserID(claims.UserID),
				zap.Error(err),
			)
			sessions.Logout(c.Writer)
			c.Next()
			return
		}

		util.SetCurrentUser(c, user)
		c.Next()
	}
}

// RequireLogin redirects anonymous visitors to the login page, remembering
// where they were going
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := util.GetUserFromContext(c); ok {
			c.Next()
			return
		}

		status := http.StatusFound
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			status = http.StatusSeeOther
		}
		c.Redirect(status, LoginURL+"?next="+url.QueryEscape(c.Request.URL.RequestURI()))
		c.Abort()
	}
}
