package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apperrors "github.com/zfogg/blogicum/internal/errors"
	"github.com/zfogg/blogicum/internal/logger"
	"github.com/zfogg/blogicum/internal/util"
	"go.uber.org/zap"
)

const (
	// CSRFCookieName holds the per-browser CSRF token
	CSRFCookieName = "csrftoken"
	// CSRFFormField is the hidden form input carrying the token back
	CSRFFormField = "csrfmiddlewaretoken"
	// CSRFHeader is accepted instead of the form field
	CSRFHeader = "X-CSRFToken"

	csrfTokenLength = 32
	csrfCookieAge   = 365 * 24 * 60 * 60
)

// CSRF rejection reasons, shown on the 403 page
const (
	CSRFReasonNoCookie = "CSRF cookie not set."
	CSRFReasonBadToken = "CSRF token missing or incorrect."
)

// CSRFMiddleware implements double-submit CSRF protection: every response
// carries a token cookie, and every unsafe request must echo it in the
// csrfmiddlewaretoken form field or the X-CSRFToken header.
func CSRFMiddleware(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ""
		if cookie, err := c.Request.Cookie(CSRFCookieName); err == nil && validCSRFToken(cookie.Value) {
			token = cookie.Value
		}

		if !isSafeMethod(c.Request.Method) {
			if token == "" {
				rejectCSRF(c, "missing_cookie", CSRFReasonNoCookie)
				return
			}

			submitted := c.PostForm(CSRFFormField)
			if submitted == "" {
				submitted = c.GetHeader(CSRFHeader)
			}
			if subtle.ConstantTimeCompare([]byte(submitted), []byte(token)) != 1 {
				rejectCSRF(c, "bad_token", CSRFReasonBadToken)
				return
			}
		}

		if token == "" {
			token = NewCSRFToken()
			http.SetCookie(c.Writer, &http.Cookie{
				Name:     CSRFCookieName,
				Value:    token,
				Path:     "/",
				MaxAge:   csrfCookieAge,
				Secure:   secure,
				SameSite: http.SameSiteLaxMode,
			})
		}

		c.Set(util.CSRFTokenKey, token)
		c.Next()
	}
}

// NewCSRFToken returns a fresh random token
func NewCSRFToken() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

func validCSRFToken(token string) bool {
	if len(token) != csrfTokenLength {
		return false
	}
	for _, r := range token {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f') {
			return false
		}
	}
	return true
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

func rejectCSRF(c *gin.Context, metricReason, reason string) {
	RecordCSRFFailure(metricReason)
	logger.Log.Warn("CSRF verification failed",
		zap.String("reason", metricReason),
		zap.String("path", c.Request.URL.Path),
		logger.WithIP(c.ClientIP()),
	)
	util.RenderAppError(c, apperrors.CSRFFailure(reason))
}
