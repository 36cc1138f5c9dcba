package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	apperrors "github.com/zfogg/blogicum/internal/errors"
	"github.com/zfogg/blogicum/internal/logger"
	"github.com/zfogg/blogicum/internal/util"
	"go.uber.org/zap"
)

// StaticPage renders a page with no data of its own
func (h *Handlers) StaticPage(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.render(c, http.StatusOK, name, gin.H{})
	}
}

// NotFound renders the 404 page for unknown URLs
func (h *Handlers) NotFound(c *gin.Context) {
	util.RenderNotFound(c, "page")
}

// Recover renders the 500 page after a handler panic
func (h *Handlers) Recover(c *gin.Context, recovered any) {
	logger.Log.Error("Recovered from panic",
		zap.Any("panic", recovered),
		zap.String("path", c.Request.URL.Path),
		logger.WithRequestID(util.GetRequestID(c)),
	)
	util.RenderAppError(c, apperrors.InternalError("internal server error"))
}

// Health reports whether the database answers
// GET /health
func Health(check func() error) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		body := gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   "blogicum",
		}

		if check != nil {
			if err := check(); err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "unavailable"
				body["error"] = err.Error()
			}
		}

		c.JSON(status, body)
	}
}
