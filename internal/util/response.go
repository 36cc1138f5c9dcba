package util

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/zfogg/blogicum/internal/errors"
	"github.com/zfogg/blogicum/internal/logger"
	"go.uber.org/zap"
)

// Error page templates by status
const (
	NotFoundTemplate = "errors/404.html"
	CSRFTemplate     = "errors/403csrf.html"
	ServerTemplate   = "errors/500.html"
	GenericTemplate  = "errors/error.html"
)

// RenderAppError logs an application error and renders its error page
func RenderAppError(c *gin.Context, appErr *apperrors.AppError) {
	fields := []zap.Field{
		zap.String("code", string(appErr.Code)),
		zap.String("message", appErr.Message),
		zap.String("path", c.Request.URL.Path),
		logger.WithRequestID(GetRequestID(c)),
	}
	if appErr.Details != "" {
		fields = append(fields, zap.String("details", appErr.Details))
	}

	if appErr.Status >= http.StatusInternalServerError {
		logger.Log.Error("Request failed", fields...)
	} else {
		logger.Log.Warn("Request rejected", fields...)
	}

	c.HTML(appErr.Status, templateFor(appErr), PageData(c, gin.H{
		"status":  appErr.Status,
		"message": appErr.Message,
		"reason":  appErr.Details,
	}))
	c.Abort()
}

// RenderError renders the error page matching err. Lookup misses become
// 404 pages; anything unrecognised is a 500.
func RenderError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
	case IsNotFound(err):
		appErr = apperrors.NotFound("page")
	default:
		appErr = apperrors.InternalError("internal server error").WithDetails(err.Error())
	}
	RenderAppError(c, appErr)
}

// RenderNotFound renders the 404 page
func RenderNotFound(c *gin.Context, resource string) {
	RenderAppError(c, apperrors.NotFound(resource))
}

// RenderInternalError logs err and renders the 500 page
func RenderInternalError(c *gin.Context, err error) {
	RenderAppError(c, apperrors.InternalError("internal server error").WithDetails(err.Error()))
}

func templateFor(appErr *apperrors.AppError) string {
	switch {
	case appErr.Code == apperrors.ErrCSRF:
		return CSRFTemplate
	case appErr.Status == http.StatusNotFound:
		return NotFoundTemplate
	case appErr.Status >= http.StatusInternalServerError:
		return ServerTemplate
	default:
		return GenericTemplate
	}
}
