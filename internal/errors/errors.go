package errors

import (
	"fmt"
	"net/http"
)

// AppError is an error that maps onto an HTTP response page
type AppError struct {
	Code    ErrorCode
	Message string
	Field   string
	Details string
	Status  int
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NotFound creates a NOT_FOUND error
func NotFound(resource string) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Status:  http.StatusNotFound,
	}
}

// CSRFFailure creates a CSRF_FAILURE error
func CSRFFailure(reason string) *AppError {
	return &AppError{
		Code:    ErrCSRF,
		Message: "CSRF verification failed",
		Details: reason,
		Status:  http.StatusForbidden,
	}
}

// InternalError creates an INTERNAL_ERROR
func InternalError(message string) *AppError {
	return &AppError{
		Code:    ErrInternalError,
		Message: message,
		Status:  http.StatusInternalServerError,
	}
}

// RateLimited creates a RATE_LIMITED error
func RateLimited(message string) *AppError {
	if message == "" {
		message = "rate limit exceeded"
	}
	return &AppError{
		Code:    ErrRateLimited,
		Message: message,
		Status:  http.StatusTooManyRequests,
	}
}

// ServiceUnavailable creates a SERVICE_UNAVAILABLE error
func ServiceUnavailable(service string) *AppError {
	return &AppError{
		Code:    ErrServiceUnavail,
		Message: fmt.Sprintf("%s is temporarily unavailable", service),
		Status:  http.StatusServiceUnavailable,
	}
}

// WithDetails adds additional details to an error
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}
