package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// ServiceError is a service-level error carrying an HTTP status so that
// controllers can map failures to responses without string matching.
type ServiceError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode,omitempty"`
	Cause      error  `json:"-"`
}

func (e ServiceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e ServiceError) Unwrap() error {
	return e.Cause
}

// GetServiceError extracts a ServiceError from an error chain.
func GetServiceError(err error) (ServiceError, bool) {
	var se ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return ServiceError{}, false
}

func NewValidationError(message string) error {
	return ServiceError{
		Code:       ErrCodeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewNotFoundError(resource string) error {
	return ServiceError{
		Code:       ErrCodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string) error {
	return ServiceError{
		Code:       ErrCodeAuthentication,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewNotAuthorizedError(message string) error {
	return ServiceError{
		Code:       ErrCodeAuthorization,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewConflictError(message string) error {
	return ServiceError{
		Code:       ErrCodeConflict,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

// NewDiscoveryUnavailableError marks a proximity backend failure. The intake
// orchestrator absorbs it; other callers surface it as 503.
func NewDiscoveryUnavailableError(cause error) error {
	return ServiceError{
		Code:       ErrCodeDiscoveryUnavailable,
		Message:    "Failed to find nearby helpers",
		StatusCode: http.StatusServiceUnavailable,
		Cause:      cause,
	}
}

func NewDatabaseError(operation string, cause error) error {
	return ServiceError{
		Code:       ErrCodeDatabase,
		Message:    fmt.Sprintf("Database operation failed: %s", operation),
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// IsDiscoveryUnavailable reports whether err is a proximity backend failure.
func IsDiscoveryUnavailable(err error) bool {
	se, ok := GetServiceError(err)
	return ok && se.Code == ErrCodeDiscoveryUnavailable
}

// Error code constants.
const (
	ErrCodeValidation           = "VALIDATION_ERROR"
	ErrCodeAuthentication       = "AUTHENTICATION_ERROR"
	ErrCodeAuthorization        = "AUTHORIZATION_ERROR"
	ErrCodeNotFound             = "NOT_FOUND"
	ErrCodeConflict             = "CONFLICT"
	ErrCodeRateLimit            = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal             = "INTERNAL_ERROR"
	ErrCodeDatabase             = "DATABASE_ERROR"
	ErrCodeDiscoveryUnavailable = "DISCOVERY_UNAVAILABLE"
)
