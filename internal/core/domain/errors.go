package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents categorized error types.
// These codes are stable and can be used for programmatic error handling.
type ErrorCode string

const (
	ErrCodeConfigMissing       ErrorCode = "config_missing"
	ErrCodeCacheWrite          ErrorCode = "cache_write_failed"
	ErrCodeCacheRead           ErrorCode = "cache_read_failed"
	ErrCodeCacheDelete         ErrorCode = "cache_delete_failed"
	ErrCodeXMLShaping          ErrorCode = "xml_shaping_failed"
	ErrCodeSignature           ErrorCode = "signature_failed"
	ErrCodeValidationRejected  ErrorCode = "validation_rejected"
	ErrCodeCorrelationMismatch ErrorCode = "correlation_mismatch"
)

// String returns the error code as a string.
func (c ErrorCode) String() string {
	return string(c)
}

// AppError is a structured error with code, message, and optional cause.
type AppError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the HTTP status code for this error code.
func (c ErrorCode) HTTPStatus() int {
	switch c {
	case ErrCodeValidationRejected, ErrCodeCorrelationMismatch:
		return http.StatusUnauthorized
	case ErrCodeXMLShaping:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Title returns a user-friendly title for this error code.
func (c ErrorCode) Title() string {
	switch c {
	case ErrCodeConfigMissing:
		return "Configuration Error"
	case ErrCodeCacheWrite, ErrCodeCacheRead, ErrCodeCacheDelete:
		return "Correlation Store Error"
	case ErrCodeXMLShaping:
		return "Invalid Request"
	case ErrCodeSignature:
		return "Signature Error"
	case ErrCodeValidationRejected:
		return "Authentication Failed"
	case ErrCodeCorrelationMismatch:
		return "Request Correlation Failed"
	default:
		return "Error"
	}
}

// ErrEntryNotFound is returned by a correlation cache when no live entry
// exists for a request ID. A miss is an expected outcome (expired or unknown
// ID) and must be distinguished from a connectivity failure.
var ErrEntryNotFound = errors.New("correlation entry not found")

// IsNotFound reports whether err is a cache miss rather than a hard failure.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEntryNotFound)
}

// ConfigError creates a configuration error.
func ConfigError(message string) *AppError {
	return &AppError{Code: ErrCodeConfigMissing, Message: message}
}

// CacheWriteError creates a cache write error with optional cause.
func CacheWriteError(message string, cause error) *AppError {
	return &AppError{Code: ErrCodeCacheWrite, Message: message, Cause: cause}
}

// CacheReadError creates a cache read error with optional cause.
func CacheReadError(message string, cause error) *AppError {
	return &AppError{Code: ErrCodeCacheRead, Message: message, Cause: cause}
}

// CacheDeleteError creates a cache delete error with optional cause.
func CacheDeleteError(message string, cause error) *AppError {
	return &AppError{Code: ErrCodeCacheDelete, Message: message, Cause: cause}
}

// ShapingError creates an XML shaping error with optional cause.
func ShapingError(message string, cause error) *AppError {
	return &AppError{Code: ErrCodeXMLShaping, Message: message, Cause: cause}
}

// SignError creates a signing error with optional cause.
func SignError(message string, cause error) *AppError {
	return &AppError{Code: ErrCodeSignature, Message: message, Cause: cause}
}

// ValidationError creates a validation rejection with optional cause.
func ValidationError(message string, cause error) *AppError {
	return &AppError{Code: ErrCodeValidationRejected, Message: message, Cause: cause}
}

// MismatchError creates a correlation mismatch error.
func MismatchError(message string) *AppError {
	return &AppError{Code: ErrCodeCorrelationMismatch, Message: message}
}

// MismatchErrorf creates a correlation mismatch error with formatting.
func MismatchErrorf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeCorrelationMismatch, Message: fmt.Sprintf(format, args...)}
}
