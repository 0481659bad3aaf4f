package spid

import (
	"github.com/mamacrowd/io-spid-commons/internal/core/domain"
)

// Re-export error types from domain package
type ErrorCode = domain.ErrorCode
type AppError = domain.AppError

// Re-export error code constants
const (
	ErrCodeConfigMissing       = domain.ErrCodeConfigMissing
	ErrCodeCacheWrite          = domain.ErrCodeCacheWrite
	ErrCodeCacheRead           = domain.ErrCodeCacheRead
	ErrCodeCacheDelete         = domain.ErrCodeCacheDelete
	ErrCodeXMLShaping          = domain.ErrCodeXMLShaping
	ErrCodeSignature           = domain.ErrCodeSignature
	ErrCodeValidationRejected  = domain.ErrCodeValidationRejected
	ErrCodeCorrelationMismatch = domain.ErrCodeCorrelationMismatch
)

// Re-export the cache miss sentinel and helper
var (
	ErrEntryNotFound = domain.ErrEntryNotFound
	IsNotFound       = domain.IsNotFound
)

// Re-export error constructors
var (
	ConfigError      = domain.ConfigError
	CacheWriteError  = domain.CacheWriteError
	CacheReadError   = domain.CacheReadError
	CacheDeleteError = domain.CacheDeleteError
	ShapingError     = domain.ShapingError
	SignError        = domain.SignError
	ValidationError  = domain.ValidationError
	MismatchError    = domain.MismatchError
)
