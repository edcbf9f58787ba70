package errors

import (
	"errors"
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// HasCode reports whether err carries the given code anywhere in its chain
func HasCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Predefined error codes
const (
	CodeConfigInvalid        = "CONFIG_INVALID"
	CodeStateError           = "STATE_ERROR"
	CodeInsufficientData     = "INSUFFICIENT_DATA"
	CodeSerializationError   = "SERIALIZATION_ERROR"
	CodeUnsupportedAlgorithm = "UNSUPPORTED_ALGORITHM"
	CodeNotFound             = "NOT_FOUND"
	CodeInternalError        = "INTERNAL_ERROR"
)

// Common error constructors

// ConfigInvalid flags invalid build-time arguments (dimension mismatch,
// too few bins, empty training data).
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func ConfigInvalidf(format string, args ...interface{}) *AppError {
	return New(CodeConfigInvalid, fmt.Sprintf(format, args...))
}

// StateError flags an operation invoked before its required lifecycle
// transition (e.g. explain before build).
func StateError(message string) *AppError {
	return New(CodeStateError, message)
}

// InsufficientData flags training data that cannot support sampling,
// such as zero variance across every feature.
func InsufficientData(message string) *AppError {
	return New(CodeInsufficientData, message)
}

// SerializationError flags a corrupt or incompatible persisted explainer blob.
func SerializationError(message string, cause error) *AppError {
	return &AppError{Code: CodeSerializationError, Message: message, Cause: cause}
}

// UnsupportedAlgorithm flags an unregistered (domain, algorithm) pair.
func UnsupportedAlgorithm(domain, algorithm string) *AppError {
	return New(CodeUnsupportedAlgorithm, fmt.Sprintf("no explainer registered for domain %q algorithm %q", domain, algorithm))
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

// Predicates used at recovery points

func IsConfigInvalid(err error) bool    { return HasCode(err, CodeConfigInvalid) }
func IsStateError(err error) bool       { return HasCode(err, CodeStateError) }
func IsInsufficientData(err error) bool { return HasCode(err, CodeInsufficientData) }
func IsSerialization(err error) bool    { return HasCode(err, CodeSerializationError) }
func IsUnsupported(err error) bool      { return HasCode(err, CodeUnsupportedAlgorithm) }
