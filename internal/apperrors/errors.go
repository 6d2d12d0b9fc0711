package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorType represents different types of errors in the system
type ErrorType string

const (
	ErrorTypeValidation      ErrorType = "VALIDATION"
	ErrorTypeDuplicateKey    ErrorType = "DUPLICATE_KEY"
	ErrorTypeAuth            ErrorType = "AUTH"
	ErrorTypeAccessDenied    ErrorType = "ACCESS_DENIED"
	ErrorTypeNotFound        ErrorType = "NOT_FOUND"
	ErrorTypeTooManyRequests ErrorType = "TOO_MANY_REQUESTS"
	ErrorTypeServer          ErrorType = "SERVER"
)

// FieldError is a single field-level validation message.
type FieldError struct {
	Field string `json:"field,omitempty"`
	Msg   string `json:"msg"`
}

// AppError represents an application error. Safe marks the message as fit
// for clients when the service runs outside development.
type AppError struct {
	Type    ErrorType
	Message string
	Fields  []FieldError
	Safe    bool
	Err     error
	// RetryAfter is sent as the Retry-After header when positive.
	RetryAfter time.Duration
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error type onto an HTTP status.
func (e *AppError) StatusCode() int {
	switch e.Type {
	case ErrorTypeValidation, ErrorTypeDuplicateKey:
		return http.StatusBadRequest
	case ErrorTypeAuth:
		return http.StatusUnauthorized
	case ErrorTypeAccessDenied:
		return http.StatusForbidden
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// NewValidationError creates a validation error with optional field messages.
func NewValidationError(message string, fields ...FieldError) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
		Fields:  fields,
		Safe:    true,
	}
}

// NewFieldError is a shortcut for a validation error on one field.
func NewFieldError(field, message string) *AppError {
	return NewValidationError(message, FieldError{Field: field, Msg: message})
}

// NewDuplicateKeyError creates a duplicate key error
func NewDuplicateKeyError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeDuplicateKey,
		Message: message,
		Safe:    true,
		Err:     err,
	}
}

// NewAuthError creates an authentication error. Messages must stay generic.
func NewAuthError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeAuth,
		Message: message,
		Safe:    true,
	}
}

// NewAccessDeniedError creates a forbidden error
func NewAccessDeniedError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeAccessDenied,
		Message: message,
		Safe:    true,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: message,
		Safe:    true,
	}
}

// NewTooManyRequestsError creates a rate limit error
func NewTooManyRequestsError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeTooManyRequests,
		Message: message,
		Safe:    true,
	}
}

// WithRetryAfter records when the client may try again.
func (e *AppError) WithRetryAfter(d time.Duration) *AppError {
	e.RetryAfter = d
	return e
}

// NewServerError wraps an unexpected failure. Its message is never shown
// to clients in production.
func NewServerError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeServer,
		Message: message,
		Err:     err,
	}
}

// NewSafeServerError is a server error whose message may be shown.
func NewSafeServerError(message string, err error) *AppError {
	e := NewServerError(message, err)
	e.Safe = true
	return e
}

// As extracts an *AppError from err.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType reports whether err is an AppError of the given type.
func IsType(err error, t ErrorType) bool {
	appErr, ok := As(err)
	return ok && appErr.Type == t
}
