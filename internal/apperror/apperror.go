// Package apperror defines the domain error taxonomy shared by the service
// and handler layers. Services return these; the HTTP layer maps them to
// status codes in one place (handler.writeError).
package apperror

import (
	"errors"
	"fmt"
)

// Sentinel errors. Callers classify an AppError with errors.Is against these.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
	ErrAuth       = errors.New("unauthorized")
	ErrInternal   = errors.New("internal error")
)

// AppError carries a sentinel for classification plus a user-facing message.
type AppError struct {
	Err     error  // sentinel, for errors.Is
	Message string // human-readable, safe to return to clients
	Field   string // optional: field causing a validation error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound reports that the named resource does not exist.
func NotFound(resource string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// ValidationFailed reports a caller-correctable input problem on a field.
func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Conflict reports a uniqueness violation, e.g. a duplicate username.
func Conflict(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}

// Unauthorized reports missing or bad credentials. The message is returned
// verbatim to the client, so keep it to the agreed phrasings.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrAuth,
		Message: message,
	}
}

// Internal wraps an unexpected failure (store, hashing, signing). The
// underlying error stays server-side; clients only see the message.
func Internal(message string, err error) *AppError {
	return &AppError{
		Err:     errors.Join(ErrInternal, err),
		Message: message,
	}
}
