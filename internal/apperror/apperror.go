package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")

	// ErrUnauthenticated means no credential was presented at all
	// (missing Authorization header or missing token segment) — 401.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrInvalidCredential means a credential was presented but failed
	// verification (bad signature, malformed payload, expired). Handlers map
	// this to 400, kept distinct from the 401 no-credential cases.
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrTerminalState means a write was attempted against an assignment
	// already Accepted or Rejected — 400, and the record is untouched.
	ErrTerminalState = errors.New("terminal state")
)

type AppError struct {
	Err     error  // sentinel category
	Message string // human-readable error message
	Field   string // optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Conflict reports a uniqueness violation on the named field.
// HTTP handlers map this to 409.
func Conflict(field, message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
		Field:   field,
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthenticated reports that no usable credential accompanied the request.
func Unauthenticated(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthenticated,
		Message: message,
	}
}

// InvalidCredential reports a credential that was presented but rejected.
func InvalidCredential(message string) *AppError {
	return &AppError{
		Err:     ErrInvalidCredential,
		Message: message,
	}
}

// TerminalState reports an attempted mutation of a decided assignment.
func TerminalState(message string) *AppError {
	return &AppError{
		Err:     ErrTerminalState,
		Message: message,
	}
}
