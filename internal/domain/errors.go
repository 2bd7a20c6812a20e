package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation. Handlers map this to HTTP 400.
var ErrValidation = errors.New("validation error")

// ErrUnauthorized is returned when an operation needs an identity and the
// request carries none. Handlers map this to HTTP 401.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden is returned when the caller is known but is not allowed to see
// or change the resource. Handlers map this to HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a unique constraint could not be satisfied,
// e.g. no free slug was found after retrying.
var ErrConflict = errors.New("conflict")

// ValidationError carries the first failing field message.
// It matches ErrValidation under errors.Is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return "validation error: " + e.Message }

// Unwrap lets errors.Is(err, ErrValidation) succeed.
func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError builds a ValidationError with the given message.
func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}
