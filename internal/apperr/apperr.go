// Package apperr defines the error taxonomy shared by the domain packages.
//
// Domain code wraps one of the sentinels with context using fmt.Errorf and %w;
// the HTTP layer maps them to status codes with errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks bad or missing input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks an entity that is absent or not visible to the caller.
	ErrNotFound = errors.New("not found")
	// ErrUnauthenticated marks missing or invalid credentials.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden marks an entity that exists but is owned by another user.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict marks a uniqueness violation (e.g. duplicate email).
	ErrConflict = errors.New("conflict")
	// ErrDataAccess marks a failed store operation.
	ErrDataAccess = errors.New("data access failed")
	// ErrExternal marks a failure of an external provider (LLM, PDF renderer, broker).
	ErrExternal = errors.New("external service failed")
	// ErrUnavailable marks a feature that is not configured on this deployment.
	ErrUnavailable = errors.New("unavailable")
)

// Validation returns an error wrapping ErrValidation with a formatted message.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// DataAccess wraps err as a data access failure for op.
func DataAccess(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrDataAccess, err)
}

// External wraps err as an external service failure for op.
func External(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrExternal, err)
}
