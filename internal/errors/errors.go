// Package errors defines the sentinel errors every domain wraps. httputil maps each sentinel to one
// HTTP status, so use cases never pick status codes themselves.
package errors

import (
	"errors"
	"fmt"
)

// Sentinels shared by records, reveal, audit and auth.
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a conflict with existing data (e.g., duplicate key).
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates the input data is invalid or fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates the request lacks valid authentication credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the authenticated caller doesn't have permission.
	ErrForbidden = errors.New("forbidden")

	// ErrLocked indicates the resource is temporarily locked for the caller.
	ErrLocked = errors.New("locked")

	// ErrGone indicates the resource existed but can no longer be used (expired or consumed).
	ErrGone = errors.New("gone")
)

// New creates an error that maps to no sentinel and therefore surfaces as an internal error.
func New(message string) error {
	return errors.New(message)
}

// Wrap prefixes err with message. It returns nil for a nil err.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}
