package domain

import (
	"github.com/allisson/sealbox/internal/errors"
)

// Code is the externally visible reason a reveal was refused.
type Code string

const (
	CodeInvalidCredential Code = "INVALID_CREDENTIAL"
	CodeLocked            Code = "LOCKED"
	CodeTampered          Code = "TAMPERED"
	CodeExpired           Code = "EXPIRED"
	CodeNotFound          Code = "NOT_FOUND"
	CodeConsumed          Code = "CONSUMED"
)

// publicMessage is shared by every code so responses do not reveal which check failed.
const publicMessage = "the record could not be revealed"

var (
	// ErrInvalidMode indicates an unknown reveal mode.
	ErrInvalidMode = errors.Wrap(errors.ErrInvalidInput, "mode must be server or client")

	// ErrTokenNotFound indicates no reveal token matches the given hash.
	ErrTokenNotFound = errors.Wrap(errors.ErrNotFound, "reveal token not found")
)

// Error is a refused reveal. Reason is for the audit trail only.
type Error struct {
	Code   Code
	Reason string
}

// NewError creates a reveal error.
func NewError(code Code, reason string) *Error {
	return &Error{Code: code, Reason: reason}
}

func (e *Error) Error() string {
	if e.Reason == "" {
		return "reveal refused: " + string(e.Code)
	}
	return "reveal refused: " + string(e.Code) + " (" + e.Reason + ")"
}

// Unwrap returns the domain sentinel the code maps to.
func (e *Error) Unwrap() error {
	switch e.Code {
	case CodeLocked:
		return errors.ErrLocked
	case CodeExpired, CodeConsumed:
		return errors.ErrGone
	case CodeNotFound:
		return errors.ErrNotFound
	default:
		return errors.ErrForbidden
	}
}

// Is matches another *Error with the same code, ignoring the reason.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// ErrorCode returns the code sent to clients.
func (e *Error) ErrorCode() string {
	return string(e.Code)
}

// PublicMessage returns the uniform message sent to clients.
func (e *Error) PublicMessage() string {
	return publicMessage
}

// CodeOf returns the reveal code carried by err, or "" when err is not a reveal error.
func CodeOf(err error) Code {
	var revealErr *Error
	if errors.As(err, &revealErr) {
		return revealErr.Code
	}
	return ""
}
