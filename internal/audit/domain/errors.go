package domain

import (
	"github.com/allisson/sealbox/internal/errors"
)

var (
	// ErrSignatureInvalid indicates the stored signature does not match the entry content.
	ErrSignatureInvalid = errors.New("audit log signature is invalid")

	// ErrSigningKeyMismatch indicates the entry was signed with a key that is not loaded.
	ErrSigningKeyMismatch = errors.New("audit log signed with unknown key")

	// ErrInvalidOutcome indicates an unknown outcome value.
	ErrInvalidOutcome = errors.Wrap(errors.ErrInvalidInput, "invalid audit outcome")
)
