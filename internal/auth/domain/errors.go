package domain

import (
	"github.com/allisson/sealbox/internal/errors"
)

// Authentication and authorization errors.
var (
	// ErrClientNotFound indicates a client with the specified ID was not found.
	ErrClientNotFound = errors.Wrap(errors.ErrNotFound, "client not found")

	// ErrTokenNotFound indicates a token with the specified hash was not found.
	ErrTokenNotFound = errors.Wrap(errors.ErrNotFound, "token not found")

	// ErrInvalidCredentials is returned for unknown clients, wrong secrets and invalid tokens alike.
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthorized, "invalid credentials")

	// ErrClientInactive indicates the client exists but has been disabled.
	ErrClientInactive = errors.Wrap(errors.ErrForbidden, "client is inactive")

	// ErrClientLocked indicates too many failed authentication attempts.
	ErrClientLocked = errors.Wrap(errors.ErrLocked, "client is locked")

	// ErrInvalidPolicy indicates a policy with an empty path or unknown capability.
	ErrInvalidPolicy = errors.Wrap(errors.ErrInvalidInput, "invalid policy")
)
