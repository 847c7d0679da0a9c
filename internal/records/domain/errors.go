package domain

import (
	"github.com/allisson/sealbox/internal/errors"
)

// Record-specific error definitions.
var (
	// ErrRecordNotFound indicates the record does not exist or was deleted.
	ErrRecordNotFound = errors.Wrap(errors.ErrNotFound, "record not found")

	// ErrRecordNotDeleted indicates a restore was attempted on a live record.
	ErrRecordNotDeleted = errors.Wrap(errors.ErrConflict, "record is not deleted")

	// ErrExpiryInPast indicates a record was submitted with an expiry that already passed.
	ErrExpiryInPast = errors.Wrap(errors.ErrInvalidInput, "expires_at must be in the future")

	// ErrMaskSurrogateRequired indicates the record has no masked representation.
	ErrMaskSurrogateRequired = errors.Wrap(errors.ErrInvalidInput, "mask_surrogate is required")
)
