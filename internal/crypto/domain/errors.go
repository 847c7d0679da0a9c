package domain

import (
	"github.com/allisson/sealbox/internal/errors"
)

// Cryptographic operation error definitions.
//
// Parameter errors wrap ErrInvalidInput and surface as 422 responses. ErrDecryptionFailed is the single
// error returned for any authentication failure so callers cannot distinguish a wrong key from a
// modified ciphertext.
var (
	// ErrUnsupportedAlgorithm indicates the requested cipher is not supported.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrUnsupportedHash indicates the requested PBKDF2 hash is not sha256 or sha512.
	ErrUnsupportedHash = errors.Wrap(errors.ErrInvalidInput, "unsupported kdf hash")

	// ErrInvalidKeySize indicates the key is not exactly 32 bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrInvalidIVSize indicates the IV is not exactly 12 bytes.
	ErrInvalidIVSize = errors.Wrap(errors.ErrInvalidInput, "iv must be exactly 12 bytes")

	// ErrInvalidTagSize indicates the authentication tag is not exactly 16 bytes.
	ErrInvalidTagSize = errors.Wrap(errors.ErrInvalidInput, "auth tag must be exactly 16 bytes")

	// ErrSaltTooShort indicates the PBKDF2 salt is shorter than 16 bytes.
	ErrSaltTooShort = errors.Wrap(errors.ErrInvalidInput, "kdf salt must be at least 16 bytes")

	// ErrIterationsTooLow indicates the PBKDF2 iteration count is under the configured floor.
	ErrIterationsTooLow = errors.Wrap(errors.ErrInvalidInput, "kdf iterations below minimum")

	// ErrIterationsTooHigh indicates the PBKDF2 iteration count is over the configured ceiling.
	ErrIterationsTooHigh = errors.Wrap(errors.ErrInvalidInput, "kdf iterations above maximum")

	// ErrEmptyPassword indicates an empty credential was supplied to the key derivation unit.
	ErrEmptyPassword = errors.Wrap(errors.ErrInvalidInput, "password must not be empty")

	// ErrInvalidIntegrityHash indicates the integrity hash is not a 64 character hex string.
	ErrInvalidIntegrityHash = errors.Wrap(errors.ErrInvalidInput, "integrity hash must be hex sha-256")

	// ErrEmptyCiphertext indicates a sealed payload with no ciphertext.
	ErrEmptyCiphertext = errors.Wrap(errors.ErrInvalidInput, "ciphertext must not be empty")

	// ErrDecryptionFailed indicates authentication failed: wrong key, modified ciphertext, IV or tag.
	ErrDecryptionFailed = errors.Wrap(errors.ErrInvalidInput, "decryption failed")

	// ErrIntegrityMismatch indicates decryption succeeded but the plaintext hash differs from the stored hash.
	ErrIntegrityMismatch = errors.New("integrity hash mismatch")

	// ErrPoolClosed indicates work was submitted to a stopped worker pool.
	ErrPoolClosed = errors.New("crypto worker pool is closed")

	// ErrSigningKeyNotConfigured indicates no audit signing key was loaded.
	ErrSigningKeyNotConfigured = errors.New("audit signing key is not configured")
)
