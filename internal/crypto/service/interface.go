// Package service provides the cryptographic building blocks of the vault: PBKDF2 key derivation,
// AEAD ciphers with detached tags, integrity hashing, a bounded worker pool for CPU heavy work and
// KMS access for wrapping the audit signing key.
package service

import (
	"context"

	cryptoDomain "github.com/allisson/sealbox/internal/crypto/domain"
)

// AEAD defines an authenticated cipher that keeps the authentication tag detached from the ciphertext.
type AEAD interface {
	// Seal encrypts plaintext under nonce and returns the ciphertext and its 16-byte tag.
	Seal(nonce, plaintext, aad []byte) (ciphertext, tag []byte, err error)

	// Open verifies tag and decrypts ciphertext. Any failure returns ErrDecryptionFailed.
	Open(nonce, ciphertext, tag, aad []byte) ([]byte, error)
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// KeyDeriver derives symmetric keys from user credentials.
type KeyDeriver interface {
	// DeriveKey returns a 32-byte key. The same inputs always produce the same key.
	DeriveKey(password []byte, params cryptoDomain.KDFParams) ([]byte, error)
}

// CipherEngine performs authenticated encryption with caller supplied or generated IVs.
type CipherEngine interface {
	// Encrypt seals plaintext under key and iv. The caller owns IV uniqueness.
	Encrypt(
		plaintext, key, iv []byte,
		alg cryptoDomain.Algorithm,
	) (ciphertext, authTag []byte, err error)

	// Decrypt verifies and opens ciphertext. Every authentication failure is ErrDecryptionFailed.
	Decrypt(ciphertext, key, iv, authTag []byte, alg cryptoDomain.Algorithm) ([]byte, error)

	// Seal generates a fresh random IV and encrypts plaintext under key.
	Seal(
		plaintext, key []byte,
		alg cryptoDomain.Algorithm,
	) (ciphertext, iv, authTag []byte, err error)
}

// IntegrityHasher computes and verifies the integrity hash of a plaintext.
type IntegrityHasher interface {
	Hash(plaintext []byte) string
	Verify(plaintext []byte, expected string) bool
}

// Sealer runs the full client-side sealing and unsealing pipelines.
type Sealer interface {
	// Seal derives a key from password with a fresh salt, encrypts plaintext with a fresh IV and
	// computes the integrity hash.
	Seal(password, plaintext []byte, opts SealOptions) (*cryptoDomain.SealedPayload, error)

	// Unseal derives the key, decrypts and verifies the integrity hash. progress, when not nil,
	// receives 60 after derivation and 90 after decryption.
	Unseal(password []byte, payload *cryptoDomain.SealedPayload, progress func(int)) ([]byte, error)
}

// KMSService opens KMS keepers used to wrap and unwrap key material.
type KMSService interface {
	// OpenKeeper opens a keeper for keyURI (gcpkms://, awskms://, azurekeyvault://, hashivault://,
	// base64key://).
	OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error)
}
