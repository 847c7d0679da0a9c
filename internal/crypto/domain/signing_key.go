package domain

import (
	"context"
)

// KMSKeeper is the subset of *secrets.Keeper used to wrap and unwrap key material.
type KMSKeeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}

// SigningKey is the root key used to sign audit log entries. Only its wrapped form is ever
// configured; the raw bytes exist in memory after unwrapping through the KMS.
type SigningKey struct {
	ID  string
	Key []byte
}

// Close zeroes the key material.
func (k *SigningKey) Close() {
	if k == nil {
		return
	}
	Zero(k.Key)
	k.Key = nil
}
