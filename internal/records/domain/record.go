// Package domain defines the encrypted record model. A record holds only what a client produced
// when sealing a value locally: ciphertext, IV, detached tag, KDF parameters, the integrity hash of
// the plaintext and a masked surrogate for display. The plaintext itself is never part of it.
package domain

import (
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/sealbox/internal/crypto/domain"
)

// Record is a stored encrypted value with its lifecycle metadata.
type Record struct {
	ID            uuid.UUID
	OwnerID       uuid.UUID
	Ciphertext    []byte
	IV            []byte
	AuthTag       []byte
	IntegrityHash string
	KDFSalt       []byte
	KDFIterations int
	KDFHash       cryptoDomain.HashAlgorithm
	Algorithm     cryptoDomain.Algorithm
	// MaskSurrogate is the only representation of the value that list and metadata views expose.
	MaskSurrogate string
	RecordType    string
	Tags          []string
	CreatedAt     time.Time
	ExpiresAt     *time.Time

	IsDeleted bool
	DeletedAt *time.Time
	DeletedBy *uuid.UUID

	RevealCount    int64
	LastRevealedAt *time.Time
	LastRevealedBy *uuid.UUID
}

// Sealed returns the cryptographic fields as a sealed payload.
func (r *Record) Sealed() *cryptoDomain.SealedPayload {
	return &cryptoDomain.SealedPayload{
		Ciphertext:    r.Ciphertext,
		IV:            r.IV,
		AuthTag:       r.AuthTag,
		IntegrityHash: r.IntegrityHash,
		KDF: cryptoDomain.KDFParams{
			Salt:       r.KDFSalt,
			Iterations: r.KDFIterations,
			Hash:       r.KDFHash,
		},
		Algorithm: r.Algorithm,
	}
}

// IsExpired reports whether the record is past its expiry at now.
func (r *Record) IsExpired(now time.Time) bool {
	return r.ExpiresAt != nil && !now.Before(*r.ExpiresAt)
}

// CreateRecordInput carries a client sealed value to be stored.
type CreateRecordInput struct {
	Sealed        cryptoDomain.SealedPayload
	MaskSurrogate string
	RecordType    string
	Tags          []string
	ExpiresAt     *time.Time
}

// ListFilter restricts record listings. Expired and deleted records are excluded unless asked for.
type ListFilter struct {
	OwnerID        *uuid.UUID
	RecordType     string
	Tag            string
	IncludeDeleted bool
	IncludeExpired bool
	Offset         int
	Limit          int
}
