package domain

import (
	"encoding/hex"
)

// SealedPayload is everything a client produces when sealing a value locally. The plaintext is never
// part of it.
type SealedPayload struct {
	Ciphertext    []byte
	IV            []byte
	AuthTag       []byte
	IntegrityHash string
	KDF           KDFParams
	Algorithm     Algorithm
}

// Validate performs the structural checks that must pass before any cryptographic work is attempted.
func (s *SealedPayload) Validate(minIterations, maxIterations int) error {
	if len(s.Ciphertext) == 0 {
		return ErrEmptyCiphertext
	}
	if len(s.IV) != IVSize {
		return ErrInvalidIVSize
	}
	if len(s.AuthTag) != TagSize {
		return ErrInvalidTagSize
	}
	if !s.Algorithm.Valid() {
		return ErrUnsupportedAlgorithm
	}
	if !ValidIntegrityHash(s.IntegrityHash) {
		return ErrInvalidIntegrityHash
	}
	return s.KDF.Validate(minIterations, maxIterations)
}

// ValidIntegrityHash reports whether h looks like a hex encoded SHA-256 digest.
func ValidIntegrityHash(h string) bool {
	if len(h) != IntegrityHashSize {
		return false
	}
	_, err := hex.DecodeString(h)
	return err == nil
}
