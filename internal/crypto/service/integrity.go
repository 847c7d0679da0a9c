package service

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// SHA256IntegrityHasher implements IntegrityHasher with a hex encoded SHA-256 digest.
type SHA256IntegrityHasher struct{}

// NewIntegrityHasher creates a SHA-256 integrity hasher.
func NewIntegrityHasher() *SHA256IntegrityHasher {
	return &SHA256IntegrityHasher{}
}

// Hash returns the lowercase hex SHA-256 digest of plaintext.
func (h *SHA256IntegrityHasher) Hash(plaintext []byte) string {
	sum := sha256.Sum256(plaintext)
	return hex.EncodeToString(sum[:])
}

// Verify compares the digest of plaintext with expected in constant time.
func (h *SHA256IntegrityHasher) Verify(plaintext []byte, expected string) bool {
	actual := h.Hash(plaintext)
	return subtle.ConstantTimeCompare([]byte(actual), []byte(strings.ToLower(expected))) == 1
}
