package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	cryptoDomain "github.com/allisson/sealbox/internal/crypto/domain"
)

func TestRecord_IsExpired(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Second)
	future := now.Add(time.Second)

	assert.False(t, (&Record{}).IsExpired(now))
	assert.True(t, (&Record{ExpiresAt: &past}).IsExpired(now))
	assert.True(t, (&Record{ExpiresAt: &now}).IsExpired(now))
	assert.False(t, (&Record{ExpiresAt: &future}).IsExpired(now))
}

func TestRecord_Sealed(t *testing.T) {
	r := &Record{
		Ciphertext:    []byte("ct"),
		IV:            make([]byte, 12),
		AuthTag:       make([]byte, 16),
		IntegrityHash: "abc",
		KDFSalt:       make([]byte, 16),
		KDFIterations: 100000,
		KDFHash:       cryptoDomain.SHA512,
		Algorithm:     cryptoDomain.ChaCha20,
	}

	sealed := r.Sealed()
	assert.Equal(t, r.Ciphertext, sealed.Ciphertext)
	assert.Equal(t, r.IV, sealed.IV)
	assert.Equal(t, r.AuthTag, sealed.AuthTag)
	assert.Equal(t, "abc", sealed.IntegrityHash)
	assert.Equal(t, cryptoDomain.KDFParams{Salt: r.KDFSalt, Iterations: 100000, Hash: cryptoDomain.SHA512}, sealed.KDF)
	assert.Equal(t, cryptoDomain.ChaCha20, sealed.Algorithm)
}
