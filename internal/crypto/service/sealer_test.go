package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/sealbox/internal/crypto/domain"
)

func newTestSealer() *PayloadSealer {
	return NewSealer(NewPBKDF2KeyDeriver(0, 0), NewCipherEngine(NewAEADManager()), NewIntegrityHasher())
}

func TestPayloadSealer_RoundTrip(t *testing.T) {
	sealer := newTestSealer()

	payload, err := sealer.Seal(
		[]byte("Secret123!"),
		[]byte("123-45-6789"),
		SealOptions{Iterations: 100000},
	)
	require.NoError(t, err)
	require.NoError(t, payload.Validate(cryptoDomain.MinIterations, cryptoDomain.MaxIterations))

	assert.Len(t, payload.IV, cryptoDomain.IVSize)
	assert.Len(t, payload.AuthTag, cryptoDomain.TagSize)
	assert.Len(t, payload.KDF.Salt, cryptoDomain.MinSaltSize)
	assert.Equal(t, 100000, payload.KDF.Iterations)
	assert.Equal(t, cryptoDomain.SHA256, payload.KDF.Hash)
	assert.Equal(t, cryptoDomain.AESGCM, payload.Algorithm)
	assert.Equal(t, NewIntegrityHasher().Hash([]byte("123-45-6789")), payload.IntegrityHash)

	var progress []int
	plaintext, err := sealer.Unseal([]byte("Secret123!"), payload, func(p int) {
		progress = append(progress, p)
	})
	require.NoError(t, err)
	assert.Equal(t, "123-45-6789", string(plaintext))
	assert.Equal(t, []int{60, 90}, progress)
}

func TestPayloadSealer_FreshSaltAndIV(t *testing.T) {
	sealer := newTestSealer()
	opts := SealOptions{Iterations: 100000, Hash: cryptoDomain.SHA512, Algorithm: cryptoDomain.ChaCha20}

	p1, err := sealer.Seal([]byte("pw"), []byte("value"), opts)
	require.NoError(t, err)
	p2, err := sealer.Seal([]byte("pw"), []byte("value"), opts)
	require.NoError(t, err)

	assert.NotEqual(t, p1.KDF.Salt, p2.KDF.Salt)
	assert.NotEqual(t, p1.IV, p2.IV)
	assert.Equal(t, p1.IntegrityHash, p2.IntegrityHash)
}

func TestPayloadSealer_Unseal_Failures(t *testing.T) {
	sealer := newTestSealer()
	payload, err := sealer.Seal([]byte("Secret123!"), []byte("123-45-6789"), SealOptions{Iterations: 100000})
	require.NoError(t, err)

	t.Run("wrong password", func(t *testing.T) {
		plaintext, err := sealer.Unseal([]byte("Wrong123!"), payload, nil)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
		assert.Nil(t, plaintext)
	})

	t.Run("modified ciphertext", func(t *testing.T) {
		tampered := *payload
		tampered.Ciphertext = append([]byte(nil), payload.Ciphertext...)
		tampered.Ciphertext[0] ^= 0xff
		_, err := sealer.Unseal([]byte("Secret123!"), &tampered, nil)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})

	t.Run("integrity hash mismatch", func(t *testing.T) {
		tampered := *payload
		tampered.IntegrityHash = NewIntegrityHasher().Hash([]byte("something else"))
		plaintext, err := sealer.Unseal([]byte("Secret123!"), &tampered, nil)
		assert.ErrorIs(t, err, cryptoDomain.ErrIntegrityMismatch)
		assert.Nil(t, plaintext)
	})

	t.Run("weak parameters are not silently accepted", func(t *testing.T) {
		weak := *payload
		weak.KDF.Iterations = 1000
		_, err := sealer.Unseal([]byte("Secret123!"), &weak, nil)
		assert.ErrorIs(t, err, cryptoDomain.ErrIterationsTooLow)
	})
}
