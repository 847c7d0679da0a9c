package service

import (
	"crypto/rand"
	"fmt"

	cryptoDomain "github.com/allisson/sealbox/internal/crypto/domain"
)

// SealOptions tunes the sealing pipeline. Zero values select the defaults.
type SealOptions struct {
	Iterations int
	Hash       cryptoDomain.HashAlgorithm
	Algorithm  cryptoDomain.Algorithm
	SaltSize   int
}

// PayloadSealer implements Sealer by composing the key deriver, the cipher engine and the integrity hasher.
type PayloadSealer struct {
	kdf    KeyDeriver
	engine CipherEngine
	hasher IntegrityHasher
}

// NewSealer creates a sealer.
func NewSealer(kdf KeyDeriver, engine CipherEngine, hasher IntegrityHasher) *PayloadSealer {
	return &PayloadSealer{kdf: kdf, engine: engine, hasher: hasher}
}

// Seal produces a sealed payload for plaintext. A fresh salt and IV are drawn for every call.
func (s *PayloadSealer) Seal(
	password, plaintext []byte,
	opts SealOptions,
) (*cryptoDomain.SealedPayload, error) {
	if opts.Iterations == 0 {
		opts.Iterations = cryptoDomain.DefaultIterations
	}
	if opts.Hash == "" {
		opts.Hash = cryptoDomain.SHA256
	}
	if opts.Algorithm == "" {
		opts.Algorithm = cryptoDomain.AESGCM
	}
	if opts.SaltSize < cryptoDomain.MinSaltSize {
		opts.SaltSize = cryptoDomain.MinSaltSize
	}

	salt := make([]byte, opts.SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	params := cryptoDomain.KDFParams{Salt: salt, Iterations: opts.Iterations, Hash: opts.Hash}
	key, err := s.kdf.DeriveKey(password, params)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(key)

	ciphertext, iv, tag, err := s.engine.Seal(plaintext, key, opts.Algorithm)
	if err != nil {
		return nil, err
	}

	return &cryptoDomain.SealedPayload{
		Ciphertext:    ciphertext,
		IV:            iv,
		AuthTag:       tag,
		IntegrityHash: s.hasher.Hash(plaintext),
		KDF:           params,
		Algorithm:     opts.Algorithm,
	}, nil
}

// Unseal reverses Seal. ErrDecryptionFailed covers both a wrong password and a modified payload;
// ErrIntegrityMismatch means the tag verified but the plaintext does not match its recorded hash.
func (s *PayloadSealer) Unseal(
	password []byte,
	payload *cryptoDomain.SealedPayload,
	progress func(int),
) ([]byte, error) {
	report := func(p int) {
		if progress != nil {
			progress(p)
		}
	}

	key, err := s.kdf.DeriveKey(password, payload.KDF)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(key)
	report(60)

	plaintext, err := s.engine.Decrypt(payload.Ciphertext, key, payload.IV, payload.AuthTag, payload.Algorithm)
	if err != nil {
		return nil, err
	}
	report(90)

	if !s.hasher.Verify(plaintext, payload.IntegrityHash) {
		cryptoDomain.Zero(plaintext)
		return nil, cryptoDomain.ErrIntegrityMismatch
	}

	return plaintext, nil
}
