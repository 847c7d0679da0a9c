package service

import (
	"crypto/rand"
	"fmt"

	cryptoDomain "github.com/allisson/sealbox/internal/crypto/domain"
)

// AEADCipherEngine implements CipherEngine on top of an AEADManager.
type AEADCipherEngine struct {
	aeadManager AEADManager
}

// NewCipherEngine creates a cipher engine.
func NewCipherEngine(aeadManager AEADManager) *AEADCipherEngine {
	return &AEADCipherEngine{aeadManager: aeadManager}
}

// Encrypt seals plaintext with the given key and IV.
func (e *AEADCipherEngine) Encrypt(
	plaintext, key, iv []byte,
	alg cryptoDomain.Algorithm,
) ([]byte, []byte, error) {
	if len(iv) != cryptoDomain.IVSize {
		return nil, nil, cryptoDomain.ErrInvalidIVSize
	}

	aead, err := e.aeadManager.CreateCipher(key, alg)
	if err != nil {
		return nil, nil, err
	}

	return aead.Seal(iv, plaintext, nil)
}

// Decrypt opens ciphertext. Size errors are reported as such; every other failure is
// ErrDecryptionFailed.
func (e *AEADCipherEngine) Decrypt(
	ciphertext, key, iv, authTag []byte,
	alg cryptoDomain.Algorithm,
) ([]byte, error) {
	if len(iv) != cryptoDomain.IVSize {
		return nil, cryptoDomain.ErrInvalidIVSize
	}
	if len(authTag) != cryptoDomain.TagSize {
		return nil, cryptoDomain.ErrInvalidTagSize
	}

	aead, err := e.aeadManager.CreateCipher(key, alg)
	if err != nil {
		return nil, err
	}

	return aead.Open(iv, ciphertext, authTag, nil)
}

// Seal generates a random IV from crypto/rand and encrypts plaintext.
func (e *AEADCipherEngine) Seal(
	plaintext, key []byte,
	alg cryptoDomain.Algorithm,
) ([]byte, []byte, []byte, error) {
	iv := make([]byte, cryptoDomain.IVSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to generate iv: %w", err)
	}

	ciphertext, tag, err := e.Encrypt(plaintext, key, iv, alg)
	if err != nil {
		return nil, nil, nil, err
	}
	return ciphertext, iv, tag, nil
}
