package service

import (
	"crypto/cipher"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	cryptoDomain "github.com/allisson/sealbox/internal/crypto/domain"
)

// ChaCha20Poly1305Cipher implements the AEAD interface using ChaCha20-Poly1305.
//
// It uses the same 12-byte nonce and 16-byte tag layout as AES-GCM, so records sealed with either
// algorithm are stored identically.
type ChaCha20Poly1305Cipher struct {
	aead cipher.AEAD
}

// NewChaCha20Poly1305 creates a new ChaCha20-Poly1305 cipher instance. The key must be exactly 32 bytes.
func NewChaCha20Poly1305(key []byte) (*ChaCha20Poly1305Cipher, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create ChaCha20-Poly1305 cipher: %w", err)
	}

	return &ChaCha20Poly1305Cipher{aead: aead}, nil
}

// Seal encrypts plaintext and returns the ciphertext and the detached Poly1305 tag.
func (c *ChaCha20Poly1305Cipher) Seal(nonce, plaintext, aad []byte) (ciphertext, tag []byte, err error) {
	return sealDetached(c.aead, nonce, plaintext, aad)
}

// Open verifies the tag and decrypts.
func (c *ChaCha20Poly1305Cipher) Open(nonce, ciphertext, tag, aad []byte) ([]byte, error) {
	return openDetached(c.aead, nonce, ciphertext, tag, aad)
}
