package service

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	cryptoDomain "github.com/allisson/sealbox/internal/crypto/domain"
)

// AESGCMCipher implements the AEAD interface using AES-256-GCM.
//
// Security properties:
//   - 256-bit key size
//   - 12-byte nonce supplied by the caller
//   - 16-byte authentication tag returned separately from the ciphertext
//
// The cipher instance is stateless and safe for concurrent use from multiple goroutines.
type AESGCMCipher struct {
	aead cipher.AEAD
}

// NewAESGCM creates a new AES-256-GCM cipher instance. The key must be exactly 32 bytes.
func NewAESGCM(key []byte) (*AESGCMCipher, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &AESGCMCipher{aead: aead}, nil
}

// Seal encrypts plaintext and returns the ciphertext and the detached tag.
func (a *AESGCMCipher) Seal(nonce, plaintext, aad []byte) (ciphertext, tag []byte, err error) {
	return sealDetached(a.aead, nonce, plaintext, aad)
}

// Open verifies the tag and decrypts. No partial plaintext is ever returned.
func (a *AESGCMCipher) Open(nonce, ciphertext, tag, aad []byte) ([]byte, error) {
	return openDetached(a.aead, nonce, ciphertext, tag, aad)
}

// sealDetached runs aead.Seal and splits the trailing tag from the ciphertext.
func sealDetached(aead cipher.AEAD, nonce, plaintext, aad []byte) ([]byte, []byte, error) {
	if len(nonce) != aead.NonceSize() {
		return nil, nil, cryptoDomain.ErrInvalidIVSize
	}

	sealed := aead.Seal(nil, nonce, plaintext, aad)
	split := len(sealed) - aead.Overhead()

	ciphertext := make([]byte, split)
	copy(ciphertext, sealed[:split])
	tag := make([]byte, aead.Overhead())
	copy(tag, sealed[split:])

	return ciphertext, tag, nil
}

// openDetached joins ciphertext and tag and runs aead.Open.
func openDetached(aead cipher.AEAD, nonce, ciphertext, tag, aad []byte) ([]byte, error) {
	if len(nonce) != aead.NonceSize() {
		return nil, cryptoDomain.ErrInvalidIVSize
	}
	if len(tag) != aead.Overhead() {
		return nil, cryptoDomain.ErrInvalidTagSize
	}

	joined := make([]byte, 0, len(ciphertext)+len(tag))
	joined = append(joined, ciphertext...)
	joined = append(joined, tag...)

	plaintext, err := aead.Open(nil, nonce, joined, aad)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	return plaintext, nil
}
