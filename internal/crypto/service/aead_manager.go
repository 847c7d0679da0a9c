package service

import (
	cryptoDomain "github.com/allisson/sealbox/internal/crypto/domain"
)

// aeadConstructors maps every supported cipher suite to its constructor.
var aeadConstructors = map[cryptoDomain.Algorithm]func(key []byte) (AEAD, error){
	cryptoDomain.AESGCM:   func(key []byte) (AEAD, error) { return NewAESGCM(key) },
	cryptoDomain.ChaCha20: func(key []byte) (AEAD, error) { return NewChaCha20Poly1305(key) },
}

// AEADManagerService builds AEAD instances from a derived key and the algorithm stored on a record.
type AEADManagerService struct{}

// NewAEADManager creates a new AEADManagerService.
func NewAEADManager() *AEADManagerService {
	return &AEADManagerService{}
}

// CreateCipher returns ErrInvalidKeySize unless key is KeySize bytes and ErrUnsupportedAlgorithm
// for an unknown alg.
func (am *AEADManagerService) CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error) {
	newAEAD, ok := aeadConstructors[alg]
	if !ok {
		return nil, cryptoDomain.ErrUnsupportedAlgorithm
	}
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}
	return newAEAD(key)
}
