package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"

	apperrors "github.com/allisson/sealbox/internal/errors"
)

// tokenEntropy is the number of random bytes behind every token.
const tokenEntropy = 32

type tokenService struct{}

func (t *tokenService) GenerateToken() (string, string, error) {
	buf := make([]byte, tokenEntropy)
	if _, err := rand.Read(buf); err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate random token")
	}

	plainToken := base64.RawURLEncoding.EncodeToString(buf)
	return plainToken, t.HashToken(plainToken), nil
}

func (t *tokenService) HashToken(plainToken string) string {
	sum := sha256.Sum256([]byte(plainToken))
	return hex.EncodeToString(sum[:])
}

// NewTokenService creates a TokenService.
func NewTokenService() TokenService {
	return &tokenService{}
}
