package service

import (
	"crypto/sha256"
	"crypto/sha512"
	"hash"

	"golang.org/x/crypto/pbkdf2"

	cryptoDomain "github.com/allisson/sealbox/internal/crypto/domain"
)

// PBKDF2KeyDeriver implements KeyDeriver with PBKDF2 over HMAC-SHA-256 or HMAC-SHA-512.
//
// Parameters below the floor are rejected, never adjusted: deriving with a weaker setting than the one
// the payload was sealed with would produce a different key anyway.
type PBKDF2KeyDeriver struct {
	minIterations int
	maxIterations int
}

// NewPBKDF2KeyDeriver creates a key deriver accepting iteration counts in [minIterations,
// maxIterations], clamped to the system wide bounds. Zero selects the system wide bound.
func NewPBKDF2KeyDeriver(minIterations, maxIterations int) *PBKDF2KeyDeriver {
	minIterations, maxIterations = cryptoDomain.IterationBounds(minIterations, maxIterations)
	return &PBKDF2KeyDeriver{minIterations: minIterations, maxIterations: maxIterations}
}

// DeriveKey returns a 32-byte key derived from password and params.
func (d *PBKDF2KeyDeriver) DeriveKey(password []byte, params cryptoDomain.KDFParams) ([]byte, error) {
	if len(password) == 0 {
		return nil, cryptoDomain.ErrEmptyPassword
	}
	if err := params.Validate(d.minIterations, d.maxIterations); err != nil {
		return nil, err
	}

	var prf func() hash.Hash
	switch params.Hash {
	case cryptoDomain.SHA256:
		prf = sha256.New
	case cryptoDomain.SHA512:
		prf = sha512.New
	default:
		return nil, cryptoDomain.ErrUnsupportedHash
	}

	return pbkdf2.Key(password, params.Salt, params.Iterations, cryptoDomain.KeySize, prf), nil
}
