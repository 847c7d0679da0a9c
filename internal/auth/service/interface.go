// Package service holds the credential primitives shared by client authentication and reveal tokens:
// Argon2id client secrets and SHA-256 hashed opaque tokens.
package service

// SecretService generates and verifies client secrets.
type SecretService interface {
	// GenerateSecret returns a random plain secret and its Argon2id hash.
	GenerateSecret() (plainSecret string, hashedSecret string, err error)

	// HashSecret hashes a plain secret.
	HashSecret(plainSecret string) (hashedSecret string, err error)

	// CompareSecret reports whether plainSecret matches hashedSecret.
	CompareSecret(plainSecret string, hashedSecret string) bool
}

// TokenService generates opaque single-presentation tokens. Only the hash is ever persisted, so a
// database read never yields a usable token.
type TokenService interface {
	// GenerateToken returns a random URL-safe plain token and its hex SHA-256 hash.
	GenerateToken() (plainToken string, tokenHash string, err error)

	// HashToken returns the hex SHA-256 hash of plainToken.
	HashToken(plainToken string) string
}
