package domain

// Algorithm represents the authenticated cipher used to seal a payload.
//
// Both algorithms use a 256-bit key, a 12-byte IV and a detached 16-byte authentication tag, so sealed
// payloads share one storage layout regardless of the algorithm chosen.
type Algorithm string

const (
	// AESGCM represents AES-256-GCM. It is the default and is hardware accelerated on CPUs with AES-NI.
	AESGCM Algorithm = "aes-gcm"

	// ChaCha20 represents ChaCha20-Poly1305, for clients without AES hardware acceleration.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

// HashAlgorithm identifies the PRF used by PBKDF2.
type HashAlgorithm string

const (
	// SHA256 selects HMAC-SHA-256 as the PBKDF2 PRF.
	SHA256 HashAlgorithm = "sha256"

	// SHA512 selects HMAC-SHA-512 as the PBKDF2 PRF.
	SHA512 HashAlgorithm = "sha512"
)

// Size and strength constraints for every sealed payload.
const (
	// KeySize is the derived key length in bytes (256 bits).
	KeySize = 32

	// IVSize is the AEAD nonce length in bytes.
	IVSize = 12

	// TagSize is the detached authentication tag length in bytes.
	TagSize = 16

	// MinSaltSize is the minimum PBKDF2 salt length in bytes.
	MinSaltSize = 16

	// MinIterations is the lowest PBKDF2 iteration count accepted anywhere in the system.
	MinIterations = 100000

	// MaxIterations is the highest PBKDF2 iteration count accepted anywhere in the system. It bounds
	// the work a single stored record can force onto a crypto worker.
	MaxIterations = 10000000

	// DefaultIterations is used by the sealing helper when the caller does not pick a count.
	DefaultIterations = 600000

	// IntegrityHashSize is the length of a hex encoded SHA-256 digest.
	IntegrityHashSize = 64
)

// Valid reports whether a is a supported cipher.
func (a Algorithm) Valid() bool {
	return a == AESGCM || a == ChaCha20
}

// Valid reports whether h is a supported PBKDF2 PRF.
func (h HashAlgorithm) Valid() bool {
	return h == SHA256 || h == SHA512
}
