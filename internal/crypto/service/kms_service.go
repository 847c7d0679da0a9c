package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"

	"gocloud.dev/secrets"

	cryptoDomain "github.com/allisson/sealbox/internal/crypto/domain"

	// Register all KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// kmsService implements KMSService using gocloud.dev/secrets.
type kmsService struct{}

// NewKMSService creates a new KMS service instance.
func NewKMSService() KMSService {
	return &kmsService{}
}

// OpenKeeper opens a secrets.Keeper for the configured KMS provider using the keyURI.
// Returns a KMSKeeper which *secrets.Keeper implements.
func (k *kmsService) OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error) {
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	return keeper, nil
}

// GenerateWrappedSigningKey creates a random 32-byte signing key and returns its configuration
// value "id:base64(kms ciphertext)". The raw key never leaves this function.
func GenerateWrappedSigningKey(
	ctx context.Context,
	keeper cryptoDomain.KMSKeeper,
	id string,
) (string, error) {
	if id == "" || strings.Contains(id, ":") {
		return "", fmt.Errorf("invalid signing key id %q", id)
	}

	key := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("failed to generate signing key: %w", err)
	}
	defer cryptoDomain.Zero(key)

	wrapped, err := keeper.Encrypt(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to wrap signing key: %w", err)
	}

	return id + ":" + base64.StdEncoding.EncodeToString(wrapped), nil
}

// UnwrapSigningKey parses "id:base64(kms ciphertext)" and decrypts it through keeper.
func UnwrapSigningKey(
	ctx context.Context,
	keeper cryptoDomain.KMSKeeper,
	encoded string,
) (*cryptoDomain.SigningKey, error) {
	parts := strings.SplitN(strings.TrimSpace(encoded), ":", 2)
	if len(parts) != 2 || parts[0] == "" {
		return nil, fmt.Errorf("invalid signing key format, expected id:base64")
	}

	wrapped, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid signing key base64: %w", err)
	}

	key, err := keeper.Decrypt(ctx, wrapped)
	if err != nil {
		return nil, fmt.Errorf("failed to unwrap signing key %s: %w", parts[0], err)
	}
	if len(key) != cryptoDomain.KeySize {
		cryptoDomain.Zero(key)
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	return &cryptoDomain.SigningKey{ID: parts[0], Key: key}, nil
}
