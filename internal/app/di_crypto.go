package app

import (
	"context"
	"fmt"

	cryptoDomain "github.com/allisson/sealbox/internal/crypto/domain"
	cryptoService "github.com/allisson/sealbox/internal/crypto/service"
)

// KMSService returns the KMS service used to unwrap the audit signing key.
func (c *Container) KMSService() cryptoService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = cryptoService.NewKMSService()
	})
	return c.kmsService
}

// Sealer returns the sealing pipeline used to unseal records during reveal. It accepts any record
// at or above the absolute PBKDF2 floor so records stored before KDF_MIN_ITERATIONS was raised
// remain revealable, and nothing above KDF_MAX_ITERATIONS.
func (c *Container) Sealer() cryptoService.Sealer {
	c.sealerInit.Do(func() {
		c.sealer = NewSealer(cryptoDomain.MinIterations, c.config.KDFMaxIterations)
	})
	return c.sealer
}

// NewSealer builds a sealer whose key deriver refuses fewer than minIterations or more than
// maxIterations rounds.
func NewSealer(minIterations, maxIterations int) *cryptoService.PayloadSealer {
	return cryptoService.NewSealer(
		cryptoService.NewPBKDF2KeyDeriver(minIterations, maxIterations),
		cryptoService.NewCipherEngine(cryptoService.NewAEADManager()),
		cryptoService.NewIntegrityHasher(),
	)
}

// WorkerPool returns the pool bounding concurrent key derivations. Sized by CRYPTO_WORKERS.
func (c *Container) WorkerPool() *cryptoService.WorkerPool {
	c.workerPoolInit.Do(func() {
		c.workerPool = cryptoService.NewWorkerPool(c.config.CryptoWorkers)
	})
	return c.workerPool
}

// SigningKey returns the unwrapped audit signing key, or nil when AUDIT_KMS_KEY_URI and
// AUDIT_SIGNING_KEY are both unset, in which case audit entries are stored unsigned.
func (c *Container) SigningKey() (*cryptoDomain.SigningKey, error) {
	return lazy(c, &c.signingKeyInit, "signingKey", &c.signingKey, c.initSigningKey)
}

func (c *Container) initSigningKey() (*cryptoDomain.SigningKey, error) {
	keyURI, encoded := c.config.AuditKMSKeyURI, c.config.AuditSigningKey
	switch {
	case keyURI == "" && encoded == "":
		c.Logger().Warn("audit signing key not configured, audit entries will be stored unsigned")
		return nil, nil
	case keyURI == "" || encoded == "":
		return nil, fmt.Errorf("AUDIT_KMS_KEY_URI and AUDIT_SIGNING_KEY must be set together")
	}

	ctx := context.Background()
	keeper, err := c.KMSService().OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, err
	}
	defer func() { _ = keeper.Close() }()

	signingKey, err := cryptoService.UnwrapSigningKey(ctx, keeper, encoded)
	if err != nil {
		return nil, err
	}

	c.Logger().Info("audit signing key loaded", "key_id", signingKey.ID)
	return signingKey, nil
}
