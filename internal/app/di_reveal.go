package app

import (
	"fmt"

	revealHTTP "github.com/allisson/sealbox/internal/reveal/http"
	revealRepository "github.com/allisson/sealbox/internal/reveal/repository"
	revealService "github.com/allisson/sealbox/internal/reveal/service"
	revealUseCase "github.com/allisson/sealbox/internal/reveal/usecase"
)

// RevealTokenRepository returns the reveal token repository for DB_DRIVER.
func (c *Container) RevealTokenRepository() (revealUseCase.TokenRepository, error) {
	return lazy(c, &c.revealTokenRepoInit, "revealTokenRepository", &c.revealTokenRepo,
		func() (revealUseCase.TokenRepository, error) {
			db, err := c.DB()
			if err != nil {
				return nil, fmt.Errorf("failed to get database for reveal token repository: %w", err)
			}
			switch c.config.DBDriver {
			case "postgres":
				return revealRepository.NewPostgreSQLTokenRepository(db), nil
			case "mysql":
				return revealRepository.NewMySQLTokenRepository(db), nil
			default:
				return nil, c.unsupportedDriver()
			}
		})
}

// AttemptRepository returns the failed reveal attempt counter repository for DB_DRIVER.
func (c *Container) AttemptRepository() (revealUseCase.AttemptRepository, error) {
	return lazy(c, &c.attemptRepositoryInit, "attemptRepository", &c.attemptRepository,
		func() (revealUseCase.AttemptRepository, error) {
			db, err := c.DB()
			if err != nil {
				return nil, fmt.Errorf("failed to get database for attempt repository: %w", err)
			}
			switch c.config.DBDriver {
			case "postgres":
				return revealRepository.NewPostgreSQLAttemptRepository(db), nil
			case "mysql":
				return revealRepository.NewMySQLAttemptRepository(db), nil
			default:
				return nil, c.unsupportedDriver()
			}
		})
}

// PayloadCache returns the in-memory store holding revealed payloads until their token is redeemed.
func (c *Container) PayloadCache() *revealService.PayloadCache {
	c.payloadCacheInit.Do(func() {
		c.payloadCache = revealService.NewPayloadCache(c.config.RevealCacheSize, c.config.RevealTokenTTL)
	})
	return c.payloadCache
}

// RevealUseCase returns the reveal token manager.
func (c *Container) RevealUseCase() (revealUseCase.RevealUseCase, error) {
	return lazy(c, &c.revealUseCaseInit, "revealUseCase", &c.revealUseCase, c.initRevealUseCase)
}

// RevealHandler returns the reveal and redeem handler.
func (c *Container) RevealHandler() (*revealHTTP.RevealHandler, error) {
	return lazy(c, &c.revealHandlerInit, "revealHandler", &c.revealHandler,
		func() (*revealHTTP.RevealHandler, error) {
			revealUseCase, err := c.RevealUseCase()
			if err != nil {
				return nil, fmt.Errorf("failed to get reveal use case for reveal handler: %w", err)
			}
			return revealHTTP.NewRevealHandler(revealUseCase, c.Logger()), nil
		})
}

func (c *Container) initRevealUseCase() (revealUseCase.RevealUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for reveal use case: %w", err)
	}

	recordRepository, err := c.RecordRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get record repository for reveal use case: %w", err)
	}

	tokenRepository, err := c.RevealTokenRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get reveal token repository for reveal use case: %w", err)
	}

	attemptRepository, err := c.AttemptRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get attempt repository for reveal use case: %w", err)
	}

	auditLogUseCase, err := c.AuditLogUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log use case for reveal use case: %w", err)
	}

	useCase := revealUseCase.NewRevealUseCase(
		c.config,
		txManager,
		recordRepository,
		tokenRepository,
		attemptRepository,
		auditLogUseCase,
		c.Sealer(),
		c.WorkerPool(),
		c.TokenService(),
		c.PayloadCache(),
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for reveal use case: %w", err)
		}
		return revealUseCase.NewRevealUseCaseWithMetrics(useCase, businessMetrics), nil
	}

	return useCase, nil
}
