package app

import (
	"fmt"

	authHTTP "github.com/allisson/sealbox/internal/auth/http"
	authRepository "github.com/allisson/sealbox/internal/auth/repository"
	authService "github.com/allisson/sealbox/internal/auth/service"
	authUseCase "github.com/allisson/sealbox/internal/auth/usecase"
)

// SecretService returns the client secret hasher.
func (c *Container) SecretService() authService.SecretService {
	c.secretServiceInit.Do(func() {
		c.secretService = authService.NewSecretService()
	})
	return c.secretService
}

// TokenService returns the opaque token generator shared by bearer and reveal tokens.
func (c *Container) TokenService() authService.TokenService {
	c.tokenServiceInit.Do(func() {
		c.tokenService = authService.NewTokenService()
	})
	return c.tokenService
}

// ClientRepository returns the client repository for DB_DRIVER.
func (c *Container) ClientRepository() (authUseCase.ClientRepository, error) {
	return lazy(c, &c.clientRepositoryInit, "clientRepository", &c.clientRepository,
		func() (authUseCase.ClientRepository, error) {
			db, err := c.DB()
			if err != nil {
				return nil, fmt.Errorf("failed to get database for client repository: %w", err)
			}
			switch c.config.DBDriver {
			case "postgres":
				return authRepository.NewPostgreSQLClientRepository(db), nil
			case "mysql":
				return authRepository.NewMySQLClientRepository(db), nil
			default:
				return nil, c.unsupportedDriver()
			}
		})
}

// AuthTokenRepository returns the bearer token repository for DB_DRIVER.
func (c *Container) AuthTokenRepository() (authUseCase.TokenRepository, error) {
	return lazy(c, &c.authTokenRepoInit, "authTokenRepository", &c.authTokenRepo,
		func() (authUseCase.TokenRepository, error) {
			db, err := c.DB()
			if err != nil {
				return nil, fmt.Errorf("failed to get database for token repository: %w", err)
			}
			switch c.config.DBDriver {
			case "postgres":
				return authRepository.NewPostgreSQLTokenRepository(db), nil
			case "mysql":
				return authRepository.NewMySQLTokenRepository(db), nil
			default:
				return nil, c.unsupportedDriver()
			}
		})
}

// ClientUseCase returns the client management use case.
func (c *Container) ClientUseCase() (authUseCase.ClientUseCase, error) {
	return lazy(c, &c.clientUseCaseInit, "clientUseCase", &c.clientUseCase, c.initClientUseCase)
}

// TokenUseCase returns the bearer token use case.
func (c *Container) TokenUseCase() (authUseCase.TokenUseCase, error) {
	return lazy(c, &c.tokenUseCaseInit, "tokenUseCase", &c.tokenUseCase, c.initTokenUseCase)
}

// TokenHandler returns the POST /v1/token handler.
func (c *Container) TokenHandler() (*authHTTP.TokenHandler, error) {
	return lazy(c, &c.tokenHandlerInit, "tokenHandler", &c.tokenHandler, func() (*authHTTP.TokenHandler, error) {
		tokenUseCase, err := c.TokenUseCase()
		if err != nil {
			return nil, fmt.Errorf("failed to get token use case for token handler: %w", err)
		}
		return authHTTP.NewTokenHandler(tokenUseCase, c.Logger()), nil
	})
}

func (c *Container) initClientUseCase() (authUseCase.ClientUseCase, error) {
	clientRepository, err := c.ClientRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get client repository for client use case: %w", err)
	}

	useCase := authUseCase.NewClientUseCase(clientRepository, c.SecretService())

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for client use case: %w", err)
		}
		return authUseCase.NewClientUseCaseWithMetrics(useCase, businessMetrics), nil
	}

	return useCase, nil
}

func (c *Container) initTokenUseCase() (authUseCase.TokenUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for token use case: %w", err)
	}

	clientRepository, err := c.ClientRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get client repository for token use case: %w", err)
	}

	tokenRepository, err := c.AuthTokenRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get token repository for token use case: %w", err)
	}

	auditLogUseCase, err := c.AuditLogUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log use case for token use case: %w", err)
	}

	useCase := authUseCase.NewTokenUseCase(
		c.config,
		txManager,
		clientRepository,
		tokenRepository,
		c.SecretService(),
		c.TokenService(),
		auditLogUseCase,
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for token use case: %w", err)
		}
		return authUseCase.NewTokenUseCaseWithMetrics(useCase, businessMetrics), nil
	}

	return useCase, nil
}
