// Package app wires every component of the vault from configuration. Components are built lazily
// on first access and shared afterwards.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/allisson/sealbox/internal/config"
	"github.com/allisson/sealbox/internal/database"
	"github.com/allisson/sealbox/internal/http"
	"github.com/allisson/sealbox/internal/metrics"
	"github.com/allisson/sealbox/internal/worker"

	auditHTTP "github.com/allisson/sealbox/internal/audit/http"
	auditUseCase "github.com/allisson/sealbox/internal/audit/usecase"
	authHTTP "github.com/allisson/sealbox/internal/auth/http"
	authService "github.com/allisson/sealbox/internal/auth/service"
	authUseCase "github.com/allisson/sealbox/internal/auth/usecase"
	cryptoDomain "github.com/allisson/sealbox/internal/crypto/domain"
	cryptoService "github.com/allisson/sealbox/internal/crypto/service"
	recordsHTTP "github.com/allisson/sealbox/internal/records/http"
	recordsUseCase "github.com/allisson/sealbox/internal/records/usecase"
	revealHTTP "github.com/allisson/sealbox/internal/reveal/http"
	revealService "github.com/allisson/sealbox/internal/reveal/service"
	revealUseCase "github.com/allisson/sealbox/internal/reveal/usecase"
)

// Container holds all application dependencies.
type Container struct {
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	db              *sql.DB
	txManager       database.TxManager
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	// Crypto
	kmsService cryptoService.KMSService
	sealer     cryptoService.Sealer
	workerPool *cryptoService.WorkerPool
	signingKey *cryptoDomain.SigningKey

	// Auth
	secretService    authService.SecretService
	tokenService     authService.TokenService
	clientRepository authUseCase.ClientRepository
	authTokenRepo    authUseCase.TokenRepository
	clientUseCase    authUseCase.ClientUseCase
	tokenUseCase     authUseCase.TokenUseCase
	tokenHandler     *authHTTP.TokenHandler

	// Audit
	auditLogRepository auditUseCase.AuditLogRepository
	auditLogUseCase    auditUseCase.AuditLogUseCase
	auditLogHandler    *auditHTTP.AuditLogHandler

	// Records
	recordRepository recordsUseCase.RecordRepository
	recordUseCase    recordsUseCase.RecordUseCase
	recordHandler    *recordsHTTP.RecordHandler

	// Reveal
	revealTokenRepo   revealUseCase.TokenRepository
	attemptRepository revealUseCase.AttemptRepository
	payloadCache      *revealService.PayloadCache
	revealUseCase     revealUseCase.RevealUseCase
	revealHandler     *revealHTTP.RevealHandler

	// Servers and workers
	httpServer    *http.Server
	metricsServer *http.MetricsServer
	purgeWorker   *worker.PurgeWorker

	mu                     sync.Mutex
	loggerInit             sync.Once
	dbInit                 sync.Once
	txManagerInit          sync.Once
	metricsProviderInit    sync.Once
	businessMetricsInit    sync.Once
	kmsServiceInit         sync.Once
	sealerInit             sync.Once
	workerPoolInit         sync.Once
	signingKeyInit         sync.Once
	secretServiceInit      sync.Once
	tokenServiceInit       sync.Once
	clientRepositoryInit   sync.Once
	authTokenRepoInit      sync.Once
	clientUseCaseInit      sync.Once
	tokenUseCaseInit       sync.Once
	tokenHandlerInit       sync.Once
	auditLogRepositoryInit sync.Once
	auditLogUseCaseInit    sync.Once
	auditLogHandlerInit    sync.Once
	recordRepositoryInit   sync.Once
	recordUseCaseInit      sync.Once
	recordHandlerInit      sync.Once
	revealTokenRepoInit    sync.Once
	attemptRepositoryInit  sync.Once
	payloadCacheInit       sync.Once
	revealUseCaseInit      sync.Once
	revealHandlerInit      sync.Once
	httpServerInit         sync.Once
	metricsServerInit      sync.Once
	purgeWorkerInit        sync.Once
	initErrors             map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// lazy runs init once and remembers its result. A failed initialization is reported again on every
// later call instead of being retried.
func lazy[T any](c *Container, once *sync.Once, name string, target *T, init func() (T, error)) (T, error) {
	once.Do(func() {
		value, err := init()
		c.mu.Lock()
		defer c.mu.Unlock()
		if err != nil {
			c.initErrors[name] = err
			return
		}
		*target = value
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	if err, exists := c.initErrors[name]; exists {
		var zero T
		return zero, err
	}
	return *target, nil
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the JSON logger at the configured level.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection.
func (c *Container) DB() (*sql.DB, error) {
	return lazy(c, &c.dbInit, "db", &c.db, c.initDB)
}

// TxManager returns the transaction manager.
func (c *Container) TxManager() (database.TxManager, error) {
	return lazy(c, &c.txManagerInit, "txManager", &c.txManager, func() (database.TxManager, error) {
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
		}
		return database.NewTxManager(db), nil
	})
}

// MetricsProvider returns the Prometheus-backed provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	return lazy(c, &c.metricsProviderInit, "metricsProvider", &c.metricsProvider, func() (*metrics.Provider, error) {
		if !c.config.MetricsEnabled {
			return nil, nil
		}
		provider, err := metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics provider: %w", err)
		}
		return provider, nil
	})
}

// BusinessMetrics returns the business metrics recorder. It is a no-op when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	return lazy(c, &c.businessMetricsInit, "businessMetrics", &c.businessMetrics, func() (metrics.BusinessMetrics, error) {
		provider, err := c.MetricsProvider()
		if err != nil {
			return nil, err
		}
		if provider == nil {
			return metrics.NewNoOpBusinessMetrics(), nil
		}
		return metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
	})
}

// Shutdown stops the servers and releases resources that were initialized.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.workerPool != nil {
		c.workerPool.Close()
	}

	if c.payloadCache != nil {
		c.payloadCache.Purge()
	}

	c.signingKey.Close()

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	return errors.Join(shutdownErrors...)
}

func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler).With(slog.String("service", "sealbox"))
}

func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// unsupportedDriver is returned by every repository constructor for an unknown DB_DRIVER.
func (c *Container) unsupportedDriver() error {
	return fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
}
