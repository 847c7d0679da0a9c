package app

import (
	"fmt"

	recordsHTTP "github.com/allisson/sealbox/internal/records/http"
	recordsRepository "github.com/allisson/sealbox/internal/records/repository"
	recordsUseCase "github.com/allisson/sealbox/internal/records/usecase"
)

// RecordRepository returns the encrypted record repository for DB_DRIVER.
func (c *Container) RecordRepository() (recordsUseCase.RecordRepository, error) {
	return lazy(c, &c.recordRepositoryInit, "recordRepository", &c.recordRepository,
		func() (recordsUseCase.RecordRepository, error) {
			db, err := c.DB()
			if err != nil {
				return nil, fmt.Errorf("failed to get database for record repository: %w", err)
			}
			switch c.config.DBDriver {
			case "postgres":
				return recordsRepository.NewPostgreSQLRecordRepository(db), nil
			case "mysql":
				return recordsRepository.NewMySQLRecordRepository(db), nil
			default:
				return nil, c.unsupportedDriver()
			}
		})
}

// RecordUseCase returns the record store use case. Incoming records must carry at least
// KDF_MIN_ITERATIONS PBKDF2 rounds.
func (c *Container) RecordUseCase() (recordsUseCase.RecordUseCase, error) {
	return lazy(c, &c.recordUseCaseInit, "recordUseCase", &c.recordUseCase, c.initRecordUseCase)
}

// RecordHandler returns the /v1/records handler.
func (c *Container) RecordHandler() (*recordsHTTP.RecordHandler, error) {
	return lazy(c, &c.recordHandlerInit, "recordHandler", &c.recordHandler,
		func() (*recordsHTTP.RecordHandler, error) {
			recordUseCase, err := c.RecordUseCase()
			if err != nil {
				return nil, fmt.Errorf("failed to get record use case for record handler: %w", err)
			}
			return recordsHTTP.NewRecordHandler(recordUseCase, c.Logger()), nil
		})
}

func (c *Container) initRecordUseCase() (recordsUseCase.RecordUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for record use case: %w", err)
	}

	recordRepository, err := c.RecordRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get record repository for record use case: %w", err)
	}

	auditLogUseCase, err := c.AuditLogUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log use case for record use case: %w", err)
	}

	useCase := recordsUseCase.NewRecordUseCase(
		txManager,
		recordRepository,
		auditLogUseCase,
		c.config.KDFMinIterations,
		c.config.KDFMaxIterations,
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for record use case: %w", err)
		}
		return recordsUseCase.NewRecordUseCaseWithMetrics(useCase, businessMetrics), nil
	}

	return useCase, nil
}
