package app

import (
	"fmt"

	auditHTTP "github.com/allisson/sealbox/internal/audit/http"
	auditRepository "github.com/allisson/sealbox/internal/audit/repository"
	auditService "github.com/allisson/sealbox/internal/audit/service"
	auditUseCase "github.com/allisson/sealbox/internal/audit/usecase"
)

// AuditLogRepository returns the append-only audit log repository for DB_DRIVER.
func (c *Container) AuditLogRepository() (auditUseCase.AuditLogRepository, error) {
	return lazy(c, &c.auditLogRepositoryInit, "auditLogRepository", &c.auditLogRepository,
		func() (auditUseCase.AuditLogRepository, error) {
			db, err := c.DB()
			if err != nil {
				return nil, fmt.Errorf("failed to get database for audit log repository: %w", err)
			}
			switch c.config.DBDriver {
			case "postgres":
				return auditRepository.NewPostgreSQLAuditLogRepository(db), nil
			case "mysql":
				return auditRepository.NewMySQLAuditLogRepository(db), nil
			default:
				return nil, c.unsupportedDriver()
			}
		})
}

// AuditLogUseCase returns the audit trail use case. Every other use case appends through it.
func (c *Container) AuditLogUseCase() (auditUseCase.AuditLogUseCase, error) {
	return lazy(c, &c.auditLogUseCaseInit, "auditLogUseCase", &c.auditLogUseCase, c.initAuditLogUseCase)
}

// AuditLogHandler returns the /v1/audit-logs handler.
func (c *Container) AuditLogHandler() (*auditHTTP.AuditLogHandler, error) {
	return lazy(c, &c.auditLogHandlerInit, "auditLogHandler", &c.auditLogHandler,
		func() (*auditHTTP.AuditLogHandler, error) {
			auditLogUseCase, err := c.AuditLogUseCase()
			if err != nil {
				return nil, fmt.Errorf("failed to get audit log use case for audit log handler: %w", err)
			}
			return auditHTTP.NewAuditLogHandler(auditLogUseCase, c.Logger()), nil
		})
}

func (c *Container) initAuditLogUseCase() (auditUseCase.AuditLogUseCase, error) {
	auditLogRepository, err := c.AuditLogRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log repository for audit log use case: %w", err)
	}

	signingKey, err := c.SigningKey()
	if err != nil {
		return nil, fmt.Errorf("failed to load audit signing key: %w", err)
	}

	useCase := auditUseCase.NewAuditLogUseCase(auditLogRepository, auditService.NewAuditSigner(), signingKey)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for audit log use case: %w", err)
		}
		return auditUseCase.NewAuditLogUseCaseWithMetrics(useCase, businessMetrics), nil
	}

	return useCase, nil
}
