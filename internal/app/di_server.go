package app

import (
	"context"
	"fmt"
	"time"

	"github.com/allisson/sealbox/internal/http"
	"github.com/allisson/sealbox/internal/worker"
)

// HTTPServer returns the public API server with its router configured.
func (c *Container) HTTPServer() (*http.Server, error) {
	return lazy(c, &c.httpServerInit, "httpServer", &c.httpServer, c.initHTTPServer)
}

// MetricsServer returns the Prometheus metrics server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	return lazy(c, &c.metricsServerInit, "metricsServer", &c.metricsServer, func() (*http.MetricsServer, error) {
		provider, err := c.MetricsProvider()
		if err != nil {
			return nil, err
		}
		if provider == nil {
			return nil, nil
		}
		return http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider), nil
	})
}

// PurgeWorker returns the background purge worker.
func (c *Container) PurgeWorker() (*worker.PurgeWorker, error) {
	return lazy(c, &c.purgeWorkerInit, "purgeWorker", &c.purgeWorker, c.initPurgeWorker)
}

// PurgeTasks returns the purge jobs shared by the background worker and the purge command.
func (c *Container) PurgeTasks() ([]worker.Task, error) {
	recordUseCase, err := c.RecordUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get record use case for purge: %w", err)
	}
	revealUseCase, err := c.RevealUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get reveal use case for purge: %w", err)
	}
	tokenUseCase, err := c.TokenUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get token use case for purge: %w", err)
	}
	auditLogUseCase, err := c.AuditLogUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log use case for purge: %w", err)
	}

	tasks := []worker.Task{
		{
			Name: "records",
			Run: func(ctx context.Context) (int64, error) {
				return recordUseCase.PurgeExpired(ctx, c.config.RecordPurgeGrace)
			},
		},
		{
			Name: "reveal_tokens",
			Run: func(ctx context.Context) (int64, error) {
				return revealUseCase.CleanExpired(ctx, 0)
			},
		},
		{
			Name: "auth_tokens",
			Run:  tokenUseCase.PurgeExpired,
		},
	}

	if c.config.AuditRetentionDays > 0 {
		tasks = append(tasks, worker.Task{
			Name: "audit_logs",
			Run: func(ctx context.Context) (int64, error) {
				return auditLogUseCase.DeleteOlderThan(ctx, c.config.AuditRetentionDays, false)
			},
		})
	}

	return tasks, nil
}

func (c *Container) initPurgeWorker() (*worker.PurgeWorker, error) {
	tasks, err := c.PurgeTasks()
	if err != nil {
		return nil, err
	}

	interval := c.config.PurgeInterval
	if interval <= 0 {
		interval = time.Hour
	}

	return worker.NewPurgeWorker(worker.Config{Interval: interval}, c.Logger(), tasks...), nil
}

func (c *Container) initHTTPServer() (*http.Server, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}

	tokenHandler, err := c.TokenHandler()
	if err != nil {
		return nil, err
	}
	recordHandler, err := c.RecordHandler()
	if err != nil {
		return nil, err
	}
	revealHandler, err := c.RevealHandler()
	if err != nil {
		return nil, err
	}
	auditLogHandler, err := c.AuditLogHandler()
	if err != nil {
		return nil, err
	}
	tokenUseCase, err := c.TokenUseCase()
	if err != nil {
		return nil, err
	}
	metricsProvider, err := c.MetricsProvider()
	if err != nil {
		return nil, err
	}

	server := http.NewServer(db, c.config.ServerHost, c.config.ServerPort, c.Logger())
	server.SetupRouter(
		c.config,
		http.Handlers{
			Token:    tokenHandler,
			Record:   recordHandler,
			Reveal:   revealHandler,
			AuditLog: auditLogHandler,
		},
		tokenUseCase,
		c.TokenService(),
		metricsProvider,
	)

	return server, nil
}
