// Package http assembles the public API: router, middleware chain, health checks and the separate
// Prometheus metrics listener.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	auditHTTP "github.com/allisson/sealbox/internal/audit/http"
	authDomain "github.com/allisson/sealbox/internal/auth/domain"
	authHTTP "github.com/allisson/sealbox/internal/auth/http"
	authService "github.com/allisson/sealbox/internal/auth/service"
	authUseCase "github.com/allisson/sealbox/internal/auth/usecase"
	"github.com/allisson/sealbox/internal/config"
	"github.com/allisson/sealbox/internal/database"
	"github.com/allisson/sealbox/internal/metrics"
	recordsHTTP "github.com/allisson/sealbox/internal/records/http"
	revealHTTP "github.com/allisson/sealbox/internal/reveal/http"
)

// readinessTimeout bounds the database ping behind /ready.
const readinessTimeout = 2 * time.Second

// Server represents the HTTP server.
type Server struct {
	db     *sql.DB
	server *http.Server
	logger *slog.Logger
	router *gin.Engine
}

// Handlers groups the endpoint handlers mounted under /v1.
type Handlers struct {
	Token    *authHTTP.TokenHandler
	Record   *recordsHTTP.RecordHandler
	Reveal   *revealHTTP.RevealHandler
	AuditLog *auditHTTP.AuditLogHandler
}

// NewServer creates a new HTTP server. SetupRouter must be called before Start.
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRouter builds the gin engine with every route and its capability requirement.
func (s *Server) SetupRouter(
	cfg *config.Config,
	handlers Handlers,
	tokenUseCase authUseCase.TokenUseCase,
	tokenService authService.TokenService,
	metricsProvider *metrics.Provider,
) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")

	tokenRoute := []gin.HandlerFunc{}
	if cfg.RateLimitTokenEnabled {
		tokenRoute = append(tokenRoute, authHTTP.TokenRateLimitMiddleware(
			cfg.RateLimitTokenRequestsPerSec,
			cfg.RateLimitTokenBurst,
			s.logger,
		))
	}
	tokenRoute = append(tokenRoute, handlers.Token.IssueTokenHandler)
	v1.POST("/token", tokenRoute...)

	authenticated := v1.Group("")
	authenticated.Use(authHTTP.AuthenticationMiddleware(tokenUseCase, tokenService, s.logger))
	if cfg.RateLimitEnabled {
		authenticated.Use(authHTTP.RateLimitMiddleware(cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger))
	}

	requires := func(capability authDomain.Capability) gin.HandlerFunc {
		return authHTTP.AuthorizationMiddleware(capability, s.logger)
	}

	records := authenticated.Group("/records")
	{
		records.POST("", requires(authDomain.WriteCapability), handlers.Record.CreateHandler)
		records.GET("", requires(authDomain.ReadCapability), handlers.Record.ListHandler)
		records.GET("/:id", requires(authDomain.ReadCapability), handlers.Record.GetHandler)
		records.DELETE("/:id", requires(authDomain.DeleteCapability), handlers.Record.DeleteHandler)
		records.POST("/:id/restore", requires(authDomain.DeleteCapability), handlers.Record.RestoreHandler)
		records.POST("/:id/reveal", requires(authDomain.RevealCapability), handlers.Reveal.RequestHandler)
	}

	authenticated.POST("/reveals/redeem", requires(authDomain.RevealCapability), handlers.Reveal.RedeemHandler)

	auditLogs := authenticated.Group("/audit-logs", requires(authDomain.AuditCapability))
	{
		auditLogs.GET("", handlers.AuditLog.ListHandler)
		auditLogs.GET("/stats", handlers.AuditLog.StatsHandler)
		auditLogs.GET("/export", handlers.AuditLog.ExportHandler)
	}

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the HTTP server. It blocks until the server stops.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return fmt.Errorf("router not configured")
	}
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) readinessHandler(c *gin.Context) {
	if err := database.Ping(c.Request.Context(), s.db, readinessTimeout); err != nil {
		s.logger.Warn("readiness check failed", slog.Any("error", err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"database": "error"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": gin.H{"database": "ok"},
	})
}
