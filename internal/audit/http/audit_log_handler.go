// Package http provides HTTP handlers for querying, aggregating and exporting the audit trail.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/allisson/sealbox/internal/audit/http/dto"
	auditUseCase "github.com/allisson/sealbox/internal/audit/usecase"
	"github.com/allisson/sealbox/internal/httputil"
)

// AuditLogHandler handles HTTP requests for audit trail operations.
type AuditLogHandler struct {
	auditLogUseCase auditUseCase.AuditLogUseCase
	logger          *slog.Logger
}

// NewAuditLogHandler creates a new audit log handler with required dependencies.
func NewAuditLogHandler(
	auditLogUseCase auditUseCase.AuditLogUseCase,
	logger *slog.Logger,
) *AuditLogHandler {
	return &AuditLogHandler{
		auditLogUseCase: auditLogUseCase,
		logger:          logger,
	}
}

// ListHandler retrieves audit entries with pagination, filtering and sorting.
// GET /v1/audit-logs?offset=0&limit=50&actor_id=...&outcome=FAILED&sort=created_at&order=desc
// Requires AuditCapability. Returns 200 OK with a page of entries.
func (h *AuditLogHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	filter, err := parseFilter(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	sort, err := parseSort(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	auditLogs, err := h.auditLogUseCase.Query(c.Request.Context(), filter, sort, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAuditLogsToListResponse(auditLogs))
}

// StatsHandler returns aggregate counts for the entries matching the filter.
// GET /v1/audit-logs/stats
func (h *AuditLogHandler) StatsHandler(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	stats, err := h.auditLogUseCase.AggregateStatistics(c.Request.Context(), filter)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ExportHandler streams the entries matching the filter as a CSV attachment.
// GET /v1/audit-logs/export
func (h *AuditLogHandler) ExportHandler(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	filename := fmt.Sprintf("audit-logs-%s.csv", time.Now().UTC().Format("20060102T150405Z"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)

	count, err := h.auditLogUseCase.Export(c.Request.Context(), filter, c.Writer)
	if err != nil {
		// Headers are already sent; the truncated body is the only signal left to the client.
		h.logger.Error("audit export interrupted", slog.Int64("rows", count), slog.Any("error", err))
		return
	}

	h.logger.Info("audit export completed", slog.Int64("rows", count))
}
