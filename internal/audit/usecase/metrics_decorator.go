package usecase

import (
	"context"
	"io"
	"time"

	auditDomain "github.com/allisson/sealbox/internal/audit/domain"
	"github.com/allisson/sealbox/internal/metrics"
)

// auditLogUseCaseWithMetrics decorates AuditLogUseCase with metrics instrumentation.
type auditLogUseCaseWithMetrics struct {
	next    AuditLogUseCase
	metrics metrics.BusinessMetrics
}

// NewAuditLogUseCaseWithMetrics wraps an AuditLogUseCase with metrics recording.
func NewAuditLogUseCaseWithMetrics(useCase AuditLogUseCase, m metrics.BusinessMetrics) AuditLogUseCase {
	return &auditLogUseCaseWithMetrics{next: useCase, metrics: m}
}

func (a *auditLogUseCaseWithMetrics) record(ctx context.Context, op string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	a.metrics.RecordOperation(ctx, "audit", op, status)
	a.metrics.RecordDuration(ctx, "audit", op, time.Since(start), status)
}

// Append records metrics for audit appends.
func (a *auditLogUseCaseWithMetrics) Append(
	ctx context.Context,
	event *auditDomain.Event,
) (*auditDomain.AuditLog, error) {
	start := time.Now()
	auditLog, err := a.next.Append(ctx, event)
	a.record(ctx, "audit_append", start, err)
	return auditLog, err
}

// Query records metrics for audit queries.
func (a *auditLogUseCaseWithMetrics) Query(
	ctx context.Context,
	filter auditDomain.Filter,
	sort auditDomain.Sort,
	offset, limit int,
) ([]*auditDomain.AuditLog, error) {
	start := time.Now()
	auditLogs, err := a.next.Query(ctx, filter, sort, offset, limit)
	a.record(ctx, "audit_query", start, err)
	return auditLogs, err
}

// AggregateStatistics records metrics for statistics queries.
func (a *auditLogUseCaseWithMetrics) AggregateStatistics(
	ctx context.Context,
	filter auditDomain.Filter,
) (*auditDomain.Statistics, error) {
	start := time.Now()
	stats, err := a.next.AggregateStatistics(ctx, filter)
	a.record(ctx, "audit_statistics", start, err)
	return stats, err
}

// Export records metrics for CSV exports.
func (a *auditLogUseCaseWithMetrics) Export(
	ctx context.Context,
	filter auditDomain.Filter,
	w io.Writer,
) (int64, error) {
	start := time.Now()
	count, err := a.next.Export(ctx, filter, w)
	a.record(ctx, "audit_export", start, err)
	return count, err
}

// VerifyBatch records metrics for signature verification.
func (a *auditLogUseCaseWithMetrics) VerifyBatch(
	ctx context.Context,
	start, end time.Time,
) (*auditDomain.VerificationReport, error) {
	begin := time.Now()
	report, err := a.next.VerifyBatch(ctx, start, end)
	a.record(ctx, "audit_verify", begin, err)
	return report, err
}

// DeleteOlderThan records metrics for retention purges.
func (a *auditLogUseCaseWithMetrics) DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error) {
	start := time.Now()
	count, err := a.next.DeleteOlderThan(ctx, days, dryRun)
	a.record(ctx, "audit_delete", start, err)
	return count, err
}
