// Package usecase implements the audit trail: appending signed entries, querying them, aggregating
// statistics, exporting CSV reports, verifying signatures and enforcing the retention window.
package usecase

import (
	"context"
	"io"
	"time"

	auditDomain "github.com/allisson/sealbox/internal/audit/domain"
)

// AuditLogRepository defines append-only audit log persistence.
type AuditLogRepository interface {
	Create(ctx context.Context, auditLog *auditDomain.AuditLog) error
	List(
		ctx context.Context,
		filter auditDomain.Filter,
		sort auditDomain.Sort,
		offset, limit int,
	) ([]*auditDomain.AuditLog, error)
	Stream(ctx context.Context, filter auditDomain.Filter, fn func(*auditDomain.AuditLog) error) error
	Statistics(ctx context.Context, filter auditDomain.Filter) (*auditDomain.Statistics, error)
	DeleteOlderThan(ctx context.Context, olderThan time.Time, dryRun bool) (int64, error)
}

// AuditLogUseCase defines the audit trail operations.
type AuditLogUseCase interface {
	// Append stores a new entry, signing it when a signing key is configured.
	Append(ctx context.Context, event *auditDomain.Event) (*auditDomain.AuditLog, error)

	// Query returns a page of entries.
	Query(
		ctx context.Context,
		filter auditDomain.Filter,
		sort auditDomain.Sort,
		offset, limit int,
	) ([]*auditDomain.AuditLog, error)

	// AggregateStatistics returns counts only, never entry content.
	AggregateStatistics(ctx context.Context, filter auditDomain.Filter) (*auditDomain.Statistics, error)

	// Export writes matching entries as CSV (timestamp, actor, action, record_id, outcome) and returns
	// the number of rows written, excluding the header.
	Export(ctx context.Context, filter auditDomain.Filter, w io.Writer) (int64, error)

	// VerifyBatch checks the signatures of entries created in [start, end].
	VerifyBatch(ctx context.Context, start, end time.Time) (*auditDomain.VerificationReport, error)

	// DeleteOlderThan removes entries older than days. dryRun only counts.
	DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error)
}
