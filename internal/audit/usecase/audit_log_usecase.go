package usecase

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/sealbox/internal/audit/domain"
	auditService "github.com/allisson/sealbox/internal/audit/service"
	cryptoDomain "github.com/allisson/sealbox/internal/crypto/domain"
	apperrors "github.com/allisson/sealbox/internal/errors"
)

// csvHeader is the column layout of audit exports.
var csvHeader = []string{"timestamp", "actor", "action", "record_id", "outcome"}

// auditLogUseCase implements AuditLogUseCase.
type auditLogUseCase struct {
	auditLogRepo AuditLogRepository
	signer       auditService.AuditSigner
	signingKey   *cryptoDomain.SigningKey
	now          func() time.Time
}

// NewAuditLogUseCase creates a new AuditLogUseCase. signingKey may be nil, in which case entries
// are stored unsigned.
func NewAuditLogUseCase(
	auditLogRepo AuditLogRepository,
	signer auditService.AuditSigner,
	signingKey *cryptoDomain.SigningKey,
) AuditLogUseCase {
	return &auditLogUseCase{
		auditLogRepo: auditLogRepo,
		signer:       signer,
		signingKey:   signingKey,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Append records an audit entry. Timestamps are truncated to microseconds so the signature still
// matches after the database round trip.
func (a *auditLogUseCase) Append(
	ctx context.Context,
	event *auditDomain.Event,
) (*auditDomain.AuditLog, error) {
	if !event.Outcome.Valid() {
		return nil, auditDomain.ErrInvalidOutcome
	}

	auditLog := &auditDomain.AuditLog{
		ID:        uuid.Must(uuid.NewV7()),
		RequestID: event.RequestID,
		ActorID:   event.ActorID,
		Action:    event.Action,
		RecordID:  event.RecordID,
		Outcome:   event.Outcome,
		Metadata:  event.Metadata,
		CreatedAt: a.now().Truncate(time.Microsecond),
	}

	if a.signingKey != nil && a.signer != nil {
		signature, err := a.signer.Sign(a.signingKey.Key, auditLog)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to sign audit log")
		}
		keyID := a.signingKey.ID
		auditLog.Signature = signature
		auditLog.KeyID = &keyID
		auditLog.IsSigned = true
	}

	if err := a.auditLogRepo.Create(ctx, auditLog); err != nil {
		return nil, apperrors.Wrap(err, "failed to create audit log")
	}

	return auditLog, nil
}

// Query returns audit logs matching filter.
func (a *auditLogUseCase) Query(
	ctx context.Context,
	filter auditDomain.Filter,
	sort auditDomain.Sort,
	offset, limit int,
) ([]*auditDomain.AuditLog, error) {
	auditLogs, err := a.auditLogRepo.List(ctx, filter, sort.Normalize(), offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit logs")
	}
	return auditLogs, nil
}

// AggregateStatistics returns aggregate counts for filter.
func (a *auditLogUseCase) AggregateStatistics(
	ctx context.Context,
	filter auditDomain.Filter,
) (*auditDomain.Statistics, error) {
	stats, err := a.auditLogRepo.Statistics(ctx, filter)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to aggregate audit logs")
	}
	return stats, nil
}

// Export streams matching entries to w as CSV.
func (a *auditLogUseCase) Export(
	ctx context.Context,
	filter auditDomain.Filter,
	w io.Writer,
) (int64, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return 0, fmt.Errorf("failed to write csv header: %w", err)
	}

	var count int64
	err := a.auditLogRepo.Stream(ctx, filter, func(l *auditDomain.AuditLog) error {
		recordID := ""
		if l.RecordID != nil {
			recordID = l.RecordID.String()
		}
		row := []string{
			l.CreatedAt.UTC().Format(time.RFC3339Nano),
			l.ActorID.String(),
			string(l.Action),
			recordID,
			string(l.Outcome),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
		count++
		return nil
	})
	if err != nil {
		return count, apperrors.Wrap(err, "failed to export audit logs")
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return count, fmt.Errorf("failed to flush csv: %w", err)
	}
	return count, nil
}

// VerifyBatch verifies signatures of all entries created in [start, end].
func (a *auditLogUseCase) VerifyBatch(
	ctx context.Context,
	start, end time.Time,
) (*auditDomain.VerificationReport, error) {
	report := &auditDomain.VerificationReport{InvalidLogs: make([]uuid.UUID, 0)}
	filter := auditDomain.Filter{CreatedAtFrom: &start, CreatedAtTo: &end}

	err := a.auditLogRepo.Stream(ctx, filter, func(l *auditDomain.AuditLog) error {
		report.TotalChecked++
		if !l.IsSigned {
			report.UnsignedCount++
			return nil
		}
		report.SignedCount++

		if a.signingKey == nil || l.KeyID == nil || *l.KeyID != a.signingKey.ID {
			report.InvalidCount++
			report.InvalidLogs = append(report.InvalidLogs, l.ID)
			return nil
		}

		if err := a.signer.Verify(a.signingKey.Key, l); err != nil {
			report.InvalidCount++
			report.InvalidLogs = append(report.InvalidLogs, l.ID)
			return nil
		}
		report.ValidCount++
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to verify audit logs")
	}

	return report, nil
}

// DeleteOlderThan applies the retention window.
func (a *auditLogUseCase) DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error) {
	if days < 0 {
		return 0, apperrors.Wrap(apperrors.ErrInvalidInput, "days must be zero or positive")
	}

	cutoff := a.now().AddDate(0, 0, -days)
	count, err := a.auditLogRepo.DeleteOlderThan(ctx, cutoff, dryRun)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete audit logs")
	}
	return count, nil
}
