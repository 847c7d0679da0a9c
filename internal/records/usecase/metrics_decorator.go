package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/sealbox/internal/audit/domain"
	"github.com/allisson/sealbox/internal/metrics"
	recordsDomain "github.com/allisson/sealbox/internal/records/domain"
)

// recordUseCaseWithMetrics decorates RecordUseCase with metrics instrumentation.
type recordUseCaseWithMetrics struct {
	next    RecordUseCase
	metrics metrics.BusinessMetrics
}

// NewRecordUseCaseWithMetrics wraps a RecordUseCase with metrics recording.
func NewRecordUseCaseWithMetrics(useCase RecordUseCase, m metrics.BusinessMetrics) RecordUseCase {
	return &recordUseCaseWithMetrics{next: useCase, metrics: m}
}

func (r *recordUseCaseWithMetrics) record(ctx context.Context, op string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	r.metrics.RecordOperation(ctx, "records", op, status)
	r.metrics.RecordDuration(ctx, "records", op, time.Since(start), status)
}

// Create records metrics for record creation.
func (r *recordUseCaseWithMetrics) Create(
	ctx context.Context,
	actor auditDomain.Actor,
	input *recordsDomain.CreateRecordInput,
) (*recordsDomain.Record, error) {
	start := time.Now()
	record, err := r.next.Create(ctx, actor, input)
	r.record(ctx, "record_create", start, err)
	return record, err
}

// Get records metrics for record lookups.
func (r *recordUseCaseWithMetrics) Get(ctx context.Context, id uuid.UUID) (*recordsDomain.Record, error) {
	start := time.Now()
	record, err := r.next.Get(ctx, id)
	r.record(ctx, "record_get", start, err)
	return record, err
}

// List records metrics for record listings.
func (r *recordUseCaseWithMetrics) List(
	ctx context.Context,
	filter recordsDomain.ListFilter,
) ([]*recordsDomain.Record, error) {
	start := time.Now()
	records, err := r.next.List(ctx, filter)
	r.record(ctx, "record_list", start, err)
	return records, err
}

// SoftDelete records metrics for soft deletes.
func (r *recordUseCaseWithMetrics) SoftDelete(ctx context.Context, actor auditDomain.Actor, id uuid.UUID) error {
	start := time.Now()
	err := r.next.SoftDelete(ctx, actor, id)
	r.record(ctx, "record_delete", start, err)
	return err
}

// Restore records metrics for restores.
func (r *recordUseCaseWithMetrics) Restore(ctx context.Context, actor auditDomain.Actor, id uuid.UUID) error {
	start := time.Now()
	err := r.next.Restore(ctx, actor, id)
	r.record(ctx, "record_restore", start, err)
	return err
}

// IncrementRevealCounters records metrics for reveal accounting.
func (r *recordUseCaseWithMetrics) IncrementRevealCounters(ctx context.Context, id, actorID uuid.UUID) error {
	start := time.Now()
	err := r.next.IncrementRevealCounters(ctx, id, actorID)
	r.record(ctx, "record_reveal_count", start, err)
	return err
}

// PurgeExpired records metrics for the expiry purge.
func (r *recordUseCaseWithMetrics) PurgeExpired(ctx context.Context, grace time.Duration) (int64, error) {
	start := time.Now()
	count, err := r.next.PurgeExpired(ctx, grace)
	r.record(ctx, "record_purge", start, err)
	return count, err
}
