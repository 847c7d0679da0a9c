// Package usecase implements the encrypted record store: accepting client sealed values, listing
// them by their masked surrogate, soft deletion and restore, reveal accounting and the expiry purge.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/sealbox/internal/audit/domain"
	recordsDomain "github.com/allisson/sealbox/internal/records/domain"
)

// RecordRepository defines record persistence.
type RecordRepository interface {
	Create(ctx context.Context, record *recordsDomain.Record) error
	Get(ctx context.Context, id uuid.UUID) (*recordsDomain.Record, error)
	List(ctx context.Context, filter recordsDomain.ListFilter, now time.Time) ([]*recordsDomain.Record, error)
	SoftDelete(ctx context.Context, id, actorID uuid.UUID, at time.Time) error
	Restore(ctx context.Context, id uuid.UUID) error
	IncrementRevealCounters(ctx context.Context, id, actorID uuid.UUID, at time.Time) error
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}

// AuditLogger appends audit entries.
type AuditLogger interface {
	Append(ctx context.Context, event *auditDomain.Event) (*auditDomain.AuditLog, error)
}

// RecordUseCase defines the record store operations.
type RecordUseCase interface {
	// Create validates and stores a sealed value. All structural checks run before anything is written.
	Create(
		ctx context.Context,
		actor auditDomain.Actor,
		input *recordsDomain.CreateRecordInput,
	) (*recordsDomain.Record, error)

	// Get returns a live record. Soft deleted records are reported as not found.
	Get(ctx context.Context, id uuid.UUID) (*recordsDomain.Record, error)

	// List returns records matching filter.
	List(ctx context.Context, filter recordsDomain.ListFilter) ([]*recordsDomain.Record, error)

	// SoftDelete hides a record until it is restored or purged.
	SoftDelete(ctx context.Context, actor auditDomain.Actor, id uuid.UUID) error

	// Restore brings back a soft deleted record.
	Restore(ctx context.Context, actor auditDomain.Actor, id uuid.UUID) error

	// IncrementRevealCounters records a successful reveal of id by actorID.
	IncrementRevealCounters(ctx context.Context, id, actorID uuid.UUID) error

	// PurgeExpired hard deletes records that expired more than grace ago.
	PurgeExpired(ctx context.Context, grace time.Duration) (int64, error)
}
