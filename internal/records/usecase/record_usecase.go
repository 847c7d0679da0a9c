package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/sealbox/internal/audit/domain"
	"github.com/allisson/sealbox/internal/database"
	apperrors "github.com/allisson/sealbox/internal/errors"
	recordsDomain "github.com/allisson/sealbox/internal/records/domain"
)

// recordUseCase implements RecordUseCase.
type recordUseCase struct {
	txManager     database.TxManager
	recordRepo    RecordRepository
	auditLogger   AuditLogger
	minIterations int
	maxIterations int
	now           func() time.Time
}

// NewRecordUseCase creates a new RecordUseCase. minIterations and maxIterations bound the PBKDF2
// iteration count of incoming records.
func NewRecordUseCase(
	txManager database.TxManager,
	recordRepo RecordRepository,
	auditLogger AuditLogger,
	minIterations, maxIterations int,
) RecordUseCase {
	return &recordUseCase{
		txManager:     txManager,
		recordRepo:    recordRepo,
		auditLogger:   auditLogger,
		minIterations: minIterations,
		maxIterations: maxIterations,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (r *recordUseCase) validate(input *recordsDomain.CreateRecordInput, now time.Time) error {
	if err := input.Sealed.Validate(r.minIterations, r.maxIterations); err != nil {
		return err
	}
	if strings.TrimSpace(input.MaskSurrogate) == "" {
		return recordsDomain.ErrMaskSurrogateRequired
	}
	if input.ExpiresAt != nil && !input.ExpiresAt.After(now) {
		return recordsDomain.ErrExpiryInPast
	}
	return nil
}

// Create stores a sealed value and its audit entry in one transaction.
func (r *recordUseCase) Create(
	ctx context.Context,
	actor auditDomain.Actor,
	input *recordsDomain.CreateRecordInput,
) (*recordsDomain.Record, error) {
	now := r.now()
	if err := r.validate(input, now); err != nil {
		return nil, err
	}

	tags := input.Tags
	if tags == nil {
		tags = []string{}
	}

	var expiresAt *time.Time
	if input.ExpiresAt != nil {
		utc := input.ExpiresAt.UTC()
		expiresAt = &utc
	}

	record := &recordsDomain.Record{
		ID:            uuid.Must(uuid.NewV7()),
		OwnerID:       actor.ID,
		Ciphertext:    input.Sealed.Ciphertext,
		IV:            input.Sealed.IV,
		AuthTag:       input.Sealed.AuthTag,
		IntegrityHash: strings.ToLower(input.Sealed.IntegrityHash),
		KDFSalt:       input.Sealed.KDF.Salt,
		KDFIterations: input.Sealed.KDF.Iterations,
		KDFHash:       input.Sealed.KDF.Hash,
		Algorithm:     input.Sealed.Algorithm,
		MaskSurrogate: input.MaskSurrogate,
		RecordType:    input.RecordType,
		Tags:          tags,
		CreatedAt:     now,
		ExpiresAt:     expiresAt,
	}

	err := r.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := r.recordRepo.Create(ctx, record); err != nil {
			return err
		}
		_, err := r.auditLogger.Append(ctx, actor.NewEvent(
			auditDomain.ActionRecordCreate,
			&record.ID,
			auditDomain.OutcomeSuccess,
			map[string]any{"record_type": record.RecordType, "algorithm": string(record.Algorithm)},
		))
		return err
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}

// Get returns a live record.
func (r *recordUseCase) Get(ctx context.Context, id uuid.UUID) (*recordsDomain.Record, error) {
	record, err := r.recordRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.IsDeleted {
		return nil, recordsDomain.ErrRecordNotFound
	}
	return record, nil
}

// List returns records matching filter.
func (r *recordUseCase) List(
	ctx context.Context,
	filter recordsDomain.ListFilter,
) ([]*recordsDomain.Record, error) {
	return r.recordRepo.List(ctx, filter, r.now())
}

// SoftDelete flags a record as deleted and audits it.
func (r *recordUseCase) SoftDelete(ctx context.Context, actor auditDomain.Actor, id uuid.UUID) error {
	return r.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := r.recordRepo.SoftDelete(ctx, id, actor.ID, r.now()); err != nil {
			return err
		}
		_, err := r.auditLogger.Append(ctx, actor.NewEvent(
			auditDomain.ActionRecordDelete, &id, auditDomain.OutcomeSuccess, nil,
		))
		return err
	})
}

// Restore clears the deleted flag and audits it.
func (r *recordUseCase) Restore(ctx context.Context, actor auditDomain.Actor, id uuid.UUID) error {
	return r.txManager.WithTx(ctx, func(ctx context.Context) error {
		if _, err := r.recordRepo.Get(ctx, id); err != nil {
			return err
		}
		if err := r.recordRepo.Restore(ctx, id); err != nil {
			return err
		}
		_, err := r.auditLogger.Append(ctx, actor.NewEvent(
			auditDomain.ActionRecordRestore, &id, auditDomain.OutcomeSuccess, nil,
		))
		return err
	})
}

// IncrementRevealCounters records a successful reveal.
func (r *recordUseCase) IncrementRevealCounters(ctx context.Context, id, actorID uuid.UUID) error {
	return r.recordRepo.IncrementRevealCounters(ctx, id, actorID, r.now())
}

// PurgeExpired removes records whose expiry plus grace has passed. A single audit entry summarizes
// the purge run.
func (r *recordUseCase) PurgeExpired(ctx context.Context, grace time.Duration) (int64, error) {
	if grace < 0 {
		return 0, apperrors.Wrap(apperrors.ErrInvalidInput, "grace must be zero or positive")
	}

	cutoff := r.now().Add(-grace)

	var count int64
	err := r.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		count, err = r.recordRepo.PurgeExpired(ctx, cutoff)
		if err != nil || count == 0 {
			return err
		}
		_, err = r.auditLogger.Append(ctx, auditDomain.Actor{}.NewEvent(
			auditDomain.ActionRecordPurge,
			nil,
			auditDomain.OutcomeSuccess,
			map[string]any{"count": count, "cutoff": cutoff.Format(time.RFC3339)},
		))
		return err
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}
