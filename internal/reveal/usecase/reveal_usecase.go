package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/sealbox/internal/audit/domain"
	authService "github.com/allisson/sealbox/internal/auth/service"
	"github.com/allisson/sealbox/internal/config"
	cryptoDomain "github.com/allisson/sealbox/internal/crypto/domain"
	cryptoService "github.com/allisson/sealbox/internal/crypto/service"
	"github.com/allisson/sealbox/internal/database"
	apperrors "github.com/allisson/sealbox/internal/errors"
	recordsDomain "github.com/allisson/sealbox/internal/records/domain"
	revealDomain "github.com/allisson/sealbox/internal/reveal/domain"
	revealService "github.com/allisson/sealbox/internal/reveal/service"
)

type revealUseCase struct {
	config       *config.Config
	txManager    database.TxManager
	recordRepo   RecordRepository
	tokenRepo    TokenRepository
	attemptRepo  AttemptRepository
	auditLogger  AuditLogger
	sealer       cryptoService.Sealer
	pool         CryptoPool
	tokenService authService.TokenService
	payloads     PayloadStore
	now          func() time.Time
}

// Request runs the reveal state machine up to Issued.
//
// Checks run in a fixed order: record lookup, expiry, lockout, stored metadata, then the
// credential. A locked pair is refused before any crypto work, even with the right credential.
func (r *revealUseCase) Request(
	ctx context.Context,
	req *revealDomain.RevealRequest,
) (*revealDomain.Grant, error) {
	progress := revealService.NewProgressReporter(req.Progress)
	defer progress.Close()
	progress.Report(revealService.ProgressQueued)

	actor := auditDomain.Actor{ID: req.SubjectID, RequestID: req.RequestID}
	recordID := req.RecordID

	mode := req.Mode
	if mode == "" {
		mode = revealDomain.ModeServer
	}
	if !mode.Valid() {
		r.auditRequest(ctx, actor, &recordID, auditDomain.OutcomeFailed, "", "invalid_mode", nil)
		return nil, revealDomain.ErrInvalidMode
	}

	now := r.now()

	record, err := r.recordRepo.Get(ctx, recordID)
	if err != nil {
		if errors.Is(err, recordsDomain.ErrRecordNotFound) {
			return nil, r.deny(ctx, actor, recordID, revealDomain.CodeNotFound, "record_not_found")
		}
		return nil, err
	}
	if record.IsDeleted {
		return nil, r.deny(ctx, actor, recordID, revealDomain.CodeNotFound, "record_deleted")
	}
	if record.IsExpired(now) {
		return nil, r.deny(ctx, actor, recordID, revealDomain.CodeExpired, "record_expired")
	}

	reserved, locked, err := r.reserve(ctx, actor, recordID, now)
	if err != nil {
		return nil, err
	}
	if !reserved {
		reason := "attempts_in_flight"
		if locked {
			reason = "locked"
		}
		return nil, r.deny(ctx, actor, recordID, revealDomain.CodeLocked, reason)
	}

	sealed := record.Sealed()
	if err := sealed.Validate(cryptoDomain.MinIterations, r.config.KDFMaxIterations); err != nil {
		r.release(ctx, actor, recordID)
		r.auditRequest(ctx, actor, &recordID, auditDomain.OutcomeSuspicious,
			revealDomain.CodeTampered, "invalid_metadata", map[string]any{"detail": err.Error()})
		return nil, revealDomain.NewError(revealDomain.CodeTampered, "invalid_metadata")
	}

	plaintext, err := r.unseal(ctx, req.Credential, sealed, progress)
	if err != nil {
		switch {
		case errors.Is(err, cryptoDomain.ErrDecryptionFailed):
			return nil, r.recordFailure(ctx, actor, recordID, auditDomain.OutcomeFailed, "invalid_credential")
		case errors.Is(err, cryptoDomain.ErrIntegrityMismatch):
			return nil, r.recordFailure(ctx, actor, recordID, auditDomain.OutcomeSuspicious, "integrity_mismatch")
		}
		r.release(ctx, actor, recordID)
		switch {
		case errors.Is(err, cryptoDomain.ErrEmptyPassword):
			r.auditRequest(ctx, actor, &recordID, auditDomain.OutcomeFailed, "", "empty_credential", nil)
			return nil, err
		case errors.Is(err, context.DeadlineExceeded):
			r.auditRequest(ctx, actor, &recordID, auditDomain.OutcomeFailed, "", "timeout", nil)
			return nil, fmt.Errorf("reveal timed out: %w", err)
		default:
			r.auditRequest(ctx, actor, &recordID, auditDomain.OutcomeFailed, "", "crypto_error", nil)
			return nil, err
		}
	}
	progress.Report(revealService.ProgressVerified)

	return r.issue(ctx, actor, record, mode, sealed, plaintext)
}

func (r *revealUseCase) threshold() int {
	if r.config.RevealLockoutThreshold <= 0 {
		return math.MaxInt32
	}
	return r.config.RevealLockoutThreshold
}

// reserve claims a credential check for the pair. Failures plus running checks never exceed the
// threshold, so concurrent guesses cannot evaluate more credentials than the lockout allows.
func (r *revealUseCase) reserve(
	ctx context.Context,
	actor auditDomain.Actor,
	recordID uuid.UUID,
	now time.Time,
) (reserved, locked bool, err error) {
	staleAfter := r.config.RevealLockoutCooldown
	if staleAfter <= 0 {
		staleAfter = time.Minute
	}

	err = r.txManager.WithTx(ctx, func(ctx context.Context) error {
		_, err := r.attemptRepo.Update(ctx, actor.ID, recordID, func(counter *revealDomain.AttemptCounter) {
			reserved = counter.Reserve(now, r.threshold(), staleAfter)
			locked = counter.IsLocked(now)
		})
		return err
	})
	return reserved, locked, err
}

// release returns a reservation that ended without a verdict on the credential. It outlives a
// cancelled request; a reservation it fails to return goes stale on its own.
func (r *revealUseCase) release(ctx context.Context, actor auditDomain.Actor, recordID uuid.UUID) {
	ctx = context.WithoutCancel(ctx)
	_ = r.txManager.WithTx(ctx, func(ctx context.Context) error {
		_, err := r.attemptRepo.Update(ctx, actor.ID, recordID, func(counter *revealDomain.AttemptCounter) {
			counter.Release()
		})
		return err
	})
}

// unseal derives and decrypts on the worker pool under the configured deadline.
func (r *revealUseCase) unseal(
	ctx context.Context,
	credential []byte,
	sealed *cryptoDomain.SealedPayload,
	progress *revealService.ProgressReporter,
) ([]byte, error) {
	if r.config.RevealCryptoTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.RevealCryptoTimeout)
		defer cancel()
	}

	password := bytes.Clone(credential)
	return r.pool.Do(ctx, func(ctx context.Context) ([]byte, error) {
		defer cryptoDomain.Zero(password)
		progress.Report(revealService.ProgressAcquired)
		return r.sealer.Unseal(password, sealed, progress.Report)
	})
}

// issue settles the reservation and persists the grant. The counter, token, reveal counters and audit
// entry are written in one transaction; the payload is cached only after it commits. A pair that got
// locked while the credential was being checked gets no grant.
func (r *revealUseCase) issue(
	ctx context.Context,
	actor auditDomain.Actor,
	record *recordsDomain.Record,
	mode revealDomain.Mode,
	sealed *cryptoDomain.SealedPayload,
	plaintext []byte,
) (*revealDomain.Grant, error) {
	now := r.now()

	payload := &revealDomain.Payload{RecordID: record.ID, Mode: mode, ExpiresAt: now.Add(r.config.RevealTokenTTL)}
	if mode == revealDomain.ModeServer {
		payload.Plaintext = plaintext
	} else {
		cryptoDomain.Zero(plaintext)
		payload.Sealed = sealed
	}

	plainToken, tokenHash, err := r.tokenService.GenerateToken()
	if err != nil {
		payload.Zero()
		r.release(ctx, actor, record.ID)
		return nil, err
	}

	token := &revealDomain.Token{
		ID:        uuid.Must(uuid.NewV7()),
		TokenHash: tokenHash,
		RecordID:  record.ID,
		SubjectID: actor.ID,
		Mode:      mode,
		IssuedAt:  now,
		ExpiresAt: payload.ExpiresAt,
	}

	var refused bool
	err = r.txManager.WithTx(ctx, func(ctx context.Context) error {
		_, err := r.attemptRepo.Update(ctx, actor.ID, record.ID, func(counter *revealDomain.AttemptCounter) {
			refused = !counter.Succeed(now)
		})
		if err != nil {
			return err
		}
		if refused {
			_, err = r.auditLogger.Append(ctx, actor.NewEvent(
				auditDomain.ActionRevealRequest,
				&record.ID,
				auditDomain.OutcomeFailed,
				map[string]any{"reason": "locked", "code": string(revealDomain.CodeLocked)},
			))
			return err
		}
		if err := r.tokenRepo.Create(ctx, token); err != nil {
			return err
		}
		if err := r.recordRepo.IncrementRevealCounters(ctx, record.ID, actor.ID, now); err != nil {
			return err
		}
		_, err = r.auditLogger.Append(ctx, actor.NewEvent(
			auditDomain.ActionRevealRequest,
			&record.ID,
			auditDomain.OutcomeSuccess,
			map[string]any{"mode": string(mode), "token_id": token.ID.String()},
		))
		return err
	})
	if err != nil {
		payload.Zero()
		r.release(ctx, actor, record.ID)
		return nil, err
	}
	if refused {
		payload.Zero()
		return nil, revealDomain.NewError(revealDomain.CodeLocked, "locked")
	}

	r.payloads.Put(tokenHash, payload)

	return &revealDomain.Grant{
		Token:     plainToken,
		TokenID:   token.ID,
		RecordID:  record.ID,
		Mode:      mode,
		ExpiresAt: token.ExpiresAt,
	}, nil
}

// recordFailure settles the reservation as a failure and audits it in one transaction. It is not
// abandoned when the caller goes away. The failure that reaches the threshold is answered with LOCKED.
func (r *revealUseCase) recordFailure(
	ctx context.Context,
	actor auditDomain.Actor,
	recordID uuid.UUID,
	outcome auditDomain.Outcome,
	reason string,
) error {
	ctx = context.WithoutCancel(ctx)
	now := r.now()

	code := revealDomain.CodeInvalidCredential
	err := r.txManager.WithTx(ctx, func(ctx context.Context) error {
		counter, err := r.attemptRepo.Update(ctx, actor.ID, recordID, func(counter *revealDomain.AttemptCounter) {
			counter.Fail(now, r.threshold(), now.Add(r.config.RevealLockoutCooldown))
		})
		if err != nil {
			return err
		}
		if counter.IsLocked(now) {
			code = revealDomain.CodeLocked
		}
		_, err = r.auditLogger.Append(ctx, actor.NewEvent(
			auditDomain.ActionRevealRequest,
			&recordID,
			outcome,
			map[string]any{"reason": reason, "code": string(code), "failed_count": counter.FailedCount},
		))
		return err
	})
	if err != nil {
		return err
	}
	return revealDomain.NewError(code, reason)
}

// deny audits a refusal that does not count towards the lockout.
func (r *revealUseCase) deny(
	ctx context.Context,
	actor auditDomain.Actor,
	recordID uuid.UUID,
	code revealDomain.Code,
	reason string,
) error {
	r.auditRequest(ctx, actor, &recordID, auditDomain.OutcomeFailed, code, reason, nil)
	return revealDomain.NewError(code, reason)
}

// auditRequest records a refused request outside any transaction. Audit errors do not change the
// result returned to the caller.
func (r *revealUseCase) auditRequest(
	ctx context.Context,
	actor auditDomain.Actor,
	recordID *uuid.UUID,
	outcome auditDomain.Outcome,
	code revealDomain.Code,
	reason string,
	extra map[string]any,
) {
	metadata := map[string]any{"reason": reason}
	if code != "" {
		metadata["code"] = string(code)
	}
	for k, v := range extra {
		metadata[k] = v
	}
	_, _ = r.auditLogger.Append(ctx, actor.NewEvent(auditDomain.ActionRevealRequest, recordID, outcome, metadata))
}

// Redeem consumes a reveal token. Of any number of concurrent redemptions only the one whose
// conditional update lands gets the payload; the rest see CONSUMED.
func (r *revealUseCase) Redeem(
	ctx context.Context,
	actor auditDomain.Actor,
	plainToken string,
) (*revealDomain.Payload, error) {
	tokenHash := r.tokenService.HashToken(plainToken)
	now := r.now()

	token, err := r.tokenRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, revealDomain.ErrTokenNotFound) {
			return nil, r.denyRedeem(ctx, actor, nil, revealDomain.CodeNotFound, "unknown_token")
		}
		return nil, err
	}
	if token.SubjectID != actor.ID {
		return nil, r.denyRedeem(ctx, actor, &token.RecordID, revealDomain.CodeNotFound, "subject_mismatch")
	}
	if token.IsConsumed() {
		return nil, r.denyRedeem(ctx, actor, &token.RecordID, revealDomain.CodeConsumed, "already_redeemed")
	}
	if token.IsExpired(now) {
		return nil, r.denyRedeem(ctx, actor, &token.RecordID, revealDomain.CodeExpired, "token_expired")
	}

	var (
		payload *revealDomain.Payload
		denial  *revealDomain.Error
	)
	err = r.txManager.WithTx(ctx, func(ctx context.Context) error {
		won, err := r.tokenRepo.Consume(ctx, tokenHash, actor.ID, now)
		if err != nil {
			return err
		}

		if !won {
			denial = revealDomain.NewError(revealDomain.CodeConsumed, "already_redeemed")
		} else if cached, ok := r.payloads.Take(tokenHash); ok {
			payload = cached
		} else {
			denial = revealDomain.NewError(revealDomain.CodeExpired, "payload_evicted")
		}

		outcome := auditDomain.OutcomeSuccess
		metadata := map[string]any{"token_id": token.ID.String(), "mode": string(token.Mode)}
		if denial != nil {
			outcome = auditDomain.OutcomeFailed
			metadata["reason"] = denial.Reason
			metadata["code"] = string(denial.Code)
		}
		_, err = r.auditLogger.Append(ctx, actor.NewEvent(
			auditDomain.ActionRevealRedeem, &token.RecordID, outcome, metadata,
		))
		return err
	})
	if err != nil {
		if payload != nil {
			r.payloads.Put(tokenHash, payload)
		}
		return nil, err
	}
	if denial != nil {
		return nil, denial
	}
	return payload, nil
}

func (r *revealUseCase) denyRedeem(
	ctx context.Context,
	actor auditDomain.Actor,
	recordID *uuid.UUID,
	code revealDomain.Code,
	reason string,
) error {
	_, _ = r.auditLogger.Append(ctx, actor.NewEvent(
		auditDomain.ActionRevealRedeem,
		recordID,
		auditDomain.OutcomeFailed,
		map[string]any{"reason": reason, "code": string(code)},
	))
	return revealDomain.NewError(code, reason)
}

// CleanExpired deletes reveal tokens whose expiry is more than olderThan in the past.
func (r *revealUseCase) CleanExpired(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan < 0 {
		return 0, apperrors.Wrap(apperrors.ErrInvalidInput, "olderThan must be zero or positive")
	}
	return r.tokenRepo.DeleteExpired(ctx, r.now().Add(-olderThan))
}

// NewRevealUseCase creates a RevealUseCase.
func NewRevealUseCase(
	cfg *config.Config,
	txManager database.TxManager,
	recordRepo RecordRepository,
	tokenRepo TokenRepository,
	attemptRepo AttemptRepository,
	auditLogger AuditLogger,
	sealer cryptoService.Sealer,
	pool CryptoPool,
	tokenService authService.TokenService,
	payloads PayloadStore,
) RevealUseCase {
	return &revealUseCase{
		config:       cfg,
		txManager:    txManager,
		recordRepo:   recordRepo,
		tokenRepo:    tokenRepo,
		attemptRepo:  attemptRepo,
		auditLogger:  auditLogger,
		sealer:       sealer,
		pool:         pool,
		tokenService: tokenService,
		payloads:     payloads,
		now:          func() time.Time { return time.Now().UTC() },
	}
}
