// Package usecase implements the reveal token manager: verifying a credential against a stored
// record on the crypto worker pool, enforcing the per subject and record lockout, issuing single-use
// reveal tokens and redeeming them exactly once.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/sealbox/internal/audit/domain"
	recordsDomain "github.com/allisson/sealbox/internal/records/domain"
	revealDomain "github.com/allisson/sealbox/internal/reveal/domain"
)

// RecordRepository is the part of the record store a reveal needs.
type RecordRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*recordsDomain.Record, error)
	IncrementRevealCounters(ctx context.Context, id, actorID uuid.UUID, at time.Time) error
}

// TokenRepository defines reveal token persistence.
type TokenRepository interface {
	Create(ctx context.Context, token *revealDomain.Token) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*revealDomain.Token, error)
	// Consume reports true for exactly one caller per token.
	Consume(ctx context.Context, tokenHash string, subjectID uuid.UUID, now time.Time) (bool, error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// AttemptRepository defines reveal failure counter persistence.
type AttemptRepository interface {
	// Update loads the counter of the pair under a row lock, applies fn and stores the result. A pair
	// without a row starts from a zero counter. It must run inside a transaction.
	Update(
		ctx context.Context,
		subjectID, recordID uuid.UUID,
		fn func(counter *revealDomain.AttemptCounter),
	) (*revealDomain.AttemptCounter, error)
}

// AuditLogger appends audit entries.
type AuditLogger interface {
	Append(ctx context.Context, event *auditDomain.Event) (*auditDomain.AuditLog, error)
}

// PayloadStore holds verified payloads until their token is redeemed.
type PayloadStore interface {
	Put(tokenHash string, payload *revealDomain.Payload)
	Take(tokenHash string) (*revealDomain.Payload, bool)
}

// CryptoPool runs CPU heavy work on a bounded number of workers.
type CryptoPool interface {
	Do(ctx context.Context, fn func(ctx context.Context) ([]byte, error)) ([]byte, error)
}

// RevealUseCase defines the reveal workflow.
type RevealUseCase interface {
	// Request verifies the credential and issues a single-use reveal token. Refusals are
	// *revealDomain.Error values; every call produces exactly one audit entry.
	Request(ctx context.Context, req *revealDomain.RevealRequest) (*revealDomain.Grant, error)

	// Redeem exchanges a reveal token for its payload. Only the first redemption succeeds.
	Redeem(ctx context.Context, actor auditDomain.Actor, plainToken string) (*revealDomain.Payload, error)

	// CleanExpired deletes reveal tokens that expired more than olderThan ago.
	CleanExpired(ctx context.Context, olderThan time.Duration) (int64, error)
}
