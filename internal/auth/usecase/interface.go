// Package usecase implements client management and bearer-token authentication, including the
// failed-attempt lockout applied to client credentials.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/sealbox/internal/audit/domain"
	authDomain "github.com/allisson/sealbox/internal/auth/domain"
)

// ClientRepository defines persistence operations for clients.
type ClientRepository interface {
	Create(ctx context.Context, client *authDomain.Client) error

	// Get returns ErrClientNotFound for unknown IDs.
	Get(ctx context.Context, clientID uuid.UUID) (*authDomain.Client, error)

	UpdateLockState(ctx context.Context, clientID uuid.UUID, failedAttempts int, lockedUntil *time.Time) error
}

// TokenRepository defines persistence operations for bearer tokens.
type TokenRepository interface {
	Create(ctx context.Context, token *authDomain.Token) error

	// GetByTokenHash returns ErrTokenNotFound for unknown hashes.
	GetByTokenHash(ctx context.Context, tokenHash string) (*authDomain.Token, error)

	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// AuditLogger appends audit entries.
type AuditLogger interface {
	Append(ctx context.Context, event *auditDomain.Event) (*auditDomain.AuditLog, error)
}

// ClientUseCase manages clients.
type ClientUseCase interface {
	// Create generates a client with a random secret. The plain secret is returned only once.
	Create(ctx context.Context, input *authDomain.CreateClientInput) (*authDomain.CreateClientOutput, error)

	Get(ctx context.Context, clientID uuid.UUID) (*authDomain.Client, error)

	// Unlock clears the failed attempt counter and any lockout.
	Unlock(ctx context.Context, clientID uuid.UUID) error
}

// TokenUseCase issues and validates bearer tokens.
type TokenUseCase interface {
	// Issue exchanges client credentials for a token. Every attempt is audited as auth.token_issue.
	Issue(
		ctx context.Context,
		requestID uuid.UUID,
		input *authDomain.IssueTokenInput,
	) (*authDomain.IssueTokenOutput, error)

	// Authenticate resolves a token hash to an active client.
	Authenticate(ctx context.Context, tokenHash string) (*authDomain.Client, error)

	// PurgeExpired deletes tokens that are already expired.
	PurgeExpired(ctx context.Context) (int64, error)
}
