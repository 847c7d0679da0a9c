package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/sealbox/internal/audit/domain"
	authDomain "github.com/allisson/sealbox/internal/auth/domain"
	authService "github.com/allisson/sealbox/internal/auth/service"
	"github.com/allisson/sealbox/internal/config"
	"github.com/allisson/sealbox/internal/database"
)

type tokenUseCase struct {
	config        *config.Config
	txManager     database.TxManager
	clientRepo    ClientRepository
	tokenRepo     TokenRepository
	secretService authService.SecretService
	tokenService  authService.TokenService
	auditLogger   AuditLogger
	now           func() time.Time
}

// Issue verifies client credentials and stores a new token.
//
// Unknown clients and wrong secrets both return ErrInvalidCredentials. A wrong secret increments the
// client's failed attempt counter; reaching LockoutMaxAttempts locks the client for LockoutDuration,
// and a locked client is rejected before its secret is compared.
func (t *tokenUseCase) Issue(
	ctx context.Context,
	requestID uuid.UUID,
	input *authDomain.IssueTokenInput,
) (*authDomain.IssueTokenOutput, error) {
	actor := auditDomain.Actor{ID: input.ClientID, RequestID: requestID}
	now := t.now()

	client, err := t.clientRepo.Get(ctx, input.ClientID)
	if err != nil {
		if errors.Is(err, authDomain.ErrClientNotFound) {
			t.auditFailure(ctx, actor, "unknown_client")
			return nil, authDomain.ErrInvalidCredentials
		}
		return nil, err
	}

	if client.IsLocked(now) {
		t.auditFailure(ctx, actor, "locked")
		return nil, authDomain.ErrClientLocked
	}

	if !client.IsActive {
		t.auditFailure(ctx, actor, "inactive")
		return nil, authDomain.ErrClientInactive
	}

	if !t.secretService.CompareSecret(input.ClientSecret, client.Secret) {
		return nil, t.recordFailedAttempt(ctx, actor, client, now)
	}

	plainToken, tokenHash, err := t.tokenService.GenerateToken()
	if err != nil {
		return nil, err
	}

	token := &authDomain.Token{
		ID:        uuid.Must(uuid.NewV7()),
		TokenHash: tokenHash,
		ClientID:  client.ID,
		ExpiresAt: now.Add(t.config.AuthTokenExpiration),
		CreatedAt: now,
	}

	err = t.txManager.WithTx(ctx, func(ctx context.Context) error {
		if client.FailedAttempts > 0 || client.LockedUntil != nil {
			if err := t.clientRepo.UpdateLockState(ctx, client.ID, 0, nil); err != nil {
				return err
			}
		}
		if err := t.tokenRepo.Create(ctx, token); err != nil {
			return err
		}
		_, err := t.auditLogger.Append(ctx, actor.NewEvent(
			auditDomain.ActionTokenIssue,
			nil,
			auditDomain.OutcomeSuccess,
			map[string]any{"token_id": token.ID.String()},
		))
		return err
	})
	if err != nil {
		return nil, err
	}

	return &authDomain.IssueTokenOutput{PlainToken: plainToken, ExpiresAt: token.ExpiresAt}, nil
}

func (t *tokenUseCase) recordFailedAttempt(
	ctx context.Context,
	actor auditDomain.Actor,
	client *authDomain.Client,
	now time.Time,
) error {
	attempts := client.FailedAttempts + 1
	var lockedUntil *time.Time
	if t.config.LockoutMaxAttempts > 0 && attempts >= t.config.LockoutMaxAttempts {
		until := now.Add(t.config.LockoutDuration)
		lockedUntil = &until
	}

	if err := t.clientRepo.UpdateLockState(ctx, client.ID, attempts, lockedUntil); err != nil {
		return err
	}

	if lockedUntil != nil {
		t.auditFailure(ctx, actor, "locked")
		return authDomain.ErrClientLocked
	}
	t.auditFailure(ctx, actor, "invalid_secret")
	return authDomain.ErrInvalidCredentials
}

// auditFailure records a rejected attempt outside any transaction. Audit errors do not change the
// result returned to the caller.
func (t *tokenUseCase) auditFailure(ctx context.Context, actor auditDomain.Actor, reason string) {
	_, _ = t.auditLogger.Append(ctx, actor.NewEvent(
		auditDomain.ActionTokenIssue,
		nil,
		auditDomain.OutcomeFailed,
		map[string]any{"reason": reason},
	))
}

// Authenticate returns ErrInvalidCredentials for unknown, expired or revoked tokens.
func (t *tokenUseCase) Authenticate(ctx context.Context, tokenHash string) (*authDomain.Client, error) {
	token, err := t.tokenRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, authDomain.ErrTokenNotFound) {
			return nil, authDomain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !token.IsValid(t.now()) {
		return nil, authDomain.ErrInvalidCredentials
	}

	client, err := t.clientRepo.Get(ctx, token.ClientID)
	if err != nil {
		if errors.Is(err, authDomain.ErrClientNotFound) {
			return nil, authDomain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !client.IsActive {
		return nil, authDomain.ErrClientInactive
	}

	return client, nil
}

func (t *tokenUseCase) PurgeExpired(ctx context.Context) (int64, error) {
	return t.tokenRepo.DeleteExpired(ctx, t.now())
}

// NewTokenUseCase creates a TokenUseCase.
func NewTokenUseCase(
	cfg *config.Config,
	txManager database.TxManager,
	clientRepo ClientRepository,
	tokenRepo TokenRepository,
	secretService authService.SecretService,
	tokenService authService.TokenService,
	auditLogger AuditLogger,
) TokenUseCase {
	return &tokenUseCase{
		config:        cfg,
		txManager:     txManager,
		clientRepo:    clientRepo,
		tokenRepo:     tokenRepo,
		secretService: secretService,
		tokenService:  tokenService,
		auditLogger:   auditLogger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}
