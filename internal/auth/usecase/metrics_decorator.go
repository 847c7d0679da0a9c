package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/sealbox/internal/auth/domain"
	"github.com/allisson/sealbox/internal/metrics"
)

func recordAuthMetrics(ctx context.Context, m metrics.BusinessMetrics, op string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.RecordOperation(ctx, "auth", op, status)
	m.RecordDuration(ctx, "auth", op, time.Since(start), status)
}

// clientUseCaseWithMetrics decorates ClientUseCase with metrics instrumentation.
type clientUseCaseWithMetrics struct {
	next    ClientUseCase
	metrics metrics.BusinessMetrics
}

// NewClientUseCaseWithMetrics wraps a ClientUseCase with metrics recording.
func NewClientUseCaseWithMetrics(useCase ClientUseCase, m metrics.BusinessMetrics) ClientUseCase {
	return &clientUseCaseWithMetrics{next: useCase, metrics: m}
}

func (c *clientUseCaseWithMetrics) Create(
	ctx context.Context,
	input *authDomain.CreateClientInput,
) (*authDomain.CreateClientOutput, error) {
	start := time.Now()
	output, err := c.next.Create(ctx, input)
	recordAuthMetrics(ctx, c.metrics, "client_create", start, err)
	return output, err
}

func (c *clientUseCaseWithMetrics) Get(ctx context.Context, clientID uuid.UUID) (*authDomain.Client, error) {
	start := time.Now()
	client, err := c.next.Get(ctx, clientID)
	recordAuthMetrics(ctx, c.metrics, "client_get", start, err)
	return client, err
}

func (c *clientUseCaseWithMetrics) Unlock(ctx context.Context, clientID uuid.UUID) error {
	start := time.Now()
	err := c.next.Unlock(ctx, clientID)
	recordAuthMetrics(ctx, c.metrics, "client_unlock", start, err)
	return err
}

// tokenUseCaseWithMetrics decorates TokenUseCase with metrics instrumentation.
type tokenUseCaseWithMetrics struct {
	next    TokenUseCase
	metrics metrics.BusinessMetrics
}

// NewTokenUseCaseWithMetrics wraps a TokenUseCase with metrics recording.
func NewTokenUseCaseWithMetrics(useCase TokenUseCase, m metrics.BusinessMetrics) TokenUseCase {
	return &tokenUseCaseWithMetrics{next: useCase, metrics: m}
}

func (t *tokenUseCaseWithMetrics) Issue(
	ctx context.Context,
	requestID uuid.UUID,
	input *authDomain.IssueTokenInput,
) (*authDomain.IssueTokenOutput, error) {
	start := time.Now()
	output, err := t.next.Issue(ctx, requestID, input)
	recordAuthMetrics(ctx, t.metrics, "token_issue", start, err)
	return output, err
}

func (t *tokenUseCaseWithMetrics) Authenticate(ctx context.Context, tokenHash string) (*authDomain.Client, error) {
	start := time.Now()
	client, err := t.next.Authenticate(ctx, tokenHash)
	recordAuthMetrics(ctx, t.metrics, "token_authenticate", start, err)
	return client, err
}

func (t *tokenUseCaseWithMetrics) PurgeExpired(ctx context.Context) (int64, error) {
	start := time.Now()
	count, err := t.next.PurgeExpired(ctx)
	recordAuthMetrics(ctx, t.metrics, "token_purge", start, err)
	return count, err
}
