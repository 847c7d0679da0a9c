package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	auditDomain "github.com/allisson/sealbox/internal/audit/domain"
	revealDomain "github.com/allisson/sealbox/internal/reveal/domain"
	revealUsecaseMocks "github.com/allisson/sealbox/internal/reveal/usecase/mocks"
)

type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

func expectRevealMetrics(m *mockBusinessMetrics, ctx context.Context, op, status string) {
	m.On("RecordOperation", ctx, "reveal", op, status).Return().Once()
	m.On("RecordDuration", ctx, "reveal", op, mock.AnythingOfType("time.Duration"), status).Return().Once()
}

func TestRevealUseCaseWithMetrics(t *testing.T) {
	ctx := context.Background()
	req := &revealDomain.RevealRequest{RecordID: uuid.Must(uuid.NewV7()), SubjectID: uuid.Must(uuid.NewV7())}
	actor := auditDomain.Actor{ID: req.SubjectID}

	t.Run("Request_Success", func(t *testing.T) {
		next := revealUsecaseMocks.NewMockRevealUseCase(t)
		metrics := &mockBusinessMetrics{}
		grant := &revealDomain.Grant{Token: "token"}

		next.On("Request", ctx, req).Return(grant, nil).Once()
		expectRevealMetrics(metrics, ctx, "request", "success")

		got, err := NewRevealUseCaseWithMetrics(next, metrics).Request(ctx, req)
		assert.NoError(t, err)
		assert.Equal(t, grant, got)
		metrics.AssertExpectations(t)
	})

	t.Run("Request_Locked", func(t *testing.T) {
		next := revealUsecaseMocks.NewMockRevealUseCase(t)
		metrics := &mockBusinessMetrics{}

		next.On("Request", ctx, req).Return(nil, revealDomain.NewError(revealDomain.CodeLocked, "locked")).Once()
		expectRevealMetrics(metrics, ctx, "request", "locked")

		_, err := NewRevealUseCaseWithMetrics(next, metrics).Request(ctx, req)
		assert.Error(t, err)
		metrics.AssertExpectations(t)
	})

	t.Run("Redeem_Consumed", func(t *testing.T) {
		next := revealUsecaseMocks.NewMockRevealUseCase(t)
		metrics := &mockBusinessMetrics{}

		next.On("Redeem", ctx, actor, "token").
			Return(nil, revealDomain.NewError(revealDomain.CodeConsumed, "already_redeemed")).
			Once()
		expectRevealMetrics(metrics, ctx, "redeem", "consumed")

		_, err := NewRevealUseCaseWithMetrics(next, metrics).Redeem(ctx, actor, "token")
		assert.Error(t, err)
		metrics.AssertExpectations(t)
	})

	t.Run("CleanExpired_Error", func(t *testing.T) {
		next := revealUsecaseMocks.NewMockRevealUseCase(t)
		metrics := &mockBusinessMetrics{}

		next.On("CleanExpired", ctx, time.Hour).Return(int64(0), errors.New("db down")).Once()
		expectRevealMetrics(metrics, ctx, "clean_expired", "error")

		_, err := NewRevealUseCaseWithMetrics(next, metrics).CleanExpired(ctx, time.Hour)
		assert.Error(t, err)
		metrics.AssertExpectations(t)
	})
}
