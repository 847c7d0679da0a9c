package usecase

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	auditDomain "github.com/allisson/sealbox/internal/audit/domain"
	auditUsecaseMocks "github.com/allisson/sealbox/internal/audit/usecase/mocks"
	"github.com/allisson/sealbox/internal/metrics"
)

// mockBusinessMetrics is a mock implementation of metrics.BusinessMetrics for testing.
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

var _ metrics.BusinessMetrics = (*mockBusinessMetrics)(nil)

func expectMetrics(m *mockBusinessMetrics, ctx context.Context, op, status string) {
	m.On("RecordOperation", ctx, "audit", op, status).Return().Once()
	m.On("RecordDuration", ctx, "audit", op, mock.AnythingOfType("time.Duration"), status).Return().Once()
}

func TestNewAuditLogUseCaseWithMetrics(t *testing.T) {
	decorator := NewAuditLogUseCaseWithMetrics(auditUsecaseMocks.NewMockAuditLogUseCase(t), &mockBusinessMetrics{})
	assert.Implements(t, (*AuditLogUseCase)(nil), decorator)
}

func TestAuditMetricsDecorator_Append(t *testing.T) {
	ctx := context.Background()
	event := newEvent()

	t.Run("Success_RecordsSuccessMetrics", func(t *testing.T) {
		mockUseCase := auditUsecaseMocks.NewMockAuditLogUseCase(t)
		mockMetrics := &mockBusinessMetrics{}
		expected := &auditDomain.AuditLog{ActorID: event.ActorID}

		mockUseCase.On("Append", ctx, event).Return(expected, nil).Once()
		expectMetrics(mockMetrics, ctx, "audit_append", "success")

		result, err := NewAuditLogUseCaseWithMetrics(mockUseCase, mockMetrics).Append(ctx, event)
		assert.NoError(t, err)
		assert.Equal(t, expected, result)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Error_RecordsErrorMetrics", func(t *testing.T) {
		mockUseCase := auditUsecaseMocks.NewMockAuditLogUseCase(t)
		mockMetrics := &mockBusinessMetrics{}

		mockUseCase.On("Append", ctx, event).Return(nil, errors.New("database error")).Once()
		expectMetrics(mockMetrics, ctx, "audit_append", "error")

		result, err := NewAuditLogUseCaseWithMetrics(mockUseCase, mockMetrics).Append(ctx, event)
		assert.Error(t, err)
		assert.Nil(t, result)
		mockMetrics.AssertExpectations(t)
	})
}

func TestAuditMetricsDecorator_Export(t *testing.T) {
	ctx := context.Background()
	mockUseCase := auditUsecaseMocks.NewMockAuditLogUseCase(t)
	mockMetrics := &mockBusinessMetrics{}
	var buf bytes.Buffer

	mockUseCase.On("Export", ctx, auditDomain.Filter{}, &buf).Return(int64(1), nil, "timestamp\n").Once()
	expectMetrics(mockMetrics, ctx, "audit_export", "success")

	count, err := NewAuditLogUseCaseWithMetrics(mockUseCase, mockMetrics).Export(ctx, auditDomain.Filter{}, &buf)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, "timestamp\n", buf.String())
	mockMetrics.AssertExpectations(t)
}

func TestAuditMetricsDecorator_DeleteOlderThan(t *testing.T) {
	ctx := context.Background()
	mockUseCase := auditUsecaseMocks.NewMockAuditLogUseCase(t)
	mockMetrics := &mockBusinessMetrics{}

	mockUseCase.On("DeleteOlderThan", ctx, 30, false).Return(int64(0), errors.New("boom")).Once()
	expectMetrics(mockMetrics, ctx, "audit_delete", "error")

	_, err := NewAuditLogUseCaseWithMetrics(mockUseCase, mockMetrics).DeleteOlderThan(ctx, 30, false)
	assert.Error(t, err)
	mockMetrics.AssertExpectations(t)
}

func TestAuditMetricsDecorator_VerifyBatch(t *testing.T) {
	ctx := context.Background()
	mockUseCase := auditUsecaseMocks.NewMockAuditLogUseCase(t)
	mockMetrics := &mockBusinessMetrics{}
	start, end := time.Now().Add(-time.Hour), time.Now()
	report := &auditDomain.VerificationReport{TotalChecked: 2, ValidCount: 2}

	mockUseCase.On("VerifyBatch", ctx, start, end).Return(report, nil).Once()
	expectMetrics(mockMetrics, ctx, "audit_verify", "success")

	got, err := NewAuditLogUseCaseWithMetrics(mockUseCase, mockMetrics).VerifyBatch(ctx, start, end)
	assert.NoError(t, err)
	assert.Equal(t, report, got)
	mockMetrics.AssertExpectations(t)
}
