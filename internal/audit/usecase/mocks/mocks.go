// Package mocks provides testify mocks for the audit use case layer.
package mocks

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	auditDomain "github.com/allisson/sealbox/internal/audit/domain"
)

// MockAuditLogUseCase is a mock implementation of AuditLogUseCase.
type MockAuditLogUseCase struct {
	mock.Mock
}

// NewMockAuditLogUseCase creates a mock and asserts its expectations when the test ends.
func NewMockAuditLogUseCase(t *testing.T) *MockAuditLogUseCase {
	m := &MockAuditLogUseCase{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Append mocks the Append method.
func (m *MockAuditLogUseCase) Append(
	ctx context.Context,
	event *auditDomain.Event,
) (*auditDomain.AuditLog, error) {
	args := m.Called(ctx, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auditDomain.AuditLog), args.Error(1)
}

// Query mocks the Query method.
func (m *MockAuditLogUseCase) Query(
	ctx context.Context,
	filter auditDomain.Filter,
	sort auditDomain.Sort,
	offset, limit int,
) ([]*auditDomain.AuditLog, error) {
	args := m.Called(ctx, filter, sort, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auditDomain.AuditLog), args.Error(1)
}

// AggregateStatistics mocks the AggregateStatistics method.
func (m *MockAuditLogUseCase) AggregateStatistics(
	ctx context.Context,
	filter auditDomain.Filter,
) (*auditDomain.Statistics, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auditDomain.Statistics), args.Error(1)
}

// Export mocks the Export method. An optional third string return value is written to w.
func (m *MockAuditLogUseCase) Export(
	ctx context.Context,
	filter auditDomain.Filter,
	w io.Writer,
) (int64, error) {
	args := m.Called(ctx, filter, w)
	if len(args) > 2 {
		if body, ok := args.Get(2).(string); ok {
			_, _ = io.WriteString(w, body)
		}
	}
	return args.Get(0).(int64), args.Error(1)
}

// VerifyBatch mocks the VerifyBatch method.
func (m *MockAuditLogUseCase) VerifyBatch(
	ctx context.Context,
	start, end time.Time,
) (*auditDomain.VerificationReport, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auditDomain.VerificationReport), args.Error(1)
}

// DeleteOlderThan mocks the DeleteOlderThan method.
func (m *MockAuditLogUseCase) DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error) {
	args := m.Called(ctx, days, dryRun)
	return args.Get(0).(int64), args.Error(1)
}
