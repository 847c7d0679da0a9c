// Package mocks provides testify mocks for the records use case layer.
package mocks

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	auditDomain "github.com/allisson/sealbox/internal/audit/domain"
	recordsDomain "github.com/allisson/sealbox/internal/records/domain"
)

// MockRecordUseCase is a mock implementation of RecordUseCase.
type MockRecordUseCase struct {
	mock.Mock
}

// NewMockRecordUseCase creates a mock and asserts its expectations when the test ends.
func NewMockRecordUseCase(t *testing.T) *MockRecordUseCase {
	m := &MockRecordUseCase{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Create mocks the Create method.
func (m *MockRecordUseCase) Create(
	ctx context.Context,
	actor auditDomain.Actor,
	input *recordsDomain.CreateRecordInput,
) (*recordsDomain.Record, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recordsDomain.Record), args.Error(1)
}

// Get mocks the Get method.
func (m *MockRecordUseCase) Get(ctx context.Context, id uuid.UUID) (*recordsDomain.Record, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recordsDomain.Record), args.Error(1)
}

// List mocks the List method.
func (m *MockRecordUseCase) List(
	ctx context.Context,
	filter recordsDomain.ListFilter,
) ([]*recordsDomain.Record, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*recordsDomain.Record), args.Error(1)
}

// SoftDelete mocks the SoftDelete method.
func (m *MockRecordUseCase) SoftDelete(ctx context.Context, actor auditDomain.Actor, id uuid.UUID) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

// Restore mocks the Restore method.
func (m *MockRecordUseCase) Restore(ctx context.Context, actor auditDomain.Actor, id uuid.UUID) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

// IncrementRevealCounters mocks the IncrementRevealCounters method.
func (m *MockRecordUseCase) IncrementRevealCounters(ctx context.Context, id, actorID uuid.UUID) error {
	args := m.Called(ctx, id, actorID)
	return args.Error(0)
}

// PurgeExpired mocks the PurgeExpired method.
func (m *MockRecordUseCase) PurgeExpired(ctx context.Context, grace time.Duration) (int64, error) {
	args := m.Called(ctx, grace)
	return args.Get(0).(int64), args.Error(1)
}
