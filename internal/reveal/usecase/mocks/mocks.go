// Package mocks provides testify mocks for the reveal use case layer.
package mocks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	auditDomain "github.com/allisson/sealbox/internal/audit/domain"
	revealDomain "github.com/allisson/sealbox/internal/reveal/domain"
)

// MockRevealUseCase is a mock implementation of RevealUseCase.
type MockRevealUseCase struct {
	mock.Mock
}

// NewMockRevealUseCase creates a mock and asserts its expectations when the test ends.
func NewMockRevealUseCase(t *testing.T) *MockRevealUseCase {
	m := &MockRevealUseCase{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Request mocks the Request method.
func (m *MockRevealUseCase) Request(
	ctx context.Context,
	req *revealDomain.RevealRequest,
) (*revealDomain.Grant, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*revealDomain.Grant), args.Error(1)
}

// Redeem mocks the Redeem method.
func (m *MockRevealUseCase) Redeem(
	ctx context.Context,
	actor auditDomain.Actor,
	plainToken string,
) (*revealDomain.Payload, error) {
	args := m.Called(ctx, actor, plainToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*revealDomain.Payload), args.Error(1)
}

// CleanExpired mocks the CleanExpired method.
func (m *MockRevealUseCase) CleanExpired(ctx context.Context, olderThan time.Duration) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}
