// Package mocks provides testify mocks for the outbox use case.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/allisson/orders/internal/outbox/domain"
	"github.com/allisson/orders/internal/outbox/usecase"
)

// MockOutboxUseCase is a mock implementation of usecase.UseCase.
type MockOutboxUseCase struct {
	mock.Mock
}

var _ usecase.UseCase = (*MockOutboxUseCase)(nil)

// Start mocks the Start method.
func (m *MockOutboxUseCase) Start(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// StartCleanup mocks the StartCleanup method.
func (m *MockOutboxUseCase) StartCleanup(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// ProcessEvents mocks the ProcessEvents method.
func (m *MockOutboxUseCase) ProcessEvents(ctx context.Context) (usecase.BatchResult, error) {
	args := m.Called(ctx)
	return args.Get(0).(usecase.BatchResult), args.Error(1)
}

// Cleanup mocks the Cleanup method.
func (m *MockOutboxUseCase) Cleanup(ctx context.Context, retention time.Duration, dryRun bool) (int64, error) {
	args := m.Called(ctx, retention, dryRun)
	return args.Get(0).(int64), args.Error(1)
}

// Requeue mocks the Requeue method.
func (m *MockOutboxUseCase) Requeue(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// RequeueAllFailed mocks the RequeueAllFailed method.
func (m *MockOutboxUseCase) RequeueAllFailed(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// Stats mocks the Stats method.
func (m *MockOutboxUseCase) Stats(ctx context.Context) (map[domain.Status]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.Status]int64), args.Error(1)
}
