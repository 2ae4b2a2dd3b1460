// Package mocks provides testify mocks for the order use case.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	orderDomain "github.com/allisson/orders/internal/order/domain"
	"github.com/allisson/orders/internal/order/usecase"
)

// MockOrderUseCase is a mock implementation of usecase.OrderUseCase.
type MockOrderUseCase struct {
	mock.Mock
}

var _ usecase.OrderUseCase = (*MockOrderUseCase)(nil)

// Create mocks the Create method.
func (m *MockOrderUseCase) Create(
	ctx context.Context,
	customerID int64,
	items []usecase.ItemRequest,
) (*orderDomain.Order, error) {
	args := m.Called(ctx, customerID, items)
	return orderOrNil(args.Get(0)), args.Error(1)
}

// Cancel mocks the Cancel method.
func (m *MockOrderUseCase) Cancel(ctx context.Context, id int64) (*orderDomain.Order, error) {
	args := m.Called(ctx, id)
	return orderOrNil(args.Get(0)), args.Error(1)
}

// Confirm mocks the Confirm method.
func (m *MockOrderUseCase) Confirm(ctx context.Context, id int64) (*orderDomain.Order, error) {
	args := m.Called(ctx, id)
	return orderOrNil(args.Get(0)), args.Error(1)
}

// Get mocks the Get method.
func (m *MockOrderUseCase) Get(ctx context.Context, id int64) (*orderDomain.Order, error) {
	args := m.Called(ctx, id)
	return orderOrNil(args.Get(0)), args.Error(1)
}

// List mocks the List method.
func (m *MockOrderUseCase) List(ctx context.Context, filter usecase.ListFilter) ([]*orderDomain.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*orderDomain.Order), args.Error(1)
}

func orderOrNil(v any) *orderDomain.Order {
	if v == nil {
		return nil
	}
	return v.(*orderDomain.Order)
}
