// Package usecase implements the order use cases. Every state change of an
// order is persisted in the same transaction as the outbox entry announcing it.
package usecase

import (
	"context"

	orderDomain "github.com/allisson/orders/internal/order/domain"
	outboxDomain "github.com/allisson/orders/internal/outbox/domain"
	productDomain "github.com/allisson/orders/internal/product/domain"
)

// OrderRepository defines the interface for order persistence operations.
type OrderRepository interface {
	// Create inserts the order and its items and sets the generated order ID.
	Create(ctx context.Context, order *orderDomain.Order) error
	// Update persists the order status and updated-at timestamp.
	Update(ctx context.Context, order *orderDomain.Order) error
	GetByID(ctx context.Context, id int64) (*orderDomain.Order, error)
	// GetByIDForUpdate loads the order and locks its row until the surrounding
	// transaction ends.
	GetByIDForUpdate(ctx context.Context, id int64) (*orderDomain.Order, error)
	List(ctx context.Context, filter ListFilter) ([]*orderDomain.Order, error)
}

// OutboxRepository is the outbox write port used by order use cases.
type OutboxRepository interface {
	Create(ctx context.Context, entry *outboxDomain.OutboxEntry) error
}

// ProductCatalog is the product capability consulted when an order is created.
type ProductCatalog interface {
	Lookup(ctx context.Context, productID int64) (*productDomain.Product, error)
	HasStock(ctx context.Context, productID int64, quantity int) (bool, error)
}

// ListFilter narrows and pages order listings.
type ListFilter struct {
	CustomerID *int64
	Offset     int
	Limit      int
}

// ItemRequest is one requested line of a new order.
type ItemRequest struct {
	ProductID int64
	Quantity  int
}

// OrderUseCase defines the order business operations.
type OrderUseCase interface {
	Create(ctx context.Context, customerID int64, items []ItemRequest) (*orderDomain.Order, error)
	Cancel(ctx context.Context, id int64) (*orderDomain.Order, error)
	Confirm(ctx context.Context, id int64) (*orderDomain.Order, error)
	Get(ctx context.Context, id int64) (*orderDomain.Order, error)
	List(ctx context.Context, filter ListFilter) ([]*orderDomain.Order, error)
}
