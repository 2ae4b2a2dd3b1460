package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/allisson/orders/internal/database"
	orderDomain "github.com/allisson/orders/internal/order/domain"
	outboxDomain "github.com/allisson/orders/internal/outbox/domain"
	productDomain "github.com/allisson/orders/internal/product/domain"
)

type orderUseCase struct {
	txManager  database.TxManager
	orderRepo  OrderRepository
	outboxRepo OutboxRepository
	catalog    ProductCatalog
}

// NewOrderUseCase creates the order use case.
func NewOrderUseCase(
	txManager database.TxManager,
	orderRepo OrderRepository,
	outboxRepo OutboxRepository,
	catalog ProductCatalog,
) OrderUseCase {
	return &orderUseCase{
		txManager:  txManager,
		orderRepo:  orderRepo,
		outboxRepo: outboxRepo,
		catalog:    catalog,
	}
}

// Create snapshots the requested products, then stores the order and its
// ORDER_CREATED entry atomically. Product lookups happen before the
// transaction starts so no database connection is held during remote calls.
func (o *orderUseCase) Create(
	ctx context.Context,
	customerID int64,
	requests []ItemRequest,
) (*orderDomain.Order, error) {
	if customerID <= 0 {
		return nil, orderDomain.ErrInvalidCustomerID
	}
	if len(requests) == 0 {
		return nil, orderDomain.ErrNoItems
	}
	for _, request := range requests {
		if request.ProductID <= 0 {
			return nil, orderDomain.ErrInvalidProductID
		}
		if request.Quantity <= 0 {
			return nil, orderDomain.ErrInvalidQuantity
		}
	}

	items := make([]orderDomain.Item, 0, len(requests))
	for _, request := range requests {
		item, err := o.resolveItem(ctx, request)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	order, err := orderDomain.NewOrder(customerID, items)
	if err != nil {
		return nil, err
	}

	err = o.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := o.orderRepo.Create(ctx, order); err != nil {
			return err
		}

		payload, err := orderDomain.NewOrderCreatedPayload(order)
		if err != nil {
			return fmt.Errorf("failed to build order created payload: %w", err)
		}
		return o.appendEvent(ctx, order, orderDomain.EventOrderCreated, payload)
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

// Cancel cancels the order and records ORDER_CANCELED atomically.
func (o *orderUseCase) Cancel(ctx context.Context, id int64) (*orderDomain.Order, error) {
	return o.transition(ctx, id, (*orderDomain.Order).Cancel, orderDomain.EventOrderCanceled)
}

// Confirm confirms the order and records ORDER_CONFIRMED atomically.
func (o *orderUseCase) Confirm(ctx context.Context, id int64) (*orderDomain.Order, error) {
	return o.transition(ctx, id, (*orderDomain.Order).Confirm, orderDomain.EventOrderConfirmed)
}

// Get returns an order by id.
func (o *orderUseCase) Get(ctx context.Context, id int64) (*orderDomain.Order, error) {
	return o.orderRepo.GetByID(ctx, id)
}

// List returns orders, newest first, optionally restricted to one customer.
func (o *orderUseCase) List(ctx context.Context, filter ListFilter) ([]*orderDomain.Order, error) {
	if filter.CustomerID != nil && *filter.CustomerID <= 0 {
		return nil, orderDomain.ErrInvalidCustomerID
	}
	return o.orderRepo.List(ctx, filter)
}

func (o *orderUseCase) resolveItem(ctx context.Context, request ItemRequest) (orderDomain.Item, error) {
	product, err := o.catalog.Lookup(ctx, request.ProductID)
	if err != nil {
		if errors.Is(err, productDomain.ErrProductNotFound) {
			return orderDomain.Item{}, &orderDomain.ProductUnavailableError{
				ProductID: request.ProductID,
				Requested: request.Quantity,
				NotFound:  true,
			}
		}
		return orderDomain.Item{}, err
	}

	available, err := o.catalog.HasStock(ctx, request.ProductID, request.Quantity)
	if err != nil {
		if errors.Is(err, productDomain.ErrProductNotFound) {
			return orderDomain.Item{}, &orderDomain.ProductUnavailableError{
				ProductID: request.ProductID,
				Requested: request.Quantity,
				NotFound:  true,
			}
		}
		return orderDomain.Item{}, err
	}
	if !available {
		return orderDomain.Item{}, &orderDomain.ProductUnavailableError{
			ProductID: request.ProductID,
			Requested: request.Quantity,
			Available: product.Stock,
		}
	}

	return orderDomain.NewItem(product.ID, product.Name, request.Quantity, product.Price)
}

func (o *orderUseCase) transition(
	ctx context.Context,
	id int64,
	apply func(*orderDomain.Order) error,
	eventType string,
) (*orderDomain.Order, error) {
	var order *orderDomain.Order

	err := o.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		order, err = o.orderRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if err := apply(order); err != nil {
			return err
		}

		if err := o.orderRepo.Update(ctx, order); err != nil {
			return err
		}

		payload, err := orderDomain.NewOrderStatusChangedPayload(order)
		if err != nil {
			return fmt.Errorf("failed to build order status payload: %w", err)
		}
		return o.appendEvent(ctx, order, eventType, payload)
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

func (o *orderUseCase) appendEvent(ctx context.Context, order *orderDomain.Order, eventType, payload string) error {
	entry, err := outboxDomain.NewOutboxEntry(orderDomain.AggregateType, order.AggregateID(), eventType, payload)
	if err != nil {
		return fmt.Errorf("failed to build outbox entry: %w", err)
	}
	return o.outboxRepo.Create(ctx, entry)
}
