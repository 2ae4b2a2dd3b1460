package usecase

import (
	"context"
	"time"

	"github.com/allisson/orders/internal/metrics"
	orderDomain "github.com/allisson/orders/internal/order/domain"
)

const metricsDomain = "orders"

// orderUseCaseWithMetrics decorates OrderUseCase with metrics instrumentation.
type orderUseCaseWithMetrics struct {
	next    OrderUseCase
	metrics metrics.BusinessMetrics
}

// NewOrderUseCaseWithMetrics wraps an OrderUseCase with metrics recording.
func NewOrderUseCaseWithMetrics(useCase OrderUseCase, m metrics.BusinessMetrics) OrderUseCase {
	return &orderUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Create records metrics for order creation.
func (o *orderUseCaseWithMetrics) Create(
	ctx context.Context,
	customerID int64,
	items []ItemRequest,
) (*orderDomain.Order, error) {
	start := time.Now()
	order, err := o.next.Create(ctx, customerID, items)
	o.record(ctx, "order_create", start, err)
	return order, err
}

// Cancel records metrics for order cancellation.
func (o *orderUseCaseWithMetrics) Cancel(ctx context.Context, id int64) (*orderDomain.Order, error) {
	start := time.Now()
	order, err := o.next.Cancel(ctx, id)
	o.record(ctx, "order_cancel", start, err)
	return order, err
}

// Confirm records metrics for order confirmation.
func (o *orderUseCaseWithMetrics) Confirm(ctx context.Context, id int64) (*orderDomain.Order, error) {
	start := time.Now()
	order, err := o.next.Confirm(ctx, id)
	o.record(ctx, "order_confirm", start, err)
	return order, err
}

// Get records metrics for order retrieval.
func (o *orderUseCaseWithMetrics) Get(ctx context.Context, id int64) (*orderDomain.Order, error) {
	start := time.Now()
	order, err := o.next.Get(ctx, id)
	o.record(ctx, "order_get", start, err)
	return order, err
}

// List records metrics for order listing.
func (o *orderUseCaseWithMetrics) List(ctx context.Context, filter ListFilter) ([]*orderDomain.Order, error) {
	start := time.Now()
	orders, err := o.next.List(ctx, filter)
	o.record(ctx, "order_list", start, err)
	return orders, err
}

func (o *orderUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	o.metrics.RecordOperation(ctx, metricsDomain, operation, status)
	o.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}
