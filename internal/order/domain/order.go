// Package domain defines the order aggregate, its items and the events it emits.
//
// An Order is created pending and changes status only through Confirm and Cancel.
// Persisting an order change together with its outbox entry is the job of the
// use case layer; the aggregate itself has no side effects.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusCanceled  OrderStatus = "CANCELED"
)

// OrderNumberPrefix prefixes every generated order number.
const OrderNumberPrefix = "ORD-"

// Order is the order aggregate. Items keep insertion order.
type Order struct {
	// ID is the surrogate key assigned by storage (zero until persisted).
	ID int64
	// Number is the business identifier generated at creation, never changed.
	Number     string
	CustomerID int64
	Items      []Item
	Status     OrderStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewOrder builds a pending order for the customer with the given items.
func NewOrder(customerID int64, items []Item) (*Order, error) {
	if customerID <= 0 {
		return nil, ErrInvalidCustomerID
	}
	if len(items) == 0 {
		return nil, ErrNoItems
	}

	now := timestamp()
	return &Order{
		Number:     generateOrderNumber(),
		CustomerID: customerID,
		Items:      append([]Item(nil), items...),
		Status:     OrderStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Cancel moves the order to CANCELED. Canceling twice fails.
func (o *Order) Cancel() error {
	if o.Status == OrderStatusCanceled {
		return ErrOrderAlreadyCanceled
	}
	o.Status = OrderStatusCanceled
	o.UpdatedAt = timestamp()
	return nil
}

// Confirm moves a pending order to CONFIRMED.
func (o *Order) Confirm() error {
	if o.Status != OrderStatusPending {
		return ErrOrderNotPending
	}
	o.Status = OrderStatusConfirmed
	o.UpdatedAt = timestamp()
	return nil
}

// Total returns the exact sum of the item subtotals.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// timestamp returns the current UTC time at the microsecond precision both
// databases store.
func timestamp() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// generateOrderNumber returns the prefix followed by eight random hex characters.
// Uniqueness is not checked here; storage rejects duplicates.
func generateOrderNumber() string {
	return OrderNumberPrefix + strings.ToUpper(uuid.NewString()[:8])
}
