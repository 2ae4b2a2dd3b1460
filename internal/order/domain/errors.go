package domain

import (
	"fmt"

	"github.com/allisson/orders/internal/errors"
)

// Validation errors raised while building orders and items.
var (
	// ErrInvalidCustomerID indicates the customer id is missing or not positive.
	ErrInvalidCustomerID = errors.Wrap(errors.ErrInvalidInput, "customer id is required and must be positive")

	// ErrNoItems indicates an order was built without any item.
	ErrNoItems = errors.Wrap(errors.ErrInvalidInput, "order must have at least one item")

	// ErrInvalidProductID indicates an item references a missing or non-positive product id.
	ErrInvalidProductID = errors.Wrap(errors.ErrInvalidInput, "product id is required and must be positive")

	// ErrProductNameRequired indicates an item has a blank product name.
	ErrProductNameRequired = errors.Wrap(errors.ErrInvalidInput, "product name is required")

	// ErrInvalidQuantity indicates an item quantity is zero or negative.
	ErrInvalidQuantity = errors.Wrap(errors.ErrInvalidInput, "quantity must be greater than zero")

	// ErrInvalidUnitPrice indicates an item unit price is zero or negative.
	ErrInvalidUnitPrice = errors.Wrap(errors.ErrInvalidInput, "unit price must be greater than zero")
)

// Lookup and state transition errors.
var (
	// ErrOrderNotFound indicates no order exists for the given id.
	ErrOrderNotFound = errors.Wrap(errors.ErrNotFound, "order not found")

	// ErrOrderAlreadyCanceled indicates a cancel was attempted on a canceled order.
	ErrOrderAlreadyCanceled = errors.Wrap(errors.ErrConflict, "order is already canceled")

	// ErrOrderNotPending indicates a confirm was attempted on an order that is not pending.
	ErrOrderNotPending = errors.Wrap(errors.ErrConflict, "only pending orders can be confirmed")

	// ErrOrderNumberConflict indicates the generated order number is already taken.
	ErrOrderNumberConflict = errors.Wrap(errors.ErrConflict, "order number already exists")
)

// ProductUnavailableError reports that a requested product cannot be ordered,
// either because it does not exist or because there is not enough stock.
type ProductUnavailableError struct {
	ProductID int64
	Requested int
	Available int
	NotFound  bool
}

func (e *ProductUnavailableError) Error() string {
	if e.NotFound {
		return fmt.Sprintf("product %d is unavailable: not found", e.ProductID)
	}
	return fmt.Sprintf(
		"product %d is unavailable: insufficient stock (requested %d, available %d)",
		e.ProductID,
		e.Requested,
		e.Available,
	)
}

// Unwrap classifies the error as a business rule conflict.
func (e *ProductUnavailableError) Unwrap() error {
	return errors.ErrConflict
}
