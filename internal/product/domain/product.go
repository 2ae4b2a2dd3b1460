// Package domain defines the product snapshot returned by the product service.
package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/allisson/orders/internal/errors"
)

var (
	// ErrProductNotFound indicates the product service has no product with the given id.
	ErrProductNotFound = errors.Wrap(errors.ErrNotFound, "product not found")

	// ErrProductServiceUnavailable indicates the product service could not be reached
	// or the circuit protecting it is open.
	ErrProductServiceUnavailable = errors.Wrap(errors.ErrUnavailable, "product service unavailable")
)

// Product is the catalog view of a product at lookup time.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	CreatedAt   time.Time       `json:"created_at"`
}
