package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Item is a line of an order. Product name and unit price are a snapshot taken
// when the order is created and are never refreshed from the catalog.
type Item struct {
	ProductID   int64
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// NewItem validates and builds an item.
func NewItem(productID int64, productName string, quantity int, unitPrice decimal.Decimal) (Item, error) {
	if productID <= 0 {
		return Item{}, ErrInvalidProductID
	}
	if strings.TrimSpace(productName) == "" {
		return Item{}, ErrProductNameRequired
	}
	if quantity <= 0 {
		return Item{}, ErrInvalidQuantity
	}
	if !unitPrice.IsPositive() {
		return Item{}, ErrInvalidUnitPrice
	}

	return Item{
		ProductID:   productID,
		ProductName: productName,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
	}, nil
}

// Subtotal returns quantity times unit price.
func (i Item) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
