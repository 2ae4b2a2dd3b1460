package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/orders/internal/errors"
)

func mustItem(t *testing.T, productID int64, quantity int, price string) Item {
	t.Helper()

	item, err := NewItem(productID, "product", quantity, decimal.RequireFromString(price))
	require.NoError(t, err)
	return item
}

func TestNewItem(t *testing.T) {
	tests := []struct {
		name        string
		productID   int64
		productName string
		quantity    int
		unitPrice   decimal.Decimal
		expectedErr error
	}{
		{"Success", 1, "Keyboard", 2, decimal.RequireFromString("10.50"), nil},
		{"Error_ZeroProductID", 0, "Keyboard", 2, decimal.RequireFromString("10.50"), ErrInvalidProductID},
		{"Error_BlankName", 1, "   ", 2, decimal.RequireFromString("10.50"), ErrProductNameRequired},
		{"Error_ZeroQuantity", 1, "Keyboard", 0, decimal.RequireFromString("10.50"), ErrInvalidQuantity},
		{"Error_NegativeQuantity", 1, "Keyboard", -1, decimal.RequireFromString("10.50"), ErrInvalidQuantity},
		{"Error_ZeroPrice", 1, "Keyboard", 1, decimal.Zero, ErrInvalidUnitPrice},
		{"Error_NegativePrice", 1, "Keyboard", 1, decimal.RequireFromString("-1"), ErrInvalidUnitPrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, err := NewItem(tt.productID, tt.productName, tt.quantity, tt.unitPrice)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
				assert.Equal(t, Item{}, item)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.productID, item.ProductID)
			assert.Equal(t, tt.quantity, item.Quantity)
		})
	}
}

func TestItem_Subtotal(t *testing.T) {
	item := mustItem(t, 1, 3, "0.10")
	assert.True(t, decimal.RequireFromString("0.30").Equal(item.Subtotal()))
}

func TestNewOrder(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		items := []Item{mustItem(t, 1, 2, "100.00")}

		order, err := NewOrder(123, items)
		require.NoError(t, err)

		assert.Equal(t, int64(123), order.CustomerID)
		assert.Equal(t, OrderStatusPending, order.Status)
		assert.True(t, strings.HasPrefix(order.Number, OrderNumberPrefix))
		assert.Len(t, order.Number, len(OrderNumberPrefix)+8)
		assert.Equal(t, strings.ToUpper(order.Number), order.Number)
		assert.False(t, order.CreatedAt.IsZero())
		assert.Equal(t, order.CreatedAt, order.UpdatedAt)
		assert.Zero(t, order.ID)
	})

	t.Run("Success_CopiesItems", func(t *testing.T) {
		items := []Item{mustItem(t, 1, 2, "100.00")}

		order, err := NewOrder(123, items)
		require.NoError(t, err)

		items[0].Quantity = 99
		assert.Equal(t, 2, order.Items[0].Quantity)
	})

	t.Run("Success_MicrosecondTimestamps", func(t *testing.T) {
		items := []Item{mustItem(t, 1, 1, "1.00")}
		for i := 0; i < 100; i++ {
			order, err := NewOrder(1, items)
			require.NoError(t, err)
			assert.Equal(t, order.CreatedAt.Truncate(time.Microsecond), order.CreatedAt)
			assert.Equal(t, time.UTC, order.CreatedAt.Location())
		}
	})

	t.Run("Success_NumbersDiffer", func(t *testing.T) {
		items := []Item{mustItem(t, 1, 1, "1.00")}
		seen := make(map[string]struct{})
		for i := 0; i < 100; i++ {
			order, err := NewOrder(1, items)
			require.NoError(t, err)
			_, exists := seen[order.Number]
			assert.False(t, exists)
			seen[order.Number] = struct{}{}
		}
	})

	t.Run("Error_InvalidCustomer", func(t *testing.T) {
		for _, customerID := range []int64{0, -5} {
			order, err := NewOrder(customerID, []Item{mustItem(t, 1, 1, "1.00")})
			assert.ErrorIs(t, err, ErrInvalidCustomerID)
			assert.Nil(t, order)
		}
	})

	t.Run("Error_NoItems", func(t *testing.T) {
		order, err := NewOrder(1, nil)
		assert.ErrorIs(t, err, ErrNoItems)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		assert.Nil(t, order)
	})
}

func TestOrder_Total(t *testing.T) {
	t.Run("Scenario", func(t *testing.T) {
		order, err := NewOrder(123, []Item{
			mustItem(t, 1, 2, "100.00"),
			mustItem(t, 2, 1, "50.00"),
		})
		require.NoError(t, err)

		assert.Equal(t, "250.00", order.Total().StringFixed(2))
	})

	t.Run("ExactDecimalArithmetic", func(t *testing.T) {
		items := make([]Item, 0, 10)
		for i := 0; i < 10; i++ {
			items = append(items, mustItem(t, int64(i+1), 1, "0.10"))
		}
		order, err := NewOrder(1, items)
		require.NoError(t, err)

		assert.True(t, decimal.NewFromInt(1).Equal(order.Total()))
	})

	t.Run("OrderIndependent", func(t *testing.T) {
		a := mustItem(t, 1, 3, "19.99")
		b := mustItem(t, 2, 7, "0.01")
		c := mustItem(t, 3, 1, "1234.56")

		first, err := NewOrder(1, []Item{a, b, c})
		require.NoError(t, err)
		second, err := NewOrder(1, []Item{c, a, b})
		require.NoError(t, err)

		assert.True(t, first.Total().Equal(second.Total()))
		assert.Equal(t, "1294.60", first.Total().StringFixed(2))
	})
}

func TestOrder_Cancel(t *testing.T) {
	t.Run("Success_FromPending", func(t *testing.T) {
		order, err := NewOrder(1, []Item{mustItem(t, 1, 1, "1.00")})
		require.NoError(t, err)
		before := order.UpdatedAt

		require.NoError(t, order.Cancel())
		assert.Equal(t, OrderStatusCanceled, order.Status)
		assert.False(t, order.UpdatedAt.Before(before))
		assert.Equal(t, order.UpdatedAt.Truncate(time.Microsecond), order.UpdatedAt)
	})

	t.Run("Success_FromConfirmed", func(t *testing.T) {
		order, err := NewOrder(1, []Item{mustItem(t, 1, 1, "1.00")})
		require.NoError(t, err)
		require.NoError(t, order.Confirm())

		require.NoError(t, order.Cancel())
		assert.Equal(t, OrderStatusCanceled, order.Status)
	})

	t.Run("Error_Twice", func(t *testing.T) {
		order, err := NewOrder(1, []Item{mustItem(t, 1, 1, "1.00")})
		require.NoError(t, err)
		require.NoError(t, order.Cancel())

		err = order.Cancel()
		assert.ErrorIs(t, err, ErrOrderAlreadyCanceled)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
		assert.Equal(t, OrderStatusCanceled, order.Status)
	})
}

func TestOrder_Confirm(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		order, err := NewOrder(1, []Item{mustItem(t, 1, 1, "1.00")})
		require.NoError(t, err)

		require.NoError(t, order.Confirm())
		assert.Equal(t, OrderStatusConfirmed, order.Status)
		assert.Equal(t, order.UpdatedAt.Truncate(time.Microsecond), order.UpdatedAt)
	})

	t.Run("Error_NotPending", func(t *testing.T) {
		for _, status := range []OrderStatus{OrderStatusConfirmed, OrderStatusCanceled} {
			order := &Order{Status: status}
			err := order.Confirm()
			assert.ErrorIs(t, err, ErrOrderNotPending)
			assert.ErrorIs(t, err, apperrors.ErrConflict)
			assert.Equal(t, status, order.Status)
		}
	})
}

func TestProductUnavailableError(t *testing.T) {
	t.Run("InsufficientStock", func(t *testing.T) {
		err := &ProductUnavailableError{ProductID: 7, Requested: 100, Available: 5}
		assert.Equal(t, "product 7 is unavailable: insufficient stock (requested 100, available 5)", err.Error())
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("NotFound", func(t *testing.T) {
		err := &ProductUnavailableError{ProductID: 7, NotFound: true}
		assert.Equal(t, "product 7 is unavailable: not found", err.Error())
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})
}

func TestNewOrderCreatedPayload(t *testing.T) {
	order, err := NewOrder(123, []Item{
		mustItem(t, 1, 2, "100"),
		mustItem(t, 2, 1, "50.5"),
	})
	require.NoError(t, err)
	order.ID = 42

	payload, err := NewOrderCreatedPayload(order)
	require.NoError(t, err)

	var decoded OrderCreatedPayload
	require.NoError(t, json.Unmarshal([]byte(payload), &decoded))
	assert.Equal(t, int64(42), decoded.OrderID)
	assert.Equal(t, order.Number, decoded.Number)
	assert.Equal(t, int64(123), decoded.CustomerID)
	assert.Equal(t, "250.50", decoded.Total)
	assert.Equal(t, OrderStatusPending, decoded.Status)
	require.Len(t, decoded.Items, 2)
	assert.Equal(t, "100.00", decoded.Items[0].UnitPrice)
	assert.Equal(t, "200.00", decoded.Items[0].Subtotal)
	assert.Equal(t, "50.50", decoded.Items[1].Subtotal)
	assert.True(t, order.CreatedAt.Equal(decoded.CreatedAt))
}

func TestNewOrderStatusChangedPayload(t *testing.T) {
	order, err := NewOrder(9, []Item{mustItem(t, 1, 1, "1")})
	require.NoError(t, err)
	order.ID = 3
	require.NoError(t, order.Cancel())

	payload, err := NewOrderStatusChangedPayload(order)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(payload), &decoded))
	assert.Equal(t, float64(3), decoded["order_id"])
	assert.Equal(t, "CANCELED", decoded["status"])
	assert.Equal(t, order.Number, decoded["number"])
	assert.Equal(t, "3", order.AggregateID())
}
