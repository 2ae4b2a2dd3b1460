package dto_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/orders/internal/order/domain"
	"github.com/allisson/orders/internal/order/http/dto"
)

func newOrder(t *testing.T) *domain.Order {
	t.Helper()

	keyboard, err := domain.NewItem(1, "Keyboard", 2, decimal.RequireFromString("50"))
	require.NoError(t, err)
	mouse, err := domain.NewItem(2, "Mouse", 1, decimal.RequireFromString("150.5"))
	require.NoError(t, err)

	order, err := domain.NewOrder(42, []domain.Item{keyboard, mouse})
	require.NoError(t, err)
	order.ID = 7
	return order
}

func TestMapOrderToResponse(t *testing.T) {
	order := newOrder(t)

	response := dto.MapOrderToResponse(order)

	assert.Equal(t, int64(7), response.ID)
	assert.Equal(t, order.Number, response.Number)
	assert.Equal(t, int64(42), response.CustomerID)
	assert.Equal(t, "PENDING", response.Status)
	assert.Equal(t, "250.50", response.Total)
	require.Len(t, response.Items, 2)
	assert.Equal(t, "50.00", response.Items[0].UnitPrice)
	assert.Equal(t, "100.00", response.Items[0].Subtotal)
	assert.Equal(t, "150.50", response.Items[1].UnitPrice)
	assert.Equal(t, order.CreatedAt, response.CreatedAt)
}

func TestOrderResponse_JSON(t *testing.T) {
	order := newOrder(t)
	order.CreatedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	order.UpdatedAt = order.CreatedAt

	body, err := json.Marshal(dto.MapOrderToResponse(order))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, "250.50", decoded["total"])
	assert.Equal(t, "2026-03-01T12:00:00Z", decoded["created_at"])
	items, ok := decoded["items"].([]any)
	require.True(t, ok)
	assert.Len(t, items, 2)
}

func TestMapOrdersToListResponse(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		response := dto.MapOrdersToListResponse(nil)

		assert.NotNil(t, response.Data)
		assert.Empty(t, response.Data)
	})

	t.Run("KeepsOrder", func(t *testing.T) {
		first := newOrder(t)
		second := newOrder(t)
		second.ID = 8

		response := dto.MapOrdersToListResponse([]*domain.Order{second, first})

		require.Len(t, response.Data, 2)
		assert.Equal(t, int64(8), response.Data[0].ID)
		assert.Equal(t, int64(7), response.Data[1].ID)
	})
}
