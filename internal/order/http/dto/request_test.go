package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/orders/internal/order/usecase"
)

func TestCreateOrderRequest_Validate(t *testing.T) {
	t.Run("Success_ValidRequest", func(t *testing.T) {
		req := CreateOrderRequest{
			CustomerID: 42,
			Items: []OrderItemRequest{
				{ProductID: 1, Quantity: 2},
				{ProductID: 2, Quantity: 1},
			},
		}

		assert.NoError(t, req.Validate())
	})

	t.Run("Error_MissingCustomer", func(t *testing.T) {
		req := CreateOrderRequest{Items: []OrderItemRequest{{ProductID: 1, Quantity: 1}}}

		err := req.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "customer_id")
	})

	t.Run("Error_NegativeCustomer", func(t *testing.T) {
		req := CreateOrderRequest{CustomerID: -1, Items: []OrderItemRequest{{ProductID: 1, Quantity: 1}}}

		err := req.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be a positive integer")
	})

	t.Run("Error_NoItems", func(t *testing.T) {
		req := CreateOrderRequest{CustomerID: 42}

		err := req.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "items")
	})

	t.Run("Error_InvalidQuantity", func(t *testing.T) {
		req := CreateOrderRequest{
			CustomerID: 42,
			Items:      []OrderItemRequest{{ProductID: 1, Quantity: -3}},
		}

		err := req.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "quantity")
	})

	t.Run("Error_TooManyItems", func(t *testing.T) {
		items := make([]OrderItemRequest, 101)
		for i := range items {
			items[i] = OrderItemRequest{ProductID: int64(i + 1), Quantity: 1}
		}
		req := CreateOrderRequest{CustomerID: 42, Items: items}

		assert.Error(t, req.Validate())
	})
}

func TestCreateOrderRequest_ToItemRequests(t *testing.T) {
	req := CreateOrderRequest{
		CustomerID: 42,
		Items: []OrderItemRequest{
			{ProductID: 3, Quantity: 2},
			{ProductID: 1, Quantity: 5},
		},
	}

	assert.Equal(t, []usecase.ItemRequest{
		{ProductID: 3, Quantity: 2},
		{ProductID: 1, Quantity: 5},
	}, req.ToItemRequests())
}
