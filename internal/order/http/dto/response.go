package dto

import (
	"time"

	"github.com/allisson/orders/internal/order/domain"
)

// moneyDecimals is the number of decimal places of every amount in responses.
const moneyDecimals = 2

// OrderResponse represents an order in API responses. Amounts are decimal strings.
type OrderResponse struct {
	ID         int64               `json:"id"`
	Number     string              `json:"number"`
	CustomerID int64               `json:"customer_id"`
	Items      []OrderItemResponse `json:"items"`
	Total      string              `json:"total"`
	Status     string              `json:"status"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// OrderItemResponse represents an order line in API responses.
type OrderItemResponse struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	Subtotal    string `json:"subtotal"`
}

// ListOrdersResponse represents a page of orders in API responses.
type ListOrdersResponse struct {
	Data []OrderResponse `json:"data"`
}

// MapOrderToResponse converts a domain order to an API response.
func MapOrderToResponse(order *domain.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemResponse{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice.StringFixed(moneyDecimals),
			Subtotal:    item.Subtotal().StringFixed(moneyDecimals),
		})
	}

	return OrderResponse{
		ID:         order.ID,
		Number:     order.Number,
		CustomerID: order.CustomerID,
		Items:      items,
		Total:      order.Total().StringFixed(moneyDecimals),
		Status:     string(order.Status),
		CreatedAt:  order.CreatedAt,
		UpdatedAt:  order.UpdatedAt,
	}
}

// MapOrdersToListResponse converts a slice of domain orders to a list response.
func MapOrdersToListResponse(orders []*domain.Order) ListOrdersResponse {
	data := make([]OrderResponse, 0, len(orders))
	for _, order := range orders {
		data = append(data, MapOrderToResponse(order))
	}
	return ListOrdersResponse{Data: data}
}
