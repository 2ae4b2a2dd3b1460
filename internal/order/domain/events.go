package domain

import (
	"encoding/json"
	"strconv"
	"time"
)

// AggregateType tags outbox entries produced by orders.
const AggregateType = "ORDER"

// Event types emitted by the order aggregate.
const (
	EventOrderCreated   = "ORDER_CREATED"
	EventOrderCanceled  = "ORDER_CANCELED"
	EventOrderConfirmed = "ORDER_CONFIRMED"
)

// ItemPayload is the serialized form of an item inside event payloads.
type ItemPayload struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	Subtotal    string `json:"subtotal"`
}

// OrderCreatedPayload is the body of an ORDER_CREATED event.
type OrderCreatedPayload struct {
	OrderID    int64         `json:"order_id"`
	Number     string        `json:"number"`
	CustomerID int64         `json:"customer_id"`
	Items      []ItemPayload `json:"items"`
	Total      string        `json:"total"`
	Status     OrderStatus   `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
}

// OrderStatusChangedPayload is the body of ORDER_CANCELED and ORDER_CONFIRMED events.
type OrderStatusChangedPayload struct {
	OrderID    int64       `json:"order_id"`
	Number     string      `json:"number"`
	CustomerID int64       `json:"customer_id"`
	Status     OrderStatus `json:"status"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// NewOrderCreatedPayload serializes the state of a freshly persisted order.
func NewOrderCreatedPayload(order *Order) (string, error) {
	items := make([]ItemPayload, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, ItemPayload{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice.StringFixed(2),
			Subtotal:    item.Subtotal().StringFixed(2),
		})
	}

	return marshalPayload(OrderCreatedPayload{
		OrderID:    order.ID,
		Number:     order.Number,
		CustomerID: order.CustomerID,
		Items:      items,
		Total:      order.Total().StringFixed(2),
		Status:     order.Status,
		CreatedAt:  order.CreatedAt,
	})
}

// NewOrderStatusChangedPayload serializes the current status of an order.
func NewOrderStatusChangedPayload(order *Order) (string, error) {
	return marshalPayload(OrderStatusChangedPayload{
		OrderID:    order.ID,
		Number:     order.Number,
		CustomerID: order.CustomerID,
		Status:     order.Status,
		UpdatedAt:  order.UpdatedAt,
	})
}

// AggregateID returns the outbox aggregate id of the order.
func (o *Order) AggregateID() string {
	return strconv.FormatInt(o.ID, 10)
}

func marshalPayload(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
