// Package dto provides data transfer objects for order HTTP requests and responses.
package dto

import (
	validation "github.com/jellydator/validation"

	"github.com/allisson/orders/internal/order/usecase"
	customValidation "github.com/allisson/orders/internal/validation"
)

// CreateOrderRequest contains the parameters for placing an order.
type CreateOrderRequest struct {
	CustomerID int64              `json:"customer_id"`
	Items      []OrderItemRequest `json:"items"`
}

// OrderItemRequest is one requested line of an order.
type OrderItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// Validate checks if the order item request is valid.
func (r OrderItemRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ProductID, validation.Required, customValidation.PositiveID),
		validation.Field(&r.Quantity, validation.Required, customValidation.PositiveQuantity),
	)
}

// Validate checks if the create order request is valid.
func (r *CreateOrderRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.CustomerID, validation.Required, customValidation.PositiveID),
		validation.Field(&r.Items,
			validation.Required,
			validation.Length(1, customValidation.MaxOrderItems),
		),
	)
}

// ToItemRequests converts the request lines to use case input.
func (r *CreateOrderRequest) ToItemRequests() []usecase.ItemRequest {
	items := make([]usecase.ItemRequest, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, usecase.ItemRequest{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	return items
}
