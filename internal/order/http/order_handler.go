// Package http provides HTTP handlers for order operations.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/orders/internal/httputil"
	"github.com/allisson/orders/internal/order/http/dto"
	"github.com/allisson/orders/internal/order/usecase"
	customValidation "github.com/allisson/orders/internal/validation"
)

// OrderHandler handles HTTP requests for order operations.
type OrderHandler struct {
	orderUseCase usecase.OrderUseCase
	logger       *slog.Logger
}

// NewOrderHandler creates a new order handler with required dependencies.
func NewOrderHandler(orderUseCase usecase.OrderUseCase, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		orderUseCase: orderUseCase,
		logger:       logger,
	}
}

// CreateHandler places a new order.
// POST /v1/orders - Returns 201 Created with the order.
func (h *OrderHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateOrderRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	order, err := h.orderUseCase.Create(c.Request.Context(), req.CustomerID, req.ToItemRequests())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapOrderToResponse(order))
}

// GetHandler retrieves an order by id.
// GET /v1/orders/:id
func (h *OrderHandler) GetHandler(c *gin.Context) {
	id, err := httputil.ParseIDParam(c, "id")
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	order, err := h.orderUseCase.Get(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapOrderToResponse(order))
}

// ListHandler lists orders newest first.
// GET /v1/orders?customer_id=N&offset=0&limit=50
func (h *OrderHandler) ListHandler(c *gin.Context) {
	customerID, err := httputil.ParseOptionalIDQuery(c, "customer_id")
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	h.list(c, customerID)
}

// ListByCustomerHandler lists the orders of one customer newest first.
// GET /v1/customers/:customer_id/orders?offset=0&limit=50
func (h *OrderHandler) ListByCustomerHandler(c *gin.Context) {
	customerID, err := httputil.ParseIDParam(c, "customer_id")
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	h.list(c, &customerID)
}

func (h *OrderHandler) list(c *gin.Context, customerID *int64) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	orders, err := h.orderUseCase.List(c.Request.Context(), usecase.ListFilter{
		CustomerID: customerID,
		Offset:     offset,
		Limit:      limit,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapOrdersToListResponse(orders))
}

// CancelHandler cancels an order.
// PUT /v1/orders/:id/cancel - Returns 409 Conflict when the order is already canceled.
func (h *OrderHandler) CancelHandler(c *gin.Context) {
	id, err := httputil.ParseIDParam(c, "id")
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	order, err := h.orderUseCase.Cancel(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapOrderToResponse(order))
}

// ConfirmHandler confirms a pending order.
// PUT /v1/orders/:id/confirm - Returns 409 Conflict unless the order is pending.
func (h *OrderHandler) ConfirmHandler(c *gin.Context) {
	id, err := httputil.ParseIDParam(c, "id")
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	order, err := h.orderUseCase.Confirm(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapOrderToResponse(order))
}
