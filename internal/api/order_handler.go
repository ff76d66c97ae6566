package api

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"shoplike-service/internal/entity"
	"shoplike-service/internal/repository"
	"shoplike-service/internal/service"
)

type OrderHandler struct {
	fulfillmentService *service.FulfillmentService
}

// NewOrderHandler creates a new instance of OrderHandler
func NewOrderHandler(fulfillmentService *service.FulfillmentService) *OrderHandler {
	return &OrderHandler{fulfillmentService: fulfillmentService}
}

// TrackOrder finds an order by tracking number --> GET /orders/tracking/:trackingNumber
func (h *OrderHandler) TrackOrder(c echo.Context) error {
	order, err := h.fulfillmentService.FindByTracking(c.Request().Context(), c.Param("trackingNumber"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(404, map[string]string{"error": "No order found with this tracking number"})
		}
		return c.JSON(500, map[string]string{"error": err.Error()})
	}

	return c.JSON(200, map[string]interface{}{
		"order":        order,
		"all_received": order.AllReceived(),
	})
}

// RecentOrders lists the newest orders --> GET /orders/recent
func (h *OrderHandler) RecentOrders(c echo.Context) error {
	limit := 5
	if v := c.QueryParam("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			return c.JSON(400, map[string]string{"error": "Invalid limit"})
		}
		limit = parsed
	}

	orders, err := h.fulfillmentService.RecentOrders(c.Request().Context(), limit)
	if err != nil {
		return c.JSON(500, map[string]string{"error": err.Error()})
	}
	if orders == nil {
		orders = []*entity.Order{}
	}
	return c.JSON(200, orders)
}

// MarkItemReceived toggles the received flag for one item --> PUT /orders/:id/items/:itemID/received
func (h *OrderHandler) MarkItemReceived(c echo.Context) error {
	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid order ID"})
	}
	itemID, err := strconv.Atoi(c.Param("itemID"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid item ID"})
	}

	req := struct {
		Received *bool `json:"received"`
	}{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}
	received := true
	if req.Received != nil {
		received = *req.Received
	}

	order, err := h.fulfillmentService.MarkItemReceived(c.Request().Context(), orderID, itemID, received)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(404, map[string]string{"error": "Order item not found"})
		}
		return c.JSON(500, map[string]string{"error": err.Error()})
	}

	return c.JSON(200, map[string]interface{}{
		"order":        order,
		"all_received": order.AllReceived(),
	})
}

// MarkAllReceived marks every item received --> PUT /orders/:id/received
func (h *OrderHandler) MarkAllReceived(c echo.Context) error {
	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid order ID"})
	}

	order, err := h.fulfillmentService.MarkAllReceived(c.Request().Context(), orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(404, map[string]string{"error": "Order not found"})
		}
		return c.JSON(500, map[string]string{"error": err.Error()})
	}

	return c.JSON(200, map[string]interface{}{
		"order":        order,
		"all_received": order.AllReceived(),
	})
}
