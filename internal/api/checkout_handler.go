package api

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"shoplike-service/internal/entity"
	"shoplike-service/internal/repository"
	"shoplike-service/internal/service"
)

type CheckoutHandler struct {
	checkoutService *service.CheckoutService
}

// NewCheckoutHandler creates a new instance of CheckoutHandler
func NewCheckoutHandler(checkoutService *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// Checkout runs the checkout workflow for a cart --> POST /checkout
func (h *CheckoutHandler) Checkout(c echo.Context) error {
	req := struct {
		CartID       string              `json:"cart_id"`
		CustomerInfo entity.CustomerInfo `json:"customer_info"`
	}{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}
	if req.CartID == "" {
		return c.JSON(400, map[string]string{"error": "cart_id is required"})
	}

	result, err := h.checkoutService.Checkout(c.Request().Context(), req.CartID, req.CustomerInfo)
	if err != nil {
		if errors.Is(err, service.ErrEmptyCart) || errors.Is(err, service.ErrNoValidItems) {
			return c.JSON(422, map[string]string{"error": err.Error()})
		}
		return c.JSON(500, map[string]string{"error": err.Error()})
	}

	return c.JSON(201, result)
}

// GetConfirmation returns the stored checkout confirmation --> GET /orders/:id/confirmation
func (h *CheckoutHandler) GetConfirmation(c echo.Context) error {
	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid order ID"})
	}

	confirmation, err := h.checkoutService.GetConfirmation(c.Request().Context(), orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(404, map[string]string{"error": "Confirmation not found"})
		}
		return c.JSON(500, map[string]string{"error": err.Error()})
	}

	return c.JSON(200, confirmation)
}
