package api

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"shoplike-service/internal/repository"
	"shoplike-service/internal/service"
)

type CartHandler struct {
	cartService    *service.CartService
	productService *service.ProductService
}

// NewCartHandler creates a new instance of CartHandler
func NewCartHandler(cartService *service.CartService, productService *service.ProductService) *CartHandler {
	return &CartHandler{cartService: cartService, productService: productService}
}

// GetCart returns the cart with derived totals --> GET /carts/:cartID
func (h *CartHandler) GetCart(c echo.Context) error {
	cart := h.cartService.GetCart(c.Param("cartID"))
	return c.JSON(200, map[string]interface{}{
		"cart":        cart,
		"total_items": cart.TotalItems(),
		"subtotal":    cart.Subtotal(),
	})
}

// AddItem adds a product to the cart --> POST /carts/:cartID/items
func (h *CartHandler) AddItem(c echo.Context) error {
	req := struct {
		ProductID int `json:"product_id"`
		Quantity  int `json:"quantity"`
	}{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	product, err := h.productService.GetProduct(c.Request().Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(404, map[string]string{"error": "Product not found"})
		}
		return c.JSON(500, map[string]string{"error": err.Error()})
	}

	cart := h.cartService.AddItem(c.Param("cartID"), product, req.Quantity)
	return c.JSON(200, cart)
}

// UpdateQuantity overwrites a line quantity --> PUT /carts/:cartID/items/:productID
func (h *CartHandler) UpdateQuantity(c echo.Context) error {
	productID, err := strconv.Atoi(c.Param("productID"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid product ID"})
	}

	req := struct {
		Quantity int `json:"quantity"`
	}{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	cart := h.cartService.SetQuantity(c.Param("cartID"), productID, req.Quantity)
	return c.JSON(200, cart)
}

// RemoveItem deletes a line --> DELETE /carts/:cartID/items/:productID
func (h *CartHandler) RemoveItem(c echo.Context) error {
	productID, err := strconv.Atoi(c.Param("productID"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid product ID"})
	}

	cart := h.cartService.RemoveItem(c.Param("cartID"), productID)
	return c.JSON(200, cart)
}

// ClearCart empties the cart --> DELETE /carts/:cartID
func (h *CartHandler) ClearCart(c echo.Context) error {
	h.cartService.Clear(c.Param("cartID"))
	return c.JSON(200, map[string]string{"message": "Cart cleared"})
}
