package api

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"shoplike-service/internal/entity"
	"shoplike-service/internal/repository"
	"shoplike-service/internal/service"
)

type ProductHandler struct {
	productService *service.ProductService
}

// NewProductHandler creates a new instance of ProductHandler
func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// ListProducts returns all products --> GET /products
func (ph *ProductHandler) ListProducts(c echo.Context) error {
	products, err := ph.productService.ListProducts(c.Request().Context())
	if err != nil {
		return c.JSON(500, map[string]string{"error": err.Error()})
	}
	if products == nil {
		products = []*entity.Product{}
	}
	return c.JSON(200, products)
}

// GetProduct returns one product --> GET /products/:id
func (ph *ProductHandler) GetProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid product ID"})
	}

	product, err := ph.productService.GetProduct(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(404, map[string]string{"error": "Product not found"})
		}
		return c.JSON(500, map[string]string{"error": err.Error()})
	}

	return c.JSON(200, product)
}

// GetProductStock gets the stock of a product --> GET /products/:id/stock
func (ph *ProductHandler) GetProductStock(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid product ID"})
	}

	stock, err := ph.productService.GetProductStock(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(404, map[string]string{"error": "Product not found"})
		}
		return c.JSON(500, map[string]string{"error": err.Error()})
	}

	return c.JSON(200, map[string]int{"stock": stock})
}

// CreateProduct creates a product --> POST /products (JWT)
func (ph *ProductHandler) CreateProduct(c echo.Context) error {
	product := entity.Product{}
	if err := c.Bind(&product); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	created, err := ph.productService.CreateProduct(c.Request().Context(), &product)
	if err != nil {
		if errors.Is(err, service.ErrInvalidProduct) {
			return c.JSON(400, map[string]string{"error": err.Error()})
		}
		return c.JSON(500, map[string]string{"error": err.Error()})
	}

	return c.JSON(201, created)
}

// UpdateProduct updates a product --> PUT /products/:id (JWT)
func (ph *ProductHandler) UpdateProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid product ID"})
	}

	product := entity.Product{}
	if err := c.Bind(&product); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}
	product.ID = id

	updated, err := ph.productService.UpdateProduct(c.Request().Context(), &product)
	if err != nil {
		if errors.Is(err, service.ErrInvalidProduct) {
			return c.JSON(400, map[string]string{"error": err.Error()})
		}
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(404, map[string]string{"error": "Product not found"})
		}
		return c.JSON(500, map[string]string{"error": err.Error()})
	}

	return c.JSON(200, updated)
}

// DeleteProduct deletes a product --> DELETE /products/:id (JWT)
func (ph *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid product ID"})
	}

	if err := ph.productService.DeleteProduct(c.Request().Context(), id); err != nil {
		return c.JSON(500, map[string]string{"error": err.Error()})
	}

	return c.JSON(200, map[string]string{"message": "Product deleted"})
}
