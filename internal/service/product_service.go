package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"shoplike-service/internal/entity"
	"shoplike-service/internal/repository"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// ErrInvalidProduct is returned when a product write fails boundary validation.
var ErrInvalidProduct = errors.New("invalid product")

// ProductStore is the persistence surface the catalog needs.
type ProductStore interface {
	GetProductByID(ctx context.Context, id int) (*entity.Product, error)
	GetProducts(ctx context.Context) ([]*entity.Product, error)
	CreateProduct(ctx context.Context, product *entity.Product) (*entity.Product, error)
	UpdateProduct(ctx context.Context, product *entity.Product) (*entity.Product, error)
	UpdateProductStock(ctx context.Context, id int, stock int) error
	DeleteProduct(ctx context.Context, id int) error
}

// ProductService is the catalog accessor: reads go through the redis cache,
// writes go to the store and refresh the cache.
type ProductService struct {
	productRepo ProductStore
	rdb         *redis.Client
	cacheTTL    time.Duration
}

// NewProductService creates a new instance of ProductService.
func NewProductService(productRepo ProductStore, rdb *redis.Client) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		rdb:         rdb,
		cacheTTL:    time.Minute,
	}
}

func productCacheKey(id int) string {
	return fmt.Sprintf("product:%d", id)
}

// GetProduct retrieves a product, serving from cache when possible.
func (p *ProductService) GetProduct(ctx context.Context, productID int) (*entity.Product, error) {
	if p.rdb != nil {
		productCache, err := p.rdb.Get(ctx, productCacheKey(productID)).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) {
				logger.Error().Err(err).Msgf("Error getting product %d from cache", productID)
			}
		} else if productCache != "" {
			var product entity.Product
			if err := json.Unmarshal([]byte(productCache), &product); err != nil {
				logger.Error().Err(err).Msgf("Error unmarshalling cached product %d", productID)
			} else {
				return &product, nil
			}
		}
	}

	product, err := p.productRepo.GetProductByID(ctx, productID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logger.Error().Err(err).Msgf("Error getting product by ID %d", productID)
		}
		return nil, err
	}

	p.writeCache(ctx, product)
	return product, nil
}

// GetProductStock retrieves the current stock for a product.
func (p *ProductService) GetProductStock(ctx context.Context, productID int) (int, error) {
	product, err := p.GetProduct(ctx, productID)
	if err != nil {
		return 0, err
	}
	return product.Stock, nil
}

// ListProducts returns all products. Listing bypasses the cache.
func (p *ProductService) ListProducts(ctx context.Context) ([]*entity.Product, error) {
	products, err := p.productRepo.GetProducts(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Error getting products")
		return nil, err
	}
	return products, nil
}

// CreateProduct validates and persists a new product.
func (p *ProductService) CreateProduct(ctx context.Context, product *entity.Product) (*entity.Product, error) {
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	product.CreatedAt = time.Now().UnixMilli()

	created, err := p.productRepo.CreateProduct(ctx, product)
	if err != nil {
		logger.Error().Err(err).Msg("Error creating product")
		return nil, err
	}

	p.writeCache(ctx, created)
	return created, nil
}

// UpdateProduct validates and persists changes to an existing product.
func (p *ProductService) UpdateProduct(ctx context.Context, product *entity.Product) (*entity.Product, error) {
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	updated, err := p.productRepo.UpdateProduct(ctx, product)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logger.Error().Err(err).Msgf("Error updating product %d", product.ID)
		}
		return nil, err
	}

	p.writeCache(ctx, updated)
	return updated, nil
}

// UpdateStock writes only the stock quantity and refreshes the cache so the
// next read sees the decrement. Negative stock is rejected outright.
func (p *ProductService) UpdateStock(ctx context.Context, productID int, stock int) error {
	if stock < 0 {
		return fmt.Errorf("%w: stock must not be negative", ErrInvalidProduct)
	}

	if err := p.productRepo.UpdateProductStock(ctx, productID, stock); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logger.Error().Err(err).Msgf("Error updating stock for product %d", productID)
		}
		return err
	}

	product, err := p.productRepo.GetProductByID(ctx, productID)
	if err == nil {
		p.writeCache(ctx, product)
	}
	return nil
}

// DeleteProduct removes a product and evicts it from the cache.
func (p *ProductService) DeleteProduct(ctx context.Context, productID int) error {
	if err := p.productRepo.DeleteProduct(ctx, productID); err != nil {
		logger.Error().Err(err).Msgf("Error deleting product %d", productID)
		return err
	}

	if p.rdb != nil {
		if err := p.rdb.Del(ctx, productCacheKey(productID)).Err(); err != nil {
			logger.Error().Err(err).Msgf("Error deleting product %d from cache", productID)
		}
	}
	return nil
}

func (p *ProductService) writeCache(ctx context.Context, product *entity.Product) {
	if p.rdb == nil {
		return
	}
	productJSON, err := json.Marshal(product)
	if err != nil {
		logger.Error().Err(err).Msgf("Error marshalling product %d", product.ID)
		return
	}
	if err := p.rdb.Set(ctx, productCacheKey(product.ID), productJSON, p.cacheTTL).Err(); err != nil {
		logger.Error().Err(err).Msgf("Error setting product %d in cache", product.ID)
	}
}

func validateProduct(product *entity.Product) error {
	if product.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if product.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	}
	if product.OriginalPrice < 0 {
		return fmt.Errorf("%w: original price must not be negative", ErrInvalidProduct)
	}
	if product.Stock < 0 {
		return fmt.Errorf("%w: stock must not be negative", ErrInvalidProduct)
	}
	return nil
}
