package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"golang.org/x/time/rate"

	"shoplike-service/internal/entity"
	"shoplike-service/internal/repository"
)

var (
	// ErrEmptyCart is returned when checkout is attempted on an empty cart.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrNoValidItems is returned when none of the cart items resolve to a
	// live product. The original storefront recorded an empty order in this
	// case; an order for nothing is not fulfillable, so it is rejected here.
	ErrNoValidItems = errors.New("no valid items to order")
)

// Catalog is the product surface checkout needs: resolve a line item to a
// live product and write back a stock decrement.
type Catalog interface {
	GetProduct(ctx context.Context, productID int) (*entity.Product, error)
	UpdateStock(ctx context.Context, productID int, stock int) error
}

// OrderCreator persists completed orders.
type OrderCreator interface {
	CreateOrder(ctx context.Context, order *entity.Order) (*entity.Order, error)
}

// OrderEventPublisher announces order lifecycle changes downstream.
type OrderEventPublisher interface {
	PublishOrderEvent(ctx context.Context, order *entity.Order, verb string) error
}

// Confirmation is the server-issued record of a completed checkout,
// retrievable by order id so the receipt view needs no client-local state.
type Confirmation struct {
	OrderID           int                 `json:"order_id"`
	TrackingNumber    string              `json:"tracking_number"`
	Items             []entity.OrderItem  `json:"items"`
	Subtotal          float64             `json:"subtotal"`
	Tax               float64             `json:"tax"`
	GrandTotal        float64             `json:"grand_total"`
	CustomerInfo      entity.CustomerInfo `json:"customer_info"`
	EstimatedDelivery string              `json:"estimated_delivery"`
}

// ConfirmationStore keeps confirmations for later retrieval.
type ConfirmationStore interface {
	SaveConfirmation(ctx context.Context, confirmation *Confirmation) error
	GetConfirmation(ctx context.Context, orderID int) (*Confirmation, error)
}

// CheckoutResult reports the created order plus the per-item casualties the
// workflow tolerated along the way.
type CheckoutResult struct {
	Order           *entity.Order `json:"order"`
	MissingProducts []int         `json:"missing_products,omitempty"`
	FailedUpdates   []int         `json:"failed_updates,omitempty"`
}

// CheckoutService turns a cart into a persisted order and adjusts inventory.
type CheckoutService struct {
	carts         *CartService
	catalog       Catalog
	orders        OrderCreator
	confirmations ConfirmationStore
	producer      OrderEventPublisher
	limiter       *rate.Limiter
	retryBackoff  time.Duration
}

// CheckoutOption adjusts checkout behavior.
type CheckoutOption func(*CheckoutService)

// WithThrottle replaces the courtesy throttle applied between catalog reads
// during validation.
func WithThrottle(limiter *rate.Limiter) CheckoutOption {
	return func(s *CheckoutService) { s.limiter = limiter }
}

// WithRetryBackoff sets the delay before the single stock-update retry.
func WithRetryBackoff(d time.Duration) CheckoutOption {
	return func(s *CheckoutService) { s.retryBackoff = d }
}

// NewCheckoutService creates a new instance of CheckoutService.
func NewCheckoutService(carts *CartService, catalog Catalog, orders OrderCreator,
	confirmations ConfirmationStore, producer OrderEventPublisher, opts ...CheckoutOption) *CheckoutService {
	s := &CheckoutService{
		carts:         carts,
		catalog:       catalog,
		orders:        orders,
		confirmations: confirmations,
		producer:      producer,
		limiter:       rate.NewLimiter(rate.Every(300*time.Millisecond), 1),
		retryBackoff:  1500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type validItem struct {
	item    entity.CartItem
	product *entity.Product
}

type appliedUpdate struct {
	productID int
	prevStock int
}

// Checkout validates the cart against the live catalog, decrements stock,
// persists the order and clears the cart. Missing products and failed stock
// writes are tolerated and reported in the result; only an order-registry
// failure is fatal, in which case applied decrements are rolled back and the
// cart is left intact so the caller may retry.
func (s *CheckoutService) Checkout(ctx context.Context, cartID string, customer entity.CustomerInfo) (*CheckoutResult, error) {
	cart := s.carts.GetCart(cartID)
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	logger.Info().Str("cart_id", cartID).Int("items", len(cart.Items)).Msg("Starting checkout")

	validItems, missing, err := s.validateItems(ctx, cart.Items)
	if err != nil {
		return nil, err
	}
	if len(validItems) == 0 {
		logger.Warn().Str("cart_id", cartID).Msg("No valid products found in cart")
		return nil, ErrNoValidItems
	}

	failed, applied := s.commitStock(ctx, validItems)

	order := buildOrder(validItems, customer)
	created, err := s.orders.CreateOrder(ctx, order)
	if err != nil {
		logger.Error().Err(err).Str("cart_id", cartID).Msg("Error creating order, rolling back stock")
		s.rollbackStock(ctx, applied)
		return nil, fmt.Errorf("creating order: %w", err)
	}

	s.saveConfirmation(ctx, created)

	if s.producer != nil {
		if err := s.producer.PublishOrderEvent(ctx, created, "created"); err != nil {
			logger.Error().Err(err).Int("order_id", created.ID).Msg("Error publishing order event")
		}
	}

	s.carts.Clear(cartID)

	logger.Info().
		Int("order_id", created.ID).
		Str("tracking_number", created.TrackingNumber).
		Int("missing", len(missing)).
		Int("failed_updates", len(failed)).
		Msg("Checkout complete")

	return &CheckoutResult{Order: created, MissingProducts: missing, FailedUpdates: failed}, nil
}

// GetConfirmation retrieves a stored checkout confirmation by order id.
func (s *CheckoutService) GetConfirmation(ctx context.Context, orderID int) (*Confirmation, error) {
	return s.confirmations.GetConfirmation(ctx, orderID)
}

// validateItems resolves each cart line against the catalog, strictly
// sequentially and throttled so the backend is not hammered. Lines without a
// product id are dropped; unresolvable products go to the missing list.
func (s *CheckoutService) validateItems(ctx context.Context, items []entity.CartItem) ([]validItem, []int, error) {
	var valid []validItem
	var missing []int

	for _, item := range items {
		if item.ProductID == 0 {
			logger.Warn().Msg("Found invalid item in cart without product ID")
			continue
		}

		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return nil, nil, err
			}
		}

		product, err := s.catalog.GetProduct(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				logger.Warn().Int("product_id", item.ProductID).Msg("Product not found, it may have been deleted")
			} else {
				logger.Error().Err(err).Int("product_id", item.ProductID).Msg("Error validating product")
			}
			missing = append(missing, item.ProductID)
			continue
		}

		valid = append(valid, validItem{item: item, product: product})
	}

	return valid, missing, nil
}

// commitStock decrements stock per valid item, clamped at zero so inventory
// is never negative even when the requested quantity exceeds stock. A failed
// write is retried exactly once after a fixed backoff; a second failure puts
// the product on the failed list and the checkout moves on.
func (s *CheckoutService) commitStock(ctx context.Context, items []validItem) (failed []int, applied []appliedUpdate) {
	for _, vi := range items {
		newStock := vi.product.Stock - vi.item.Quantity
		if newStock < 0 {
			newStock = 0
		}

		err := s.catalog.UpdateStock(ctx, vi.product.ID, newStock)
		if err != nil {
			logger.Error().Err(err).Int("product_id", vi.product.ID).Msg("Failed to update stock, retrying once")
			time.Sleep(s.retryBackoff)
			err = s.catalog.UpdateStock(ctx, vi.product.ID, newStock)
		}
		if err != nil {
			logger.Error().Err(err).Int("product_id", vi.product.ID).Msg("Stock update retry failed")
			failed = append(failed, vi.product.ID)
			continue
		}

		applied = append(applied, appliedUpdate{productID: vi.product.ID, prevStock: vi.product.Stock})
	}
	return failed, applied
}

// rollbackStock restores pre-checkout stock after a fatal order-registry
// failure. Best effort: a failed restore is logged, not retried.
func (s *CheckoutService) rollbackStock(ctx context.Context, applied []appliedUpdate) {
	for _, a := range applied {
		if err := s.catalog.UpdateStock(ctx, a.productID, a.prevStock); err != nil {
			logger.Error().Err(err).Int("product_id", a.productID).Msg("Error rolling back stock")
		}
	}
}

func (s *CheckoutService) saveConfirmation(ctx context.Context, order *entity.Order) {
	if s.confirmations == nil {
		return
	}
	confirmation := &Confirmation{
		OrderID:           order.ID,
		TrackingNumber:    order.TrackingNumber,
		Items:             order.Items,
		Subtotal:          order.Subtotal,
		Tax:               order.Tax,
		GrandTotal:        order.GrandTotal,
		CustomerInfo:      order.CustomerInfo,
		EstimatedDelivery: order.EstimatedDelivery,
	}
	if err := s.confirmations.SaveConfirmation(ctx, confirmation); err != nil {
		logger.Error().Err(err).Int("order_id", order.ID).Msg("Error saving order confirmation")
	}
}

func buildOrder(items []validItem, customer entity.CustomerInfo) *entity.Order {
	orderItems := make([]entity.OrderItem, 0, len(items))
	subtotal := 0.0
	for _, vi := range items {
		price := vi.item.UnitPrice
		if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
			price = 0
		}
		quantity := vi.item.Quantity
		if quantity < 0 {
			quantity = 0
		}
		subtotal += price * float64(quantity)
		orderItems = append(orderItems, entity.OrderItem{
			ProductID: vi.item.ProductID,
			Name:      vi.item.Name,
			UnitPrice: vi.item.UnitPrice,
			Quantity:  vi.item.Quantity,
			Image:     vi.item.Image,
		})
	}

	subtotal = entity.Round2(subtotal)
	tax := entity.Tax(subtotal)

	now := time.Now()
	return &entity.Order{
		Items:             orderItems,
		Subtotal:          subtotal,
		Tax:               tax,
		GrandTotal:        entity.Round2(subtotal + tax),
		CustomerInfo:      customer,
		TrackingNumber:    newTrackingNumber(),
		OrderDate:         now.Format("2006-01-02"),
		EstimatedDelivery: now.AddDate(0, 0, 5).Format("2006-01-02"),
		Status:            entity.StatusProcessing,
		CreatedAt:         now.UnixMilli(),
	}
}

// newTrackingNumber generates an opaque TRK-prefixed six digit number.
func newTrackingNumber() string {
	return fmt.Sprintf("TRK%d", 100000+rand.Intn(900000))
}
