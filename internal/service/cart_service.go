package service

import (
	"sync"

	"shoplike-service/internal/entity"
	"shoplike-service/internal/sharding"
)

// CartService holds the in-memory carts, one per cart id. Carts are
// deliberately unpersisted: they live for the session and are cleared only
// by checkout or an explicit clear. The store is striped across buckets so
// concurrent sessions do not contend on one lock.
type CartService struct {
	router  *sharding.ShardRouter
	buckets []*cartBucket
}

type cartBucket struct {
	mu    sync.Mutex
	carts map[string]*entity.Cart
}

// NewCartService creates a cart store with the given number of buckets.
func NewCartService(bucketCount int) *CartService {
	if bucketCount < 1 {
		bucketCount = 1
	}
	buckets := make([]*cartBucket, bucketCount)
	for i := range buckets {
		buckets[i] = &cartBucket{carts: make(map[string]*entity.Cart)}
	}
	return &CartService{
		router:  sharding.NewShardRouter(bucketCount),
		buckets: buckets,
	}
}

func (s *CartService) bucket(cartID string) *cartBucket {
	return s.buckets[s.router.GetShard(cartID)]
}

// AddItem merges the product into the cart, creating the cart on first use.
// Products without an id are ignored, matching the silent-drop policy for
// structurally invalid items.
func (s *CartService) AddItem(cartID string, product *entity.Product, quantity int) *entity.Cart {
	b := s.bucket(cartID)
	b.mu.Lock()
	defer b.mu.Unlock()

	cart, ok := b.carts[cartID]
	if !ok {
		cart = &entity.Cart{ID: cartID}
		b.carts[cartID] = cart
	}
	if !cart.AddItem(product, quantity) {
		logger.Warn().Str("cart_id", cartID).Msg("Attempted to add product without ID to cart")
	}
	return snapshot(cart)
}

// RemoveItem deletes the line for the product id. No-op for unknown carts.
func (s *CartService) RemoveItem(cartID string, productID int) *entity.Cart {
	b := s.bucket(cartID)
	b.mu.Lock()
	defer b.mu.Unlock()

	cart, ok := b.carts[cartID]
	if !ok {
		return &entity.Cart{ID: cartID}
	}
	cart.RemoveItem(productID)
	return snapshot(cart)
}

// SetQuantity overwrites the line quantity; zero or less removes the line.
func (s *CartService) SetQuantity(cartID string, productID int, quantity int) *entity.Cart {
	b := s.bucket(cartID)
	b.mu.Lock()
	defer b.mu.Unlock()

	cart, ok := b.carts[cartID]
	if !ok {
		return &entity.Cart{ID: cartID}
	}
	cart.SetQuantity(productID, quantity)
	return snapshot(cart)
}

// Clear empties the cart.
func (s *CartService) Clear(cartID string) {
	b := s.bucket(cartID)
	b.mu.Lock()
	defer b.mu.Unlock()

	if cart, ok := b.carts[cartID]; ok {
		cart.Clear()
	}
}

// GetCart returns a copy of the cart; an unknown id yields an empty cart.
func (s *CartService) GetCart(cartID string) *entity.Cart {
	b := s.bucket(cartID)
	b.mu.Lock()
	defer b.mu.Unlock()

	cart, ok := b.carts[cartID]
	if !ok {
		return &entity.Cart{ID: cartID}
	}
	return snapshot(cart)
}

// snapshot copies the cart so callers cannot mutate store state.
func snapshot(cart *entity.Cart) *entity.Cart {
	copied := &entity.Cart{ID: cart.ID}
	if len(cart.Items) > 0 {
		copied.Items = make([]entity.CartItem, len(cart.Items))
		copy(copied.Items, cart.Items)
	}
	return copied
}
