package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"shoplike-service/internal/entity"
	"shoplike-service/internal/repository"
)

// fakeCatalog is an in-memory Catalog with scriptable write failures.
type fakeCatalog struct {
	products     map[int]*entity.Product
	failWrites   map[int]int // product id -> remaining failures
	writeAttempt map[int]int
}

func newFakeCatalog(products ...*entity.Product) *fakeCatalog {
	c := &fakeCatalog{
		products:     make(map[int]*entity.Product),
		failWrites:   make(map[int]int),
		writeAttempt: make(map[int]int),
	}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

func (c *fakeCatalog) GetProduct(_ context.Context, productID int) (*entity.Product, error) {
	product, ok := c.products[productID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *product
	return &copied, nil
}

func (c *fakeCatalog) UpdateStock(_ context.Context, productID int, stock int) error {
	c.writeAttempt[productID]++
	if c.failWrites[productID] > 0 {
		c.failWrites[productID]--
		return errors.New("write failed")
	}
	product, ok := c.products[productID]
	if !ok {
		return repository.ErrNotFound
	}
	product.Stock = stock
	return nil
}

type fakeOrderStore struct {
	created []*entity.Order
	nextID  int
	err     error
}

func (s *fakeOrderStore) CreateOrder(_ context.Context, order *entity.Order) (*entity.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.nextID++
	order.ID = s.nextID
	for i := range order.Items {
		order.Items[i].ID = i + 1
	}
	s.created = append(s.created, order)
	return order, nil
}

type fakeConfirmations struct {
	saved map[int]*Confirmation
}

func newFakeConfirmations() *fakeConfirmations {
	return &fakeConfirmations{saved: make(map[int]*Confirmation)}
}

func (s *fakeConfirmations) SaveConfirmation(_ context.Context, confirmation *Confirmation) error {
	s.saved[confirmation.OrderID] = confirmation
	return nil
}

func (s *fakeConfirmations) GetConfirmation(_ context.Context, orderID int) (*Confirmation, error) {
	confirmation, ok := s.saved[orderID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return confirmation, nil
}

type fakePublisher struct {
	events []string
}

func (p *fakePublisher) PublishOrderEvent(_ context.Context, order *entity.Order, verb string) error {
	p.events = append(p.events, verb)
	return nil
}

type checkoutFixture struct {
	carts         *CartService
	catalog       *fakeCatalog
	orders        *fakeOrderStore
	confirmations *fakeConfirmations
	publisher     *fakePublisher
	checkout      *CheckoutService
}

func newCheckoutFixture(products ...*entity.Product) *checkoutFixture {
	f := &checkoutFixture{
		carts:         NewCartService(4),
		catalog:       newFakeCatalog(products...),
		orders:        &fakeOrderStore{},
		confirmations: newFakeConfirmations(),
		publisher:     &fakePublisher{},
	}
	f.checkout = NewCheckoutService(f.carts, f.catalog, f.orders, f.confirmations, f.publisher,
		WithThrottle(rate.NewLimiter(rate.Inf, 0)),
		WithRetryBackoff(0),
	)
	return f
}

func TestCheckout_HappyPath(t *testing.T) {
	p1 := &entity.Product{ID: 1, Name: "Wireless Headphones", Price: 10, Stock: 5}
	f := newCheckoutFixture(p1)
	f.carts.AddItem("cart-1", p1, 2)

	result, err := f.checkout.Checkout(context.Background(), "cart-1", entity.CustomerInfo{FirstName: "Ann"})
	require.NoError(t, err)

	assert.Equal(t, 3, f.catalog.products[1].Stock)

	order := result.Order
	require.Len(t, order.Items, 1)
	assert.Equal(t, 1, order.Items[0].ProductID)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, 20.0, order.Subtotal)
	assert.Equal(t, 1.6, order.Tax)
	assert.Equal(t, 21.6, order.GrandTotal)
	assert.Equal(t, entity.StatusProcessing, order.Status)
	assert.Regexp(t, `^TRK\d{6}$`, order.TrackingNumber)
	assert.NotEmpty(t, order.OrderDate)
	assert.NotEmpty(t, order.EstimatedDelivery)

	assert.Empty(t, result.MissingProducts)
	assert.Empty(t, result.FailedUpdates)
	assert.Empty(t, f.carts.GetCart("cart-1").Items, "cart is cleared after a successful checkout")
	assert.Equal(t, []string{"created"}, f.publisher.events)
}

func TestCheckout_StockClampedAtZero(t *testing.T) {
	p1 := &entity.Product{ID: 1, Name: "Smart Watch", Price: 10, Stock: 3}
	f := newCheckoutFixture(p1)
	f.carts.AddItem("cart-1", p1, 10)

	result, err := f.checkout.Checkout(context.Background(), "cart-1", entity.CustomerInfo{})
	require.NoError(t, err)

	assert.Equal(t, 0, f.catalog.products[1].Stock, "stock is clamped, never negative")
	assert.Equal(t, 10, result.Order.Items[0].Quantity)
}

func TestCheckout_MissingProductDroppedFromOrder(t *testing.T) {
	p1 := &entity.Product{ID: 1, Name: "Speaker", Price: 15, Stock: 4}
	p2 := &entity.Product{ID: 2, Name: "Deleted", Price: 30, Stock: 4}
	f := newCheckoutFixture(p1, p2)
	f.carts.AddItem("cart-1", p1, 1)
	f.carts.AddItem("cart-1", p2, 1)

	// product 2 disappears between add-to-cart and checkout
	delete(f.catalog.products, 2)

	result, err := f.checkout.Checkout(context.Background(), "cart-1", entity.CustomerInfo{})
	require.NoError(t, err)

	require.Len(t, result.Order.Items, 1)
	assert.Equal(t, 1, result.Order.Items[0].ProductID)
	assert.Equal(t, []int{2}, result.MissingProducts)
	assert.Equal(t, 15.0, result.Order.Subtotal, "totals cover only surviving items")
}

func TestCheckout_AllProductsMissing(t *testing.T) {
	p1 := &entity.Product{ID: 1, Name: "Gone", Price: 5, Stock: 1}
	f := newCheckoutFixture(p1)
	f.carts.AddItem("cart-1", p1, 1)
	delete(f.catalog.products, 1)

	_, err := f.checkout.Checkout(context.Background(), "cart-1", entity.CustomerInfo{})
	require.ErrorIs(t, err, ErrNoValidItems)

	assert.Empty(t, f.orders.created, "no empty order is recorded")
	assert.Len(t, f.carts.GetCart("cart-1").Items, 1, "cart survives a failed checkout")
}

func TestCheckout_EmptyCart(t *testing.T) {
	f := newCheckoutFixture()

	_, err := f.checkout.Checkout(context.Background(), "cart-1", entity.CustomerInfo{})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckout_StockWriteRetriesOnce(t *testing.T) {
	p1 := &entity.Product{ID: 1, Name: "Flaky", Price: 10, Stock: 5}
	f := newCheckoutFixture(p1)
	f.catalog.failWrites[1] = 1 // first write fails, retry succeeds
	f.carts.AddItem("cart-1", p1, 2)

	result, err := f.checkout.Checkout(context.Background(), "cart-1", entity.CustomerInfo{})
	require.NoError(t, err)

	assert.Equal(t, 2, f.catalog.writeAttempt[1])
	assert.Equal(t, 3, f.catalog.products[1].Stock)
	assert.Empty(t, result.FailedUpdates)
}

func TestCheckout_FailedUpdateToleratedOrderStillCreated(t *testing.T) {
	p1 := &entity.Product{ID: 1, Name: "Broken", Price: 10, Stock: 5}
	p2 := &entity.Product{ID: 2, Name: "Fine", Price: 20, Stock: 5}
	f := newCheckoutFixture(p1, p2)
	f.catalog.failWrites[1] = 2 // both attempts fail
	f.carts.AddItem("cart-1", p1, 1)
	f.carts.AddItem("cart-1", p2, 1)

	result, err := f.checkout.Checkout(context.Background(), "cart-1", entity.CustomerInfo{})
	require.NoError(t, err)

	assert.Equal(t, []int{1}, result.FailedUpdates)
	assert.Equal(t, 5, f.catalog.products[1].Stock, "failed decrement leaves stock untouched")
	assert.Equal(t, 4, f.catalog.products[2].Stock)
	require.Len(t, result.Order.Items, 2, "items with failed decrements stay on the order")
	assert.Empty(t, f.carts.GetCart("cart-1").Items)
}

func TestCheckout_OrderCreationFailureRollsBackStock(t *testing.T) {
	p1 := &entity.Product{ID: 1, Name: "A", Price: 10, Stock: 5}
	p2 := &entity.Product{ID: 2, Name: "B", Price: 20, Stock: 8}
	f := newCheckoutFixture(p1, p2)
	f.orders.err = errors.New("registry down")
	f.carts.AddItem("cart-1", p1, 2)
	f.carts.AddItem("cart-1", p2, 3)

	_, err := f.checkout.Checkout(context.Background(), "cart-1", entity.CustomerInfo{})
	require.Error(t, err)

	assert.Equal(t, 5, f.catalog.products[1].Stock, "decrement rolled back")
	assert.Equal(t, 8, f.catalog.products[2].Stock, "decrement rolled back")
	assert.Len(t, f.carts.GetCart("cart-1").Items, 2, "cart not cleared, the user may retry")
	assert.Empty(t, f.publisher.events)
}

func TestCheckout_ConfirmationStoredAndRetrievable(t *testing.T) {
	p1 := &entity.Product{ID: 1, Name: "Headphones", Price: 79.99, Stock: 5}
	f := newCheckoutFixture(p1)
	f.carts.AddItem("cart-1", p1, 1)

	result, err := f.checkout.Checkout(context.Background(), "cart-1", entity.CustomerInfo{Email: "a@b.c"})
	require.NoError(t, err)

	confirmation, err := f.checkout.GetConfirmation(context.Background(), result.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Order.TrackingNumber, confirmation.TrackingNumber)
	assert.Equal(t, result.Order.GrandTotal, confirmation.GrandTotal)
	assert.Equal(t, "a@b.c", confirmation.CustomerInfo.Email)
}

func TestCheckout_ConfirmationUnknownOrder(t *testing.T) {
	f := newCheckoutFixture()

	_, err := f.checkout.GetConfirmation(context.Background(), 404)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCheckout_StructurallyInvalidItemSkipped(t *testing.T) {
	p1 := &entity.Product{ID: 1, Name: "Valid", Price: 10, Stock: 5}
	f := newCheckoutFixture(p1)
	f.carts.AddItem("cart-1", p1, 1)

	// sneak a line without a product id into the cart
	b := f.carts.bucket("cart-1")
	b.mu.Lock()
	b.carts["cart-1"].Items = append(b.carts["cart-1"].Items, entity.CartItem{Name: "ghost", UnitPrice: 99, Quantity: 1})
	b.mu.Unlock()

	result, err := f.checkout.Checkout(context.Background(), "cart-1", entity.CustomerInfo{})
	require.NoError(t, err)

	require.Len(t, result.Order.Items, 1)
	assert.Empty(t, result.MissingProducts, "items without an id are dropped silently, not reported missing")
	assert.Equal(t, 10.0, result.Order.Subtotal)
}
