package service

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoplike-service/internal/entity"
	"shoplike-service/internal/repository"
)

// fakeOrderRegistry is an in-memory OrderRegistry.
type fakeOrderRegistry struct {
	orders map[int]*entity.Order
}

func newFakeOrderRegistry(orders ...*entity.Order) *fakeOrderRegistry {
	r := &fakeOrderRegistry{orders: make(map[int]*entity.Order)}
	for _, o := range orders {
		r.orders[o.ID] = o
	}
	return r
}

func (r *fakeOrderRegistry) GetOrderByID(_ context.Context, id int) (*entity.Order, error) {
	order, ok := r.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return order, nil
}

func (r *fakeOrderRegistry) GetOrderByTrackingNumber(_ context.Context, trackingNumber string) (*entity.Order, error) {
	for _, order := range r.orders {
		if order.TrackingNumber == trackingNumber {
			return order, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeOrderRegistry) GetRecentOrders(_ context.Context, limit int) ([]*entity.Order, error) {
	var orders []*entity.Order
	for _, order := range r.orders {
		orders = append(orders, order)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt > orders[j].CreatedAt })
	if len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}

func (r *fakeOrderRegistry) SetItemReceived(_ context.Context, orderID, itemID int, received bool) error {
	order, ok := r.orders[orderID]
	if !ok {
		return repository.ErrNotFound
	}
	for i := range order.Items {
		if order.Items[i].ID == itemID {
			order.Items[i].Received = received
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeOrderRegistry) UpdateOrderStatus(_ context.Context, id int, status entity.OrderStatus) error {
	order, ok := r.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	order.Status = status
	return nil
}

func trackedOrder() *entity.Order {
	return &entity.Order{
		ID:             1,
		TrackingNumber: "TRK123456",
		Status:         entity.StatusProcessing,
		Items: []entity.OrderItem{
			{ID: 1, ProductID: 10, Name: "Headphones", UnitPrice: 79.99, Quantity: 1},
			{ID: 2, ProductID: 11, Name: "Smart Watch", UnitPrice: 149.99, Quantity: 1},
		},
	}
}

func TestFulfillment_FindByTracking(t *testing.T) {
	s := NewFulfillmentService(newFakeOrderRegistry(trackedOrder()), &fakePublisher{})

	order, err := s.FindByTracking(context.Background(), "TRK123456")
	require.NoError(t, err)
	assert.Equal(t, 1, order.ID)
	assert.Len(t, order.Items, 2)
}

func TestFulfillment_FindByTracking_Unknown(t *testing.T) {
	s := NewFulfillmentService(newFakeOrderRegistry(trackedOrder()), &fakePublisher{})

	_, err := s.FindByTracking(context.Background(), "TRK000000")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestFulfillment_MarkItemReceived(t *testing.T) {
	registry := newFakeOrderRegistry(trackedOrder())
	s := NewFulfillmentService(registry, &fakePublisher{})

	order, err := s.MarkItemReceived(context.Background(), 1, 1, true)
	require.NoError(t, err)

	assert.True(t, order.Items[0].Received)
	assert.False(t, order.Items[1].Received)
	assert.False(t, order.AllReceived())
	assert.Equal(t, entity.StatusProcessing, order.Status)
}

func TestFulfillment_AllReceivedMarksDelivered(t *testing.T) {
	registry := newFakeOrderRegistry(trackedOrder())
	publisher := &fakePublisher{}
	s := NewFulfillmentService(registry, publisher)

	_, err := s.MarkItemReceived(context.Background(), 1, 1, true)
	require.NoError(t, err)
	order, err := s.MarkItemReceived(context.Background(), 1, 2, true)
	require.NoError(t, err)

	assert.True(t, order.AllReceived())
	assert.Equal(t, entity.StatusDelivered, order.Status)
	assert.Equal(t, []string{"delivered"}, publisher.events)
}

func TestFulfillment_UnreceiveItem(t *testing.T) {
	registry := newFakeOrderRegistry(trackedOrder())
	s := NewFulfillmentService(registry, &fakePublisher{})

	_, err := s.MarkItemReceived(context.Background(), 1, 1, true)
	require.NoError(t, err)
	order, err := s.MarkItemReceived(context.Background(), 1, 1, false)
	require.NoError(t, err)

	assert.False(t, order.Items[0].Received)
	assert.Equal(t, entity.StatusProcessing, order.Status)
}

func TestFulfillment_MarkItemReceived_UnknownItem(t *testing.T) {
	s := NewFulfillmentService(newFakeOrderRegistry(trackedOrder()), &fakePublisher{})

	_, err := s.MarkItemReceived(context.Background(), 1, 99, true)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestFulfillment_MarkAllReceived(t *testing.T) {
	registry := newFakeOrderRegistry(trackedOrder())
	publisher := &fakePublisher{}
	s := NewFulfillmentService(registry, publisher)

	order, err := s.MarkAllReceived(context.Background(), 1)
	require.NoError(t, err)

	assert.True(t, order.AllReceived())
	assert.Equal(t, entity.StatusDelivered, order.Status)
	assert.Equal(t, []string{"delivered"}, publisher.events, "delivered is published once")
}

func TestFulfillment_RecentOrders(t *testing.T) {
	first := trackedOrder()
	second := &entity.Order{ID: 2, TrackingNumber: "TRK789012", CreatedAt: 100, Status: entity.StatusProcessing}
	third := &entity.Order{ID: 3, TrackingNumber: "TRK345678", CreatedAt: 200, Status: entity.StatusProcessing}
	s := NewFulfillmentService(newFakeOrderRegistry(first, second, third), &fakePublisher{})

	orders, err := s.RecentOrders(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, 3, orders[0].ID, "newest first")
}
