package service

import (
	"context"
	"errors"

	"shoplike-service/internal/entity"
	"shoplike-service/internal/repository"
)

// OrderRegistry is the persisted order surface the fulfillment tracker needs.
type OrderRegistry interface {
	GetOrderByID(ctx context.Context, id int) (*entity.Order, error)
	GetOrderByTrackingNumber(ctx context.Context, trackingNumber string) (*entity.Order, error)
	GetRecentOrders(ctx context.Context, limit int) ([]*entity.Order, error)
	SetItemReceived(ctx context.Context, orderID, itemID int, received bool) error
	UpdateOrderStatus(ctx context.Context, id int, status entity.OrderStatus) error
}

// FulfillmentService looks orders up for post-purchase tracking and records
// delivery receipt per item.
type FulfillmentService struct {
	orders   OrderRegistry
	producer OrderEventPublisher
}

// NewFulfillmentService creates a new instance of FulfillmentService.
func NewFulfillmentService(orders OrderRegistry, producer OrderEventPublisher) *FulfillmentService {
	return &FulfillmentService{orders: orders, producer: producer}
}

// FindByTracking locates an order by tracking number.
func (s *FulfillmentService) FindByTracking(ctx context.Context, trackingNumber string) (*entity.Order, error) {
	order, err := s.orders.GetOrderByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logger.Error().Err(err).Str("tracking_number", trackingNumber).Msg("Error searching for order")
		}
		return nil, err
	}
	return order, nil
}

// RecentOrders returns the newest orders, for the tracking page's shortlist.
func (s *FulfillmentService) RecentOrders(ctx context.Context, limit int) ([]*entity.Order, error) {
	if limit < 1 {
		limit = 5
	}
	orders, err := s.orders.GetRecentOrders(ctx, limit)
	if err != nil {
		logger.Error().Err(err).Msg("Error fetching recent orders")
		return nil, err
	}
	return orders, nil
}

// MarkItemReceived persists the received flag for one item. When every item
// of the order is received the order transitions to Delivered and an event
// is published.
func (s *FulfillmentService) MarkItemReceived(ctx context.Context, orderID, itemID int, received bool) (*entity.Order, error) {
	if err := s.orders.SetItemReceived(ctx, orderID, itemID, received); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logger.Error().Err(err).Int("order_id", orderID).Int("item_id", itemID).Msg("Error marking item received")
		}
		return nil, err
	}

	order, err := s.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.AllReceived() && order.Status != entity.StatusDelivered {
		if err := s.orders.UpdateOrderStatus(ctx, orderID, entity.StatusDelivered); err != nil {
			logger.Error().Err(err).Int("order_id", orderID).Msg("Error updating order status")
			return nil, err
		}
		order.Status = entity.StatusDelivered

		if s.producer != nil {
			if err := s.producer.PublishOrderEvent(ctx, order, "delivered"); err != nil {
				logger.Error().Err(err).Int("order_id", orderID).Msg("Error publishing order event")
			}
		}
	}

	return order, nil
}

// MarkAllReceived marks every item of the order received.
func (s *FulfillmentService) MarkAllReceived(ctx context.Context, orderID int) (*entity.Order, error) {
	order, err := s.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	var updated *entity.Order
	for _, item := range order.Items {
		updated, err = s.MarkItemReceived(ctx, orderID, item.ID, true)
		if err != nil {
			return nil, err
		}
	}
	if updated == nil {
		return order, nil
	}
	return updated, nil
}
