package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"shoplike-service/internal/entity"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db}
}

func (r *OrderRepository) CreateOrder(ctx context.Context, order *entity.Order) (*entity.Order, error) {
	customerJSON, err := json.Marshal(order.CustomerInfo)
	if err != nil {
		return nil, err
	}

	// Start a transaction
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	// Insert order
	orderQuery := `INSERT INTO orders (tracking_number, subtotal, tax, grand_total, customer_info, order_date, estimated_delivery, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, orderQuery, order.TrackingNumber, order.Subtotal, order.Tax,
		order.GrandTotal, string(customerJSON), order.OrderDate, order.EstimatedDelivery,
		order.Status, order.CreatedAt)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	orderID, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if len(order.Items) > 0 {
		// Insert order items with batch
		itemQuery := `
		INSERT INTO order_items (order_id, product_id, name, unit_price, quantity, image, received)
		VALUES `

		// Build the query
		var values []interface{}
		for _, item := range order.Items {
			itemQuery += "(?, ?, ?, ?, ?, ?, ?),"
			values = append(values, orderID, item.ProductID, item.Name, item.UnitPrice, item.Quantity, item.Image, item.Received)
		}

		// Remove the trailing comma
		itemQuery = itemQuery[:len(itemQuery)-1]

		res, err = tx.ExecContext(ctx, itemQuery, values...)
		if err != nil {
			tx.Rollback()
			return nil, err
		}

		// MySQL hands back the first generated id of a multi-row insert;
		// the rest follow sequentially.
		firstItemID, err := res.LastInsertId()
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		for i := range order.Items {
			order.Items[i].ID = int(firstItemID) + i
		}
	}

	// Commit the transaction
	err = tx.Commit()
	if err != nil {
		return nil, err
	}

	order.ID = int(orderID)
	return order, nil
}

const orderColumns = `id, tracking_number, subtotal, tax, grand_total, customer_info, order_date, estimated_delivery, status, created_at`

func (r *OrderRepository) scanOrder(row interface{ Scan(...any) error }) (*entity.Order, error) {
	var (
		order        entity.Order
		customerJSON string
	)
	err := row.Scan(&order.ID, &order.TrackingNumber, &order.Subtotal, &order.Tax,
		&order.GrandTotal, &customerJSON, &order.OrderDate, &order.EstimatedDelivery,
		&order.Status, &order.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(customerJSON), &order.CustomerInfo); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) loadItems(ctx context.Context, order *entity.Order) error {
	itemQuery := `SELECT id, product_id, name, unit_price, quantity, image, received FROM order_items WHERE order_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, itemQuery, order.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item  entity.OrderItem
			image sql.NullString
		)
		err := rows.Scan(&item.ID, &item.ProductID, &item.Name, &item.UnitPrice, &item.Quantity, &image, &item.Received)
		if err != nil {
			return err
		}
		item.Image = image.String
		order.Items = append(order.Items, item)
	}
	return rows.Err()
}

func (r *OrderRepository) GetOrderByID(ctx context.Context, id int) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = ?`
	order, err := r.scanOrder(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := r.loadItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrderByTrackingNumber looks an order up by its tracking number. The
// column is unique, so this is the query-by-field path, not a scan.
func (r *OrderRepository) GetOrderByTrackingNumber(ctx context.Context, trackingNumber string) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE tracking_number = ?`
	order, err := r.scanOrder(r.db.QueryRowContext(ctx, query, trackingNumber))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := r.loadItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// GetRecentOrders returns the newest orders first.
func (r *OrderRepository) GetRecentOrders(ctx context.Context, limit int) ([]*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*entity.Order
	for rows.Next() {
		order, err := r.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, order := range orders {
		if err := r.loadItems(ctx, order); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// SetItemReceived persists the received flag for one order item.
func (r *OrderRepository) SetItemReceived(ctx context.Context, orderID, itemID int, received bool) error {
	query := `UPDATE order_items SET received = ? WHERE id = ? AND order_id = ?`
	res, err := r.db.ExecContext(ctx, query, received, itemID, orderID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Distinguish "already in that state" from "no such item".
		var exists int
		check := `SELECT COUNT(*) FROM order_items WHERE id = ? AND order_id = ?`
		if err := r.db.QueryRowContext(ctx, check, itemID, orderID).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return ErrNotFound
		}
	}
	return nil
}

func (r *OrderRepository) UpdateOrderStatus(ctx context.Context, id int, status entity.OrderStatus) error {
	query := `UPDATE orders SET status = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}

	return nil
}
