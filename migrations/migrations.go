package migrations

import (
	"database/sql"
	"time"
)

func execWithRetry(db *sql.DB, query string, retries int) error {
	_, err := db.Exec(query)
	if err != nil {
		// Retry creating the table
		for i := 0; i < retries; i++ {
			time.Sleep(1 * time.Second)
			_, err = db.Exec(query)
			if err == nil {
				break
			}
		}
	}
	return err
}

// AutoMigrateProducts creates the products table if it does not exist.
func AutoMigrateProducts(retries int, db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS products (
			id INT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			description TEXT,
			price DOUBLE NOT NULL,
			original_price DOUBLE,
			stock INT NOT NULL,
			category VARCHAR(100),
			seller VARCHAR(255),
			rating DOUBLE,
			review_count INT,
			image TEXT,
			created_at BIGINT
		);
	`
	return execWithRetry(db, query, retries)
}

// AutoMigrateOrders creates the orders table if it does not exist.
func AutoMigrateOrders(retries int, db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS orders (
			id INT AUTO_INCREMENT PRIMARY KEY,
			tracking_number VARCHAR(20) NOT NULL UNIQUE,
			subtotal DOUBLE NOT NULL,
			tax DOUBLE NOT NULL,
			grand_total DOUBLE NOT NULL,
			customer_info TEXT NOT NULL,
			order_date VARCHAR(10) NOT NULL,
			estimated_delivery VARCHAR(10) NOT NULL,
			status VARCHAR(20) NOT NULL,
			created_at BIGINT NOT NULL
		);
	`
	return execWithRetry(db, query, retries)
}

// AutoMigrateOrderItems creates the order_items table if it does not exist.
func AutoMigrateOrderItems(retries int, db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS order_items (
			id INT AUTO_INCREMENT PRIMARY KEY,
			order_id INT NOT NULL,
			product_id INT NOT NULL,
			name VARCHAR(255) NOT NULL,
			unit_price DOUBLE NOT NULL,
			quantity INT NOT NULL,
			image TEXT,
			received BOOLEAN NOT NULL DEFAULT FALSE,
			FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE
		);
	`
	return execWithRetry(db, query, retries)
}
