package entity

import "math"

// TaxRate is the fixed sales tax applied to every order subtotal.
const TaxRate = 0.08

type OrderStatus string

const (
	StatusProcessing     OrderStatus = "Processing"
	StatusInTransit      OrderStatus = "In Transit"
	StatusOutForDelivery OrderStatus = "Out for Delivery"
	StatusDelivered      OrderStatus = "Delivered"
)

// OrderItem is a snapshot of a cart line at checkout time, decoupled from
// the live product record.
type OrderItem struct {
	ID        int     `json:"id"`
	ProductID int     `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
	Image     string  `json:"image"`
	Received  bool    `json:"received"`
}

// CustomerInfo carries the shipping and payment form fields supplied at
// checkout.
type CustomerInfo struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	ZipCode    string `json:"zip_code"`
	CardNumber string `json:"card_number"`
	ExpiryDate string `json:"expiry_date"`
	CVV        string `json:"cvv"`
	CardName   string `json:"card_name"`
}

type Order struct {
	ID                int          `json:"id"`
	Items             []OrderItem  `json:"items"`
	Subtotal          float64      `json:"subtotal"`
	Tax               float64      `json:"tax"`
	GrandTotal        float64      `json:"grand_total"`
	CustomerInfo      CustomerInfo `json:"customer_info"`
	TrackingNumber    string       `json:"tracking_number"`
	OrderDate         string       `json:"order_date"`         // YYYY-MM-DD
	EstimatedDelivery string       `json:"estimated_delivery"` // YYYY-MM-DD
	Status            OrderStatus  `json:"status"`
	CreatedAt         int64        `json:"created_at"` // unix millis
}

// AllReceived reports whether every item of the order has been marked
// received. An order without items is never considered received.
func (o *Order) AllReceived() bool {
	if len(o.Items) == 0 {
		return false
	}
	for _, item := range o.Items {
		if !item.Received {
			return false
		}
	}
	return true
}

// Round2 rounds a money amount to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Tax returns the rounded tax for a subtotal.
func Tax(subtotal float64) float64 {
	return Round2(subtotal * TaxRate)
}

/*
Mysql tables

CREATE TABLE orders (
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

CREATE TABLE order_items (
	id INT AUTO_INCREMENT PRIMARY KEY,
	order_id INT NOT NULL REFERENCES orders(id),
	product_id INT NOT NULL,
	name VARCHAR(255) NOT NULL,
	unit_price DOUBLE NOT NULL,
	quantity INT NOT NULL,
	image TEXT,
	received BOOLEAN NOT NULL DEFAULT FALSE
);
*/
