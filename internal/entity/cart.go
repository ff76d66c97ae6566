package entity

import "math"

// CartItem is a line in a cart. UnitPrice is snapshotted from the product at
// add-time; the product may change or disappear independently afterwards.
type CartItem struct {
	ProductID int     `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
	Image     string  `json:"image"`
}

// Cart is the in-progress, unpersisted selection of products for one session.
type Cart struct {
	ID    string     `json:"id"`
	Items []CartItem `json:"items"`
}

// AddItem inserts a new line for the product or, if a line with the same
// product id exists, increments its quantity and refreshes the unit price
// from the supplied snapshot. Products without an id are rejected; the
// caller decides whether to log. Returns false when nothing was added.
func (c *Cart) AddItem(product *Product, quantity int) bool {
	if product == nil || product.ID == 0 {
		return false
	}
	if quantity < 1 {
		quantity = 1
	}
	for i := range c.Items {
		if c.Items[i].ProductID == product.ID {
			c.Items[i].Quantity += quantity
			c.Items[i].UnitPrice = product.Price
			return true
		}
	}
	c.Items = append(c.Items, CartItem{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: product.Price,
		Quantity:  quantity,
		Image:     product.Image,
	})
	return true
}

// RemoveItem deletes the line for the product id. No-op if absent.
func (c *Cart) RemoveItem(productID int) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return
		}
	}
}

// SetQuantity overwrites the quantity for the product id. A quantity of zero
// or less removes the line.
func (c *Cart) SetQuantity(productID int, quantity int) {
	if quantity <= 0 {
		c.RemoveItem(productID)
		return
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = quantity
			return
		}
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Items = nil
}

// TotalItems is the sum of line quantities.
func (c *Cart) TotalItems() int {
	total := 0
	for _, item := range c.Items {
		if item.Quantity > 0 {
			total += item.Quantity
		}
	}
	return total
}

// Subtotal is the sum of unit price times quantity across lines. Lines with
// an unusable price or quantity contribute zero.
func (c *Cart) Subtotal() float64 {
	total := 0.0
	for _, item := range c.Items {
		price := item.UnitPrice
		if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
			price = 0
		}
		quantity := item.Quantity
		if quantity < 0 {
			quantity = 0
		}
		total += price * float64(quantity)
	}
	return total
}
