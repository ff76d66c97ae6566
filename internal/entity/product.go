package entity

type Product struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	OriginalPrice float64 `json:"original_price,omitempty"`
	Stock         int     `json:"stock"`
	Category      string  `json:"category"`
	Seller        string  `json:"seller"`
	Rating        float64 `json:"rating"`
	ReviewCount   int     `json:"review_count"`
	Image         string  `json:"image"`
	CreatedAt     int64   `json:"created_at"`
}

/*
Schema MySQL for products table:
CREATE TABLE `products` (
  `id` int(11) NOT NULL AUTO_INCREMENT,
  `name` varchar(255) NOT NULL,
  `description` text NOT NULL,
  `price` double NOT NULL,
  `original_price` double,
  `stock` int(11) NOT NULL,
  `category` varchar(100),
  `seller` varchar(255),
  `rating` double,
  `review_count` int(11),
  `image` text,
  `created_at` bigint,
  PRIMARY KEY (`id`)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
*/
