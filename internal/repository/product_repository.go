package repository

import (
	"context"
	"database/sql"
	"errors"

	"shoplike-service/internal/entity"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db}
}

// scanProduct reads a product row, coercing nullable numeric columns to zero
// so downstream arithmetic never sees invalid values.
func scanProduct(row interface{ Scan(...any) error }) (*entity.Product, error) {
	var (
		product       entity.Product
		price         sql.NullFloat64
		originalPrice sql.NullFloat64
		stock         sql.NullInt64
		category      sql.NullString
		seller        sql.NullString
		rating        sql.NullFloat64
		reviewCount   sql.NullInt64
		image         sql.NullString
		createdAt     sql.NullInt64
	)
	err := row.Scan(&product.ID, &product.Name, &product.Description, &price, &originalPrice,
		&stock, &category, &seller, &rating, &reviewCount, &image, &createdAt)
	if err != nil {
		return nil, err
	}
	product.Price = price.Float64
	product.OriginalPrice = originalPrice.Float64
	product.Stock = int(stock.Int64)
	product.Category = category.String
	product.Seller = seller.String
	product.Rating = rating.Float64
	product.ReviewCount = int(reviewCount.Int64)
	product.Image = image.String
	product.CreatedAt = createdAt.Int64
	return &product, nil
}

const productColumns = `id, name, description, price, original_price, stock, category, seller, rating, review_count, image, created_at`

func (r *ProductRepository) GetProductByID(ctx context.Context, id int) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ?`
	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (r *ProductRepository) GetProducts(ctx context.Context) ([]*entity.Product, error) {
	var products []*entity.Product

	query := `SELECT ` + productColumns + ` FROM products`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}

	return products, rows.Err()
}

func (r *ProductRepository) CreateProduct(ctx context.Context, product *entity.Product) (*entity.Product, error) {
	query := `INSERT INTO products (name, description, price, original_price, stock, category, seller, rating, review_count, image, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, product.Name, product.Description, product.Price,
		product.OriginalPrice, product.Stock, product.Category, product.Seller,
		product.Rating, product.ReviewCount, product.Image, product.CreatedAt)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	product.ID = int(id)
	return product, nil
}

func (r *ProductRepository) UpdateProduct(ctx context.Context, product *entity.Product) (*entity.Product, error) {
	query := `UPDATE products SET name = ?, description = ?, price = ?, original_price = ?, stock = ?, category = ?, seller = ?, rating = ?, review_count = ?, image = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, product.Name, product.Description, product.Price,
		product.OriginalPrice, product.Stock, product.Category, product.Seller,
		product.Rating, product.ReviewCount, product.Image, product.ID)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		if _, getErr := r.GetProductByID(ctx, product.ID); getErr != nil {
			return nil, getErr
		}
	}
	return product, nil
}

// UpdateProductStock writes only the stock column.
func (r *ProductRepository) UpdateProductStock(ctx context.Context, id int, stock int) error {
	query := `UPDATE products SET stock = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, stock, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		if _, getErr := r.GetProductByID(ctx, id); getErr != nil {
			return getErr
		}
	}
	return nil
}

func (r *ProductRepository) DeleteProduct(ctx context.Context, id int) error {
	query := `DELETE FROM products WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return nil
}
