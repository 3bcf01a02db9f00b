package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/rohanjain3/AGRISMART-12/internal/entity"
	"github.com/rohanjain3/AGRISMART-12/internal/repository"
)

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new ProductRepository backed by Postgres.
func NewProductRepository(db *sql.DB) repository.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) FindAll(ctx context.Context) ([]entity.Product, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, category, price_per_kg, quantity_available, original_quantity, description,
		       image_names, image_urls, status, expiry_date, farmer_id, rating, reviews_count, reviews
		FROM products ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []entity.Product
	for rows.Next() {
		var (
			p      entity.Product
			rating sql.NullFloat64
		)
		err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.PricePerKg, &p.QuantityAvailable, &p.OriginalQuantity, &p.Description,
			pq.Array(&p.ImageNames), pq.Array(&p.ImageURLs), &p.Status, &p.ExpiryDate, &p.FarmerID, &rating, &p.ReviewsCount, pq.Array(&p.Reviews))
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		if rating.Valid {
			p.Rating = &rating.Float64
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product rows: %w", err)
	}
	return products, nil
}

// Seed inserts products into an empty table. On a table that is already
// populated only the expiry dates are taken from products, so sample stock
// does not age past expiry across restarts.
func (r *productRepository) Seed(ctx context.Context, products []entity.Product) error {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if count > 0 {
		if err := refreshExpiry(ctx, tx, products); err != nil {
			return err
		}
		return tx.Commit()
	}

	for i, p := range products {
		var rating sql.NullFloat64
		if p.Rating != nil {
			rating = sql.NullFloat64{Float64: *p.Rating, Valid: true}
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO products (id, position, name, category, price_per_kg, quantity_available, original_quantity, description,
			                      image_names, image_urls, status, expiry_date, farmer_id, rating, reviews_count, reviews)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
			p.ID, i, p.Name, p.Category, p.PricePerKg, p.QuantityAvailable, p.OriginalQuantity, p.Description,
			pq.Array(p.ImageNames), pq.Array(p.ImageURLs), p.Status, p.ExpiryDate, p.FarmerID, rating, p.ReviewsCount, pq.Array(p.Reviews),
		)
		if err != nil {
			return fmt.Errorf("failed to seed product %s: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

func refreshExpiry(ctx context.Context, tx *sql.Tx, products []entity.Product) error {
	refreshed := 0
	for _, p := range products {
		res, err := tx.ExecContext(ctx, "UPDATE products SET expiry_date = $1 WHERE id = $2", p.ExpiryDate, p.ID)
		if err != nil {
			return fmt.Errorf("failed to refresh expiry of product %s: %w", p.ID, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			refreshed += int(n)
		}
	}
	slog.Info("Catalog already seeded, expiry dates refreshed", "products", refreshed)
	return nil
}

func (r *productRepository) UpdateQuantity(ctx context.Context, productID uuid.UUID, quantity float64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE products SET quantity_available = $1 WHERE id = $2 AND $1 >= 0 AND $1 <= original_quantity",
		quantity, productID,
	)
	if err != nil {
		return fmt.Errorf("failed to update product quantity: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update product quantity: %w", err)
	}
	if n == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)", productID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to look up product: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: %s", entity.ErrProductNotFound, productID)
		}
		return fmt.Errorf("%w: %v", entity.ErrInvalidQuantity, quantity)
	}
	return nil
}
