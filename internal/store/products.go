package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const productColumns = `id, name, description, category, brand, sku, image_url,
	target_price, is_active, created_at, updated_at`

// ProductRepo persists tracked products
type ProductRepo struct {
	pool *pgxpool.Pool
}

// Create inserts a product, assigning its ID and timestamps
func (r *ProductRepo) Create(ctx context.Context, p *Product) error {
	p.ID = uuid.New()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := r.pool.Exec(ctx, `
		INSERT INTO products (id, name, description, category, brand, sku, image_url,
		                      target_price, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.ID, p.Name, p.Description, p.Category, p.Brand, p.SKU, p.ImageURL,
		p.TargetPrice, p.IsActive, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

// Get loads one product by ID
func (r *ProductRepo) Get(ctx context.Context, id uuid.UUID) (*Product, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+productColumns+`
		FROM products WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	p, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[Product])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}
	return &p, nil
}

// List returns products with optional category and brand filters, newest
// first. With activeOnly set, deactivated products are excluded.
func (r *ProductRepo) List(ctx context.Context, category, brand string, activeOnly bool, limit, offset int) ([]Product, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE ($1 = '' OR category = $1)
		  AND ($2 = '' OR brand = $2)
		  AND (NOT $3 OR is_active)
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5`,
		category, brand, activeOnly, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	products, err := pgx.CollectRows(rows, pgx.RowToStructByName[Product])
	if err != nil {
		return nil, fmt.Errorf("failed to scan products: %w", err)
	}
	return products, nil
}

// Search matches products by name, description or brand, case-insensitively
func (r *ProductRepo) Search(ctx context.Context, query string, limit int) ([]Product, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE name ILIKE '%' || $1 || '%'
		   OR description ILIKE '%' || $1 || '%'
		   OR brand ILIKE '%' || $1 || '%'
		ORDER BY created_at DESC
		LIMIT $2`,
		query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	products, err := pgx.CollectRows(rows, pgx.RowToStructByName[Product])
	if err != nil {
		return nil, fmt.Errorf("failed to scan products: %w", err)
	}
	return products, nil
}

// Update rewrites the mutable fields of a product
func (r *ProductRepo) Update(ctx context.Context, p *Product) error {
	p.UpdatedAt = time.Now().UTC()

	tag, err := r.pool.Exec(ctx, `
		UPDATE products
		SET name = $2, description = $3, category = $4, brand = $5, sku = $6,
		    image_url = $7, target_price = $8, is_active = $9, updated_at = $10
		WHERE id = $1`,
		p.ID, p.Name, p.Description, p.Category, p.Brand, p.SKU,
		p.ImageURL, p.TargetPrice, p.IsActive, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a product and, through cascade, its prices and alerts
func (r *ProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
