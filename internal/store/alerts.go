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

// AlertRepo persists price-drop alert subscriptions
type AlertRepo struct {
	pool *pgxpool.Pool
}

// Create inserts an alert, assigning its ID and creation time
func (r *AlertRepo) Create(ctx context.Context, a *Alert) error {
	a.ID = uuid.New()
	a.Active = true
	a.CreatedAt = time.Now().UTC()

	_, err := r.pool.Exec(ctx, `
		INSERT INTO alerts (id, product_id, email, target_price, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.ProductID, a.Email, a.TargetPrice, a.Active, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}
	return nil
}

// Get loads one alert by ID
func (r *AlertRepo) Get(ctx context.Context, id uuid.UUID) (*Alert, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, product_id, email, target_price, active, created_at, triggered_at
		FROM alerts WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query alert: %w", err)
	}

	a, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[Alert])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan alert: %w", err)
	}
	return &a, nil
}

// ListByProduct returns all alerts registered for a product
func (r *AlertRepo) ListByProduct(ctx context.Context, productID uuid.UUID) ([]Alert, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, product_id, email, target_price, active, created_at, triggered_at
		FROM alerts WHERE product_id = $1
		ORDER BY created_at DESC`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	alerts, err := pgx.CollectRows(rows, pgx.RowToStructByName[Alert])
	if err != nil {
		return nil, fmt.Errorf("failed to scan alerts: %w", err)
	}
	return alerts, nil
}

// ListByEmail returns all alerts registered by one email address
func (r *AlertRepo) ListByEmail(ctx context.Context, email string) ([]Alert, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, product_id, email, target_price, active, created_at, triggered_at
		FROM alerts WHERE email = $1
		ORDER BY created_at DESC`, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	alerts, err := pgx.CollectRows(rows, pgx.RowToStructByName[Alert])
	if err != nil {
		return nil, fmt.Errorf("failed to scan alerts: %w", err)
	}
	return alerts, nil
}

// Update rewrites an alert's target price and active flag
func (r *AlertRepo) Update(ctx context.Context, a *Alert) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE alerts SET email = $2, target_price = $3, active = $4 WHERE id = $1`,
		a.ID, a.Email, a.TargetPrice, a.Active)
	if err != nil {
		return fmt.Errorf("failed to update alert: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Deactivate switches an alert off without deleting its history
func (r *AlertRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `UPDATE alerts SET active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate alert: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an alert
func (r *AlertRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM alerts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete alert: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
