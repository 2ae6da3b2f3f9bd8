package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"avasile/pricetracker/internal/scraper"
)

// PriceRepo persists scraped price observations
type PriceRepo struct {
	pool *pgxpool.Pool
}

// SaveRecords stores a batch of scraped records for one product. All rows
// share a single scraped_at timestamp so one scrape run groups together.
func (r *PriceRepo) SaveRecords(ctx context.Context, productID uuid.UUID, records []scraper.PriceRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	scrapedAt := time.Now().UTC()
	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(`
			INSERT INTO prices (id, product_id, retailer, price, original_price, currency,
			                    availability, stock_status, url, is_promotional, promotion_text,
			                    delivery_info, scraped_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			uuid.New(), productID, rec.Retailer, rec.Price, rec.OriginalPrice, rec.Currency,
			rec.Availability, rec.StockStatus, rec.URL, rec.IsPromotional, rec.PromotionText,
			rec.DeliveryInfo, scrapedAt)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range records {
		if _, err := results.Exec(); err != nil {
			return 0, fmt.Errorf("failed to insert price batch: %w", err)
		}
	}
	return len(records), nil
}

// LatestPrices returns the most recent observation per retailer for a product
func (r *PriceRepo) LatestPrices(ctx context.Context, productID uuid.UUID) ([]Price, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT ON (retailer)
		       id, product_id, retailer, price, original_price, currency, availability,
		       stock_status, url, is_promotional, promotion_text, delivery_info, scraped_at
		FROM prices
		WHERE product_id = $1
		ORDER BY retailer, scraped_at DESC`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest prices: %w", err)
	}
	prices, err := pgx.CollectRows(rows, pgx.RowToStructByName[Price])
	if err != nil {
		return nil, fmt.Errorf("failed to scan prices: %w", err)
	}
	return prices, nil
}

// History returns all observations for a product within the last days,
// oldest first. retailer narrows the history to one retailer when non-empty.
func (r *PriceRepo) History(ctx context.Context, productID uuid.UUID, days int, retailer string) ([]Price, error) {
	since := time.Now().UTC().AddDate(0, 0, -days)

	rows, err := r.pool.Query(ctx, `
		SELECT id, product_id, retailer, price, original_price, currency, availability,
		       stock_status, url, is_promotional, promotion_text, delivery_info, scraped_at
		FROM prices
		WHERE product_id = $1
		  AND scraped_at >= $2
		  AND ($3 = '' OR retailer = $3)
		ORDER BY scraped_at ASC`, productID, since, retailer)
	if err != nil {
		return nil, fmt.Errorf("failed to query price history: %w", err)
	}
	prices, err := pgx.CollectRows(rows, pgx.RowToStructByName[Price])
	if err != nil {
		return nil, fmt.Errorf("failed to scan prices: %w", err)
	}
	return prices, nil
}

// PromotionalDeals returns the latest promotional observations, best first.
// Only the most recent observation per product and retailer counts.
func (r *PriceRepo) PromotionalDeals(ctx context.Context, limit int) ([]Price, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, product_id, retailer, price, original_price, currency, availability,
		       stock_status, url, is_promotional, promotion_text, delivery_info, scraped_at
		FROM (
			SELECT DISTINCT ON (product_id, retailer) *
			FROM prices
			ORDER BY product_id, retailer, scraped_at DESC
		) latest
		WHERE is_promotional AND availability
		ORDER BY scraped_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query deals: %w", err)
	}
	prices, err := pgx.CollectRows(rows, pgx.RowToStructByName[Price])
	if err != nil {
		return nil, fmt.Errorf("failed to scan prices: %w", err)
	}
	return prices, nil
}
