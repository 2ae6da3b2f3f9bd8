package publisher

import (
	"context"
	"time"

	"avasile/pricetracker/internal/scraper"
)

// Publisher pushes scraped price batches to downstream consumers
type Publisher interface {
	// PublishPrices publishes one scrape run for a product
	PublishPrices(ctx context.Context, productID string, records []scraper.PriceRecord) error

	// Close releases the underlying connection
	Close() error
}

// PriceEvent is the message written to the stream for one scrape run
type PriceEvent struct {
	ID        string                `json:"id"`
	ProductID string                `json:"product_id"`
	Count     int                   `json:"count"`
	Records   []scraper.PriceRecord `json:"records"`
	ScrapedAt time.Time             `json:"scraped_at"`
}
