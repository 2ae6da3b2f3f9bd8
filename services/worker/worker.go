package worker

import (
	"context"
	"time"

	"github.com/google/uuid"

	"avasile/pricetracker/internal/scraper"
	"avasile/pricetracker/internal/store"
	"avasile/pricetracker/logger"
	"avasile/pricetracker/services/publisher"
)

// pageSize bounds how many products one listing query loads
const pageSize = 100

// ProductSource lists the products to refresh
type ProductSource interface {
	List(ctx context.Context, category, brand string, activeOnly bool, limit, offset int) ([]store.Product, error)
}

// PriceSink stores scraped records
type PriceSink interface {
	SaveRecords(ctx context.Context, productID uuid.UUID, records []scraper.PriceRecord) (int, error)
}

// Searcher runs a search across retailers
type Searcher interface {
	SearchAllRetailers(ctx context.Context, productName, category string, retailers []string) (map[string][]scraper.PriceRecord, error)
}

// Worker periodically refreshes the prices of every tracked product
type Worker struct {
	products  ProductSource
	prices    PriceSink
	searcher  Searcher
	publisher publisher.Publisher
	interval  time.Duration
	log       *logger.Logger
}

// New creates a worker. pub may be nil; publishing is then skipped.
func New(products ProductSource, prices PriceSink, searcher Searcher, pub publisher.Publisher, interval time.Duration) *Worker {
	return &Worker{
		products:  products,
		prices:    prices,
		searcher:  searcher,
		publisher: pub,
		interval:  interval,
		log:       logger.ForComponent("worker"),
	}
}

// Start runs one refresh immediately and then on every tick until the
// context is cancelled
func (w *Worker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("Worker started")

	w.runOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopped")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

// runOnce refreshes every active product. A product whose refresh fails is
// logged and skipped; the run continues with the rest.
func (w *Worker) runOnce(ctx context.Context) {
	start := time.Now()
	refreshed := 0

	for offset := 0; ; offset += pageSize {
		products, err := w.products.List(ctx, "", "", true, pageSize, offset)
		if err != nil {
			w.log.Error().Err(err).Msg("Failed to list products")
			return
		}
		if len(products) == 0 {
			break
		}

		for _, product := range products {
			if ctx.Err() != nil {
				return
			}
			if err := w.refreshProduct(ctx, product); err != nil {
				w.log.Error().Err(err).
					Str("product_id", product.ID.String()).
					Str("product", product.Name).
					Msg("Failed to refresh product")
				continue
			}
			refreshed++
		}

		if len(products) < pageSize {
			break
		}
	}

	w.log.Info().
		Int("products", refreshed).
		Dur("elapsed", time.Since(start)).
		Msg("Refresh run finished")
}

// refreshProduct searches all retailers for one product and stores the results
func (w *Worker) refreshProduct(ctx context.Context, product store.Product) error {
	results, err := w.searcher.SearchAllRetailers(ctx, product.Name, product.Category, nil)
	if err != nil {
		return err
	}

	var records []scraper.PriceRecord
	for _, retailerRecords := range results {
		records = append(records, retailerRecords...)
	}
	if len(records) == 0 {
		w.log.Debug().Str("product", product.Name).Msg("No prices found")
		return nil
	}

	saved, err := w.prices.SaveRecords(ctx, product.ID, records)
	if err != nil {
		return err
	}

	if w.publisher != nil {
		if err := w.publisher.PublishPrices(ctx, product.ID.String(), records); err != nil {
			// Publishing is best-effort; the prices are already stored.
			w.log.Warn().Err(err).Str("product", product.Name).Msg("Failed to publish prices")
		}
	}

	w.log.Debug().
		Str("product", product.Name).
		Int("saved", saved).
		Msg("Product refreshed")
	return nil
}
