package scraper

import (
	"context"
	"sort"
	"strings"
	"sync"

	"avasile/pricetracker/logger"
	apperrors "avasile/pricetracker/pkg/errors"
)

// Coordinator fans a search out to multiple retailer scrapers concurrently
// and gathers their results. A failing retailer never hides the results of
// the others.
type Coordinator struct {
	scrapers map[string]Scraper
	log      *logger.Logger
}

// NewCoordinator creates a coordinator over a scraper registry
func NewCoordinator(scrapers map[string]Scraper) *Coordinator {
	return &Coordinator{
		scrapers: scrapers,
		log:      logger.ForComponent("coordinator"),
	}
}

// SupportedRetailers returns the registered retailer keys, sorted
func (c *Coordinator) SupportedRetailers() []string {
	keys := make([]string, 0, len(c.scrapers))
	for key := range c.scrapers {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// SearchAllRetailers searches the given retailers concurrently and waits for
// all of them. The result holds exactly one entry per requested retailer; a
// retailer whose search failed maps to an empty slice. Retailer keys are
// validated up front, so an unknown key fails the whole call before any
// request is sent. An empty retailers list means all registered retailers.
func (c *Coordinator) SearchAllRetailers(ctx context.Context, productName, category string, retailers []string) (map[string][]PriceRecord, error) {
	if strings.TrimSpace(productName) == "" {
		return nil, apperrors.NewValidation("product name must not be empty")
	}

	if len(retailers) == 0 {
		retailers = c.SupportedRetailers()
	}

	keys := make([]string, 0, len(retailers))
	seen := make(map[string]struct{}, len(retailers))
	for _, key := range retailers {
		if _, ok := c.scrapers[key]; !ok {
			return nil, apperrors.NewUnknownRetailer(key)
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}

	results := make(map[string][]PriceRecord, len(keys))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, key := range keys {
		wg.Add(1)
		go func(key string, s Scraper) {
			defer wg.Done()

			records, err := s.SearchProducts(ctx, productName, category)
			if err != nil {
				c.log.Error().Err(err).Str("retailer", key).Msg("Retailer search failed")
				records = nil
			}
			if records == nil {
				records = []PriceRecord{}
			}

			mu.Lock()
			results[key] = records
			mu.Unlock()
		}(key, c.scrapers[key])
	}
	wg.Wait()

	total := 0
	for _, records := range results {
		total += len(records)
	}
	c.log.Info().
		Str("query", productName).
		Int("retailers", len(keys)).
		Int("records", total).
		Msg("Search across retailers finished")

	return results, nil
}

// ProductPrice fetches the current price of one product page on one retailer
func (c *Coordinator) ProductPrice(ctx context.Context, retailer, productURL string) (*PriceRecord, error) {
	s, ok := c.scrapers[retailer]
	if !ok {
		return nil, apperrors.NewUnknownRetailer(retailer)
	}
	return s.ProductPrice(ctx, productURL)
}
