package scraper

import (
	"context"

	"github.com/shopspring/decimal"
)

// PriceRecord is a single scraped price, normalized to a canonical amount.
// Price is always positive; OriginalPrice, when present, is strictly greater
// than Price.
type PriceRecord struct {
	Retailer      string           `json:"retailer"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	Currency      string           `json:"currency"`
	Availability  bool             `json:"availability"`
	StockStatus   string           `json:"stock_status,omitempty"`
	URL           string           `json:"url"`
	IsPromotional bool             `json:"is_promotional"`
	PromotionText string           `json:"promotion_text,omitempty"`
	DeliveryInfo  string           `json:"delivery_info,omitempty"`
}

// Scraper is the contract every retailer scraper implements
type Scraper interface {
	// SearchProducts fetches the retailer's search results page for the
	// query and returns every entry that parsed successfully. A failed
	// fetch or an unparseable page yields an empty slice, not an error;
	// only a transport-level retailer outage is returned as an error.
	SearchProducts(ctx context.Context, productName, category string) ([]PriceRecord, error)

	// ProductPrice fetches a single product detail page. It returns nil
	// when the page cannot be fetched or carries no parseable price.
	ProductPrice(ctx context.Context, productURL string) (*PriceRecord, error)

	// Key returns the registry identifier, e.g. "emag"
	Key() string

	// Name returns the display name, e.g. "eMAG"
	Name() string
}
