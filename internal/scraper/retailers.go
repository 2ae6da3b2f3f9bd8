package scraper

import (
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"

	"avasile/pricetracker/internal/fetch"
	apperrors "avasile/pricetracker/pkg/errors"
)

// Registry builds the scraper for every enabled retailer key. An enabled key
// with no configuration is a deployment mistake and is reported as an error.
func Registry(client *fetch.Client, enabled []string) (map[string]Scraper, error) {
	configs := make(map[string]RetailerConfig, len(retailerConfigs))
	for _, cfg := range retailerConfigs {
		configs[cfg.Key] = cfg
	}

	scrapers := make(map[string]Scraper, len(enabled))
	for _, key := range enabled {
		cfg, ok := configs[key]
		if !ok {
			return nil, apperrors.NewUnknownRetailer(key)
		}
		scrapers[key] = New(cfg, client)
	}
	return scrapers, nil
}

// AllRetailerKeys returns the keys of every retailer a configuration exists
// for, in declaration order.
func AllRetailerKeys() []string {
	keys := make([]string, 0, len(retailerConfigs))
	for _, cfg := range retailerConfigs {
		keys = append(keys, cfg.Key)
	}
	return keys
}

var retailerConfigs = []RetailerConfig{
	{
		Key:     "emag",
		Name:    "eMAG",
		BaseURL: "https://www.emag.ro",
		SearchURL: func(query string) string {
			return "https://www.emag.ro/search/" + url.QueryEscape(query)
		},
		MaxResults: 20,
		Entry:      "div[class*='card-item'], div[class*='card-v2']",
		NameLink: []string{
			"a[class*='card-v2-title']",
			"a[class*='product-title']",
		},
		Price: []string{
			"p[class*='product-new-price']",
		},
		OldPrice: []string{
			"p[class*='product-old-price']",
		},
		Stock: []string{
			"p[class*='stock']",
			"p[class*='availability']",
		},
		PromoBadge: []string{
			"span[class*='badge-discount']",
			"span[class*='deal-badge']",
		},
		Delivery: []string{
			"span[class*='delivery']",
			"span[class*='shipping']",
		},
		UnavailableTokens: []string{"indisponibil", "stoc limitat"},
		InStockLabel:      "In stoc",
		UnavailableLabel:  "Stoc limitat",
		PromoLabel:        percentLabel("Reducere"),
	},
	{
		Key:     "altex",
		Name:    "Altex",
		BaseURL: "https://altex.ro",
		SearchURL: func(query string) string {
			return "https://altex.ro/cauta/?q=" + url.QueryEscape(query)
		},
		MaxResults: 15,
		Entry:      "li[class*='Products-item'], div[class*='product-card']",
		NameLink: []string{
			"a[class*='Product-name']",
			"a[class*='product-link']",
		},
		Price: []string{
			"span[class*='Price-int']",
			"span[class*='price-new']",
		},
		PriceDecimal: []string{
			"span[class*='Price-decimal']",
			"span[class*='price-cents']",
		},
		OldPrice: []string{
			"span[class*='Price-old']",
			"span[class*='old-price']",
		},
		Stock: []string{
			"span[class*='stock']",
			"div[class*='availability']",
		},
		PromoBadge: []string{
			"span[class*='Promotion']",
			"span[class*='discount-badge']",
		},
		Delivery: []string{
			"span[class*='delivery']",
		},
		UnavailableTokens: []string{"indisponibil"},
		InStockLabel:      "In stoc",
		UnavailableLabel:  "Indisponibil",
		PromoLabel:        savingsLabel("Economisesti"),
	},
	{
		Key:     "carrefour",
		Name:    "Carrefour",
		BaseURL: "https://carrefour.ro",
		SearchURL: func(query string) string {
			return "https://carrefour.ro/cautare?q=" + url.QueryEscape(query)
		},
		MaxResults: 15,
		Entry:      "div[class*='product-item'], article[class*='product']",
		NameLink: []string{
			"a[class*='product-name']",
			"a[class*='title']",
			"h3 a",
		},
		Price: []string{
			"span[class*='product-price']",
			"span[class*='price-sales']",
			"span[data-price]",
		},
		OldPrice: []string{
			"span[class*='price-standard']",
			"span[class*='old-price']",
		},
		PromoBadge: []string{
			"span[class*='promotion']",
			"span[class*='badge']",
		},
		Delivery: []string{
			"span[class*='delivery']",
		},
		// Carrefour hides out-of-stock items from search results entirely.
		InStockLabel:    "In stoc",
		DefaultDelivery: "Livrare disponibila",
		PromoLabel:      percentLabel("Discount"),
	},
	{
		Key:     "kaufland",
		Name:    "Kaufland",
		BaseURL: "https://www.kaufland.ro",
		SearchURL: func(query string) string {
			return "https://www.kaufland.ro/oferte/search.html?q=" + url.QueryEscape(query)
		},
		MaxResults: 15,
		Entry:      "div[class*='product-tile'], div[class*='offer-tile']",
		NameLink: []string{
			"h3[class*='product-title']",
			"h3[class*='offer-title']",
			"a[class*='title']",
		},
		// Kaufland tiles put the href on the wrapping anchor, not the title.
		Link: []string{"a[href]"},
		Price: []string{
			"span[class*='price__integer']",
			"span[class*='offer-price']",
			"div[class*='price']",
		},
		PriceDecimal: []string{
			"span[class*='price__decimal']",
		},
		OldPrice: []string{
			"span[class*='price__old']",
			"span[class*='original-price']",
		},
		PromoBadge: []string{
			"span[class*='badge']",
			"div[class*='promo']",
		},
		InStockLabel: "Disponibil",
		PromoLabel:   savingsLabel("Reducere"),
	},
	{
		Key:     "selgros",
		Name:    "Selgros",
		BaseURL: "https://www.selgros.ro",
		SearchURL: func(query string) string {
			return "https://www.selgros.ro/search?q=" + url.QueryEscape(query)
		},
		MaxResults: 15,
		Entry:      "div[class*='product-box'], div[class*='product-item']",
		NameLink: []string{
			"a[class*='product-title']",
			"a[class*='product-name']",
			"h3 a",
		},
		Price: []string{
			"span[class*='price-value']",
			"span[class*='product-price']",
			"div[class*='price']",
		},
		OldPrice: []string{
			"span[class*='old-price']",
			"span[class*='price-was']",
		},
		Stock: []string{
			"span[class*='stock']",
			"div[class*='availability']",
		},
		PromoBadge: []string{
			"div[class*='promo']",
			"span[class*='discount-badge']",
		},
		UnavailableTokens: []string{"indisponibil", "stoc epuizat"},
		InStockLabel:      "In stoc",
		UnavailableLabel:  "Stoc epuizat",
		PromoLabel:        percentLabel("Discount"),
	},
}

// percentLabel renders "<prefix> N%" from the discount percentage
func percentLabel(prefix string) func(original, current decimal.Decimal) string {
	return func(original, current decimal.Decimal) string {
		pct := original.Sub(current).
			Div(original).
			Mul(decimal.NewFromInt(100)).
			Round(0)
		return fmt.Sprintf("%s %s%%", prefix, pct)
	}
}

// savingsLabel renders "<prefix> N lei" from the absolute discount
func savingsLabel(prefix string) func(original, current decimal.Decimal) string {
	return func(original, current decimal.Decimal) string {
		return fmt.Sprintf("%s %s lei", prefix, original.Sub(current).Round(2))
	}
}
