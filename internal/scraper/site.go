package scraper

import (
	"bytes"
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"avasile/pricetracker/internal/fetch"
	"avasile/pricetracker/logger"
	apperrors "avasile/pricetracker/pkg/errors"
)

// RetailerConfig describes how to extract price records from one retailer.
// Retailer markup changes often, so every field is located through an
// ordered fallback chain of selectors; the first one that matches wins.
type RetailerConfig struct {
	Key       string // registry identifier, e.g. "emag"
	Name      string // display name stored on records, e.g. "eMAG"
	BaseURL   string // origin used to resolve relative product links
	SearchURL func(query string) string

	// MaxResults bounds how many candidate entries of a search results
	// page are considered.
	MaxResults int

	// Entry selects the product cards on a search results page
	Entry string

	// NameLink locates the product link (mandatory). Link overrides it for
	// retailers where the href lives on a different element than the name.
	NameLink []string
	Link     []string

	// Price locates the current price element; PriceDecimal the optional
	// split decimal part that is concatenated before parsing.
	Price        []string
	PriceDecimal []string

	OldPrice   []string
	Stock      []string
	PromoBadge []string
	Delivery   []string

	// UnavailableTokens are matched case-insensitively against the stock
	// text. The list is hand-curated per retailer; absence of a stock
	// element means the product is assumed available.
	UnavailableTokens []string

	InStockLabel     string
	UnavailableLabel string
	DefaultDelivery  string

	// PromoLabel renders the retailer's promotion wording from a detected
	// discount, e.g. "Reducere 15%".
	PromoLabel func(original, current decimal.Decimal) string
}

// siteScraper is the selector-table implementation of Scraper shared by all
// retailers. fetchFn is swapped out in tests.
type siteScraper struct {
	cfg     RetailerConfig
	fetchFn func(ctx context.Context, url string) fetch.Outcome
	log     *logger.Logger
}

// New creates a scraper for one retailer configuration
func New(cfg RetailerConfig, client *fetch.Client) Scraper {
	return &siteScraper{
		cfg:     cfg,
		fetchFn: client.Fetch,
		log:     logger.ForRetailer(cfg.Key),
	}
}

func (s *siteScraper) Key() string  { return s.cfg.Key }
func (s *siteScraper) Name() string { return s.cfg.Name }

// SearchProducts fetches the retailer's search results page and extracts
// every entry that parses. Entries repeating an already-seen product URL are
// collapsed to the first occurrence. The category hint is accepted for
// interface compatibility; no retailer search URL uses it yet.
func (s *siteScraper) SearchProducts(ctx context.Context, productName, category string) ([]PriceRecord, error) {
	searchURL := s.cfg.SearchURL(productName)

	doc, err := s.document(ctx, searchURL)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}

	seen := make(map[string]struct{})
	var records []PriceRecord

	entries := doc.Find(s.cfg.Entry)
	entries.EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if i >= s.cfg.MaxResults {
			return false
		}
		rec := s.extractEntry(sel)
		if rec == nil {
			// Malformed entry, skip it and keep going.
			return true
		}
		if _, dup := seen[rec.URL]; dup {
			return true
		}
		seen[rec.URL] = struct{}{}
		records = append(records, *rec)
		return true
	})

	s.log.Info().
		Str("query", productName).
		Int("entries", entries.Length()).
		Int("records", len(records)).
		Msg("Search finished")

	return records, nil
}

// ProductPrice fetches a single product detail page and extracts one record
func (s *siteScraper) ProductPrice(ctx context.Context, productURL string) (*PriceRecord, error) {
	doc, err := s.document(ctx, productURL)
	if err != nil || doc == nil {
		return nil, err
	}
	return s.extract(doc.Selection, productURL), nil
}

// document fetches and parses a page. A transport-level retailer outage is
// the only failure returned as an error; everything else is logged and
// yields (nil, nil) so the caller can produce an empty result.
func (s *siteScraper) document(ctx context.Context, pageURL string) (*goquery.Document, error) {
	out := s.fetchFn(ctx, pageURL)

	switch out.Status {
	case fetch.StatusSuccess:
	case fetch.StatusUnavailable:
		return nil, apperrors.NewUnavailable(s.cfg.Key, out.Err)
	case fetch.StatusRateLimited:
		s.log.Warn().Str("url", pageURL).Msg("Rate limited, returning no results")
		return nil, nil
	default:
		s.log.Warn().
			Str("url", pageURL).
			Str("status", out.Status.String()).
			Int("http_status", out.HTTPStatus).
			Err(out.Err).
			Msg("Fetch failed")
		return nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(out.Body))
	if err != nil {
		s.log.Error().Err(err).Str("url", pageURL).Msg("Failed to parse HTML")
		return nil, nil
	}
	return doc, nil
}

// extractEntry extracts one record from a search results card. The product
// link and a parseable price are mandatory; a card missing either is
// discarded.
func (s *siteScraper) extractEntry(sel *goquery.Selection) *PriceRecord {
	nameSel := firstMatch(sel, s.cfg.NameLink)
	if nameSel == nil {
		return nil
	}

	linkSel := nameSel
	if len(s.cfg.Link) > 0 {
		if linkSel = firstMatch(sel, s.cfg.Link); linkSel == nil {
			return nil
		}
	}

	href, _ := linkSel.Attr("href")
	productURL := s.resolveURL(href)
	if productURL == "" {
		return nil
	}

	return s.extract(sel, productURL)
}

// extract pulls the optional fields around a located price. root is either a
// search results card or a whole detail page document.
func (s *siteScraper) extract(root *goquery.Selection, productURL string) *PriceRecord {
	price, ok := s.locatePrice(root)
	if !ok || !price.IsPositive() {
		return nil
	}

	rec := PriceRecord{
		Retailer:     s.cfg.Name,
		Price:        price,
		Currency:     "RON",
		Availability: true,
		StockStatus:  s.cfg.InStockLabel,
		URL:          productURL,
		DeliveryInfo: s.cfg.DefaultDelivery,
	}

	// An old price counts only when it is a genuine discount.
	if oldSel := firstMatch(root, s.cfg.OldPrice); oldSel != nil {
		if original, ok := ParsePrice(oldSel.Text()); ok && original.GreaterThan(price) {
			rec.OriginalPrice = &original
			rec.IsPromotional = true
			if s.cfg.PromoLabel != nil {
				rec.PromotionText = s.cfg.PromoLabel(original, price)
			}
		}
	}

	// An explicit promotion badge marks the record promotional even
	// without a crossed-out price.
	if badgeSel := firstMatch(root, s.cfg.PromoBadge); badgeSel != nil {
		rec.IsPromotional = true
		if text := cleanText(badgeSel.Text()); text != "" && rec.PromotionText == "" {
			rec.PromotionText = text
		}
	}

	if stockSel := firstMatch(root, s.cfg.Stock); stockSel != nil {
		status := strings.ToLower(stockSel.Text())
		for _, token := range s.cfg.UnavailableTokens {
			if strings.Contains(status, token) {
				rec.Availability = false
				rec.StockStatus = s.cfg.UnavailableLabel
				break
			}
		}
	}

	if deliverySel := firstMatch(root, s.cfg.Delivery); deliverySel != nil {
		if text := cleanText(deliverySel.Text()); text != "" {
			rec.DeliveryInfo = text
		}
	}

	return &rec
}

// locatePrice finds and parses the current price, concatenating a split
// decimal part when the retailer renders integer and cents separately.
func (s *siteScraper) locatePrice(root *goquery.Selection) (decimal.Decimal, bool) {
	priceSel := firstMatch(root, s.cfg.Price)
	if priceSel == nil {
		return decimal.Decimal{}, false
	}

	text := strings.TrimSpace(priceSel.Text())
	if text == "" {
		// Some layouts carry the amount only in a data attribute, already in
		// machine format with a dot decimal separator.
		if v, ok := priceSel.Attr("data-price"); ok {
			d, err := decimal.NewFromString(strings.TrimSpace(v))
			if err != nil || !d.IsPositive() {
				return decimal.Decimal{}, false
			}
			return d, true
		}
	}

	if decSel := firstMatch(root, s.cfg.PriceDecimal); decSel != nil {
		text += "," + strings.TrimSpace(decSel.Text())
	}

	return ParsePrice(text)
}

// resolveURL resolves a product href against the retailer's origin
func (s *siteScraper) resolveURL(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	base, err := url.Parse(s.cfg.BaseURL)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

// firstMatch walks a fallback selector chain and returns the first element
// any selector matches, or nil when the chain is exhausted
func firstMatch(root *goquery.Selection, chain []string) *goquery.Selection {
	for _, selector := range chain {
		if m := root.Find(selector).First(); m.Length() > 0 {
			return m
		}
	}
	return nil
}
