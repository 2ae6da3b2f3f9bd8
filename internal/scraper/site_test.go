package scraper

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avasile/pricetracker/internal/fetch"
	"avasile/pricetracker/logger"
	apperrors "avasile/pricetracker/pkg/errors"
)

func testConfig() RetailerConfig {
	return RetailerConfig{
		Key:     "teststore",
		Name:    "TestStore",
		BaseURL: "https://shop.example",
		SearchURL: func(query string) string {
			return "https://shop.example/search?q=" + query
		},
		MaxResults:        10,
		Entry:             "div.card",
		NameLink:          []string{"a.title"},
		Price:             []string{"span.price"},
		PriceDecimal:      []string{"span.cents"},
		OldPrice:          []string{"span.old"},
		Stock:             []string{"span.stock"},
		PromoBadge:        []string{"span.badge"},
		Delivery:          []string{"span.delivery"},
		UnavailableTokens: []string{"indisponibil", "stoc epuizat"},
		InStockLabel:      "In stoc",
		UnavailableLabel:  "Indisponibil",
		DefaultDelivery:   "Livrare standard",
		PromoLabel:        percentLabel("Reducere"),
	}
}

func testScraper(cfg RetailerConfig, outcome fetch.Outcome) *siteScraper {
	return &siteScraper{
		cfg: cfg,
		fetchFn: func(ctx context.Context, url string) fetch.Outcome {
			return outcome
		},
		log: logger.ForRetailer(cfg.Key),
	}
}

func successOutcome(html string) fetch.Outcome {
	return fetch.Outcome{Status: fetch.StatusSuccess, Body: []byte(html), HTTPStatus: 200}
}

func TestSearchProductsExtractsEntries(t *testing.T) {
	html := `<html><body>
		<div class="card">
			<a class="title" href="/laptop-pro">Laptop Pro</a>
			<span class="price">2.499,99 lei</span>
			<span class="delivery">Livrare in 2 zile</span>
		</div>
		<div class="card">
			<a class="title" href="https://shop.example/mouse">Mouse</a>
			<span class="price">89 lei</span>
		</div>
	</body></html>`

	s := testScraper(testConfig(), successOutcome(html))
	records, err := s.SearchProducts(context.Background(), "laptop", "")
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "TestStore", first.Retailer)
	assert.True(t, decimal.RequireFromString("2499.99").Equal(first.Price))
	assert.Equal(t, "RON", first.Currency)
	assert.Equal(t, "https://shop.example/laptop-pro", first.URL)
	assert.True(t, first.Availability)
	assert.Equal(t, "In stoc", first.StockStatus)
	assert.Equal(t, "Livrare in 2 zile", first.DeliveryInfo)
	assert.False(t, first.IsPromotional)
	assert.Nil(t, first.OriginalPrice)

	second := records[1]
	assert.Equal(t, "https://shop.example/mouse", second.URL)
	assert.Equal(t, "Livrare standard", second.DeliveryInfo)
}

func TestSearchProductsSkipsMalformedEntries(t *testing.T) {
	// Three of the five cards are unusable: no link, no price element and an
	// unparseable price. The two valid ones still come through.
	html := `<html><body>
		<div class="card">
			<a class="title" href="/a">Valid A</a>
			<span class="price">100 lei</span>
		</div>
		<div class="card">
			<span class="price">100 lei</span>
		</div>
		<div class="card">
			<a class="title" href="/no-price">No price</a>
		</div>
		<div class="card">
			<a class="title" href="/bad-price">Bad price</a>
			<span class="price">pret indisponibil</span>
		</div>
		<div class="card">
			<a class="title" href="/b">Valid B</a>
			<span class="price">200 lei</span>
		</div>
	</body></html>`

	s := testScraper(testConfig(), successOutcome(html))
	records, err := s.SearchProducts(context.Background(), "widget", "")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "https://shop.example/a", records[0].URL)
	assert.Equal(t, "https://shop.example/b", records[1].URL)
}

func TestSearchProductsDeduplicatesByURL(t *testing.T) {
	// The same product listed twice keeps the first occurrence.
	html := `<html><body>
		<div class="card">
			<a class="title" href="/dup">First</a>
			<span class="price">100 lei</span>
		</div>
		<div class="card">
			<a class="title" href="/dup">Second</a>
			<span class="price">90 lei</span>
		</div>
	</body></html>`

	s := testScraper(testConfig(), successOutcome(html))
	records, err := s.SearchProducts(context.Background(), "dup", "")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, decimal.RequireFromString("100").Equal(records[0].Price))
}

func TestSearchProductsRespectsMaxResults(t *testing.T) {
	cfg := testConfig()
	cfg.MaxResults = 3

	html := "<html><body>"
	for _, p := range []string{"/p1", "/p2", "/p3", "/p4", "/p5"} {
		html += `<div class="card"><a class="title" href="` + p + `">P</a><span class="price">10 lei</span></div>`
	}
	html += "</body></html>"

	s := testScraper(cfg, successOutcome(html))
	records, err := s.SearchProducts(context.Background(), "p", "")
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestSearchProductsSplitPriceParts(t *testing.T) {
	cfg := testConfig()
	html := `<html><body>
		<div class="card">
			<a class="title" href="/tv">TV</a>
			<span class="price">1.299</span>
			<span class="cents">99</span>
		</div>
	</body></html>`

	s := testScraper(cfg, successOutcome(html))
	records, err := s.SearchProducts(context.Background(), "tv", "")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, decimal.RequireFromString("1299.99").Equal(records[0].Price))
}

func TestSearchProductsDataPriceFallback(t *testing.T) {
	cfg := testConfig()
	cfg.Price = []string{"span[data-price]"}
	html := `<html><body>
		<div class="card">
			<a class="title" href="/x">X</a>
			<span data-price="149.90"></span>
		</div>
	</body></html>`

	s := testScraper(cfg, successOutcome(html))
	records, err := s.SearchProducts(context.Background(), "x", "")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, decimal.RequireFromString("149.90").Equal(records[0].Price))
}

func TestSearchProductsPromotion(t *testing.T) {
	html := `<html><body>
		<div class="card">
			<a class="title" href="/deal">Deal</a>
			<span class="price">80 lei</span>
			<span class="old">100 lei</span>
		</div>
	</body></html>`

	s := testScraper(testConfig(), successOutcome(html))
	records, err := s.SearchProducts(context.Background(), "deal", "")
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.True(t, rec.IsPromotional)
	require.NotNil(t, rec.OriginalPrice)
	assert.True(t, decimal.RequireFromString("100").Equal(*rec.OriginalPrice))
	assert.Equal(t, "Reducere 20%", rec.PromotionText)
}

func TestSearchProductsOldPriceNotGreaterIsDropped(t *testing.T) {
	// A crossed-out price that is not a real discount is ignored.
	html := `<html><body>
		<div class="card">
			<a class="title" href="/fake">Fake deal</a>
			<span class="price">100 lei</span>
			<span class="old">100 lei</span>
		</div>
	</body></html>`

	s := testScraper(testConfig(), successOutcome(html))
	records, err := s.SearchProducts(context.Background(), "fake", "")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Nil(t, records[0].OriginalPrice)
	assert.False(t, records[0].IsPromotional)
}

func TestSearchProductsBadgeOnlyPromotion(t *testing.T) {
	// A promotion badge without a crossed-out price still marks the record.
	html := `<html><body>
		<div class="card">
			<a class="title" href="/promo">Promo</a>
			<span class="price">50 lei</span>
			<span class="badge">Black Friday</span>
		</div>
	</body></html>`

	s := testScraper(testConfig(), successOutcome(html))
	records, err := s.SearchProducts(context.Background(), "promo", "")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].IsPromotional)
	assert.Nil(t, records[0].OriginalPrice)
	assert.Equal(t, "Black Friday", records[0].PromotionText)
}

func TestSearchProductsStockTokens(t *testing.T) {
	html := `<html><body>
		<div class="card">
			<a class="title" href="/gone">Gone</a>
			<span class="price">10 lei</span>
			<span class="stock">Stoc EPUIZAT</span>
		</div>
		<div class="card">
			<a class="title" href="/here">Here</a>
			<span class="price">10 lei</span>
			<span class="stock">In stoc</span>
		</div>
	</body></html>`

	s := testScraper(testConfig(), successOutcome(html))
	records, err := s.SearchProducts(context.Background(), "stock", "")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.False(t, records[0].Availability)
	assert.Equal(t, "Indisponibil", records[0].StockStatus)
	assert.True(t, records[1].Availability)
	assert.Equal(t, "In stoc", records[1].StockStatus)
}

func TestSearchProductsFetchFailureYieldsEmpty(t *testing.T) {
	s := testScraper(testConfig(), fetch.Outcome{Status: fetch.StatusError, HTTPStatus: 500})
	records, err := s.SearchProducts(context.Background(), "anything", "")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSearchProductsRateLimitedYieldsEmpty(t *testing.T) {
	s := testScraper(testConfig(), fetch.Outcome{Status: fetch.StatusRateLimited, HTTPStatus: 429})
	records, err := s.SearchProducts(context.Background(), "anything", "")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSearchProductsUnavailableReturnsError(t *testing.T) {
	s := testScraper(testConfig(), fetch.Outcome{
		Status: fetch.StatusUnavailable,
		Err:    errors.New("dial tcp: connection refused"),
	})

	records, err := s.SearchProducts(context.Background(), "anything", "")
	require.Error(t, err)
	assert.Nil(t, records)
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnavailable))
}

func TestProductPrice(t *testing.T) {
	html := `<html><body>
		<h1>Laptop Pro</h1>
		<span class="price">2.499,99 lei</span>
		<span class="old">2.999,99 lei</span>
	</body></html>`

	s := testScraper(testConfig(), successOutcome(html))
	rec, err := s.ProductPrice(context.Background(), "https://shop.example/laptop-pro")
	require.NoError(t, err)
	require.NotNil(t, rec)

	assert.True(t, decimal.RequireFromString("2499.99").Equal(rec.Price))
	require.NotNil(t, rec.OriginalPrice)
	assert.True(t, decimal.RequireFromString("2999.99").Equal(*rec.OriginalPrice))
	assert.Equal(t, "https://shop.example/laptop-pro", rec.URL)
}

func TestProductPriceNoPrice(t *testing.T) {
	s := testScraper(testConfig(), successOutcome("<html><body><h1>Empty</h1></body></html>"))
	rec, err := s.ProductPrice(context.Background(), "https://shop.example/empty")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestSeparateLinkElement(t *testing.T) {
	cfg := testConfig()
	cfg.NameLink = []string{"h3.name"}
	cfg.Link = []string{"a[href]"}
	html := `<html><body>
		<div class="card">
			<a href="/wrapped"><h3 class="name">Wrapped</h3></a>
			<span class="price">30 lei</span>
		</div>
	</body></html>`

	s := testScraper(cfg, successOutcome(html))
	records, err := s.SearchProducts(context.Background(), "wrapped", "")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "https://shop.example/wrapped", records[0].URL)
}

func TestResolveURL(t *testing.T) {
	s := testScraper(testConfig(), fetch.Outcome{})

	assert.Equal(t, "https://shop.example/p/1", s.resolveURL("/p/1"))
	assert.Equal(t, "https://other.example/p", s.resolveURL("https://other.example/p"))
	assert.Equal(t, "", s.resolveURL(""))
	assert.Equal(t, "", s.resolveURL("   "))
}

func TestRegistryRejectsUnknownKey(t *testing.T) {
	_, err := Registry(nil, []string{"emag", "nosuchshop"})
	require.Error(t, err)
	assert.True(t, apperrors.IsUnknownRetailer(err))
}

func TestRegistryBuildsEnabledScrapers(t *testing.T) {
	scrapers, err := Registry(nil, []string{"emag", "altex"})
	require.NoError(t, err)
	require.Len(t, scrapers, 2)
	assert.Equal(t, "eMAG", scrapers["emag"].Name())
	assert.Equal(t, "Altex", scrapers["altex"].Name())
}

func TestAllRetailerKeys(t *testing.T) {
	assert.Equal(t, []string{"emag", "altex", "carrefour", "kaufland", "selgros"}, AllRetailerKeys())
}
