package store

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Comparison summarizes the latest prices of one product across retailers
type Comparison struct {
	ProductID        uuid.UUID        `json:"product_id"`
	RetailerCount    int              `json:"retailer_count"`
	LowestPrice      *Price           `json:"lowest_price,omitempty"`
	HighestPrice     *Price           `json:"highest_price,omitempty"`
	AveragePrice     decimal.Decimal  `json:"average_price"`
	PriceRange       decimal.Decimal  `json:"price_range"`
	PotentialSavings *decimal.Decimal `json:"potential_savings_percent,omitempty"`
	BestDeal         *Price           `json:"best_deal,omitempty"`
}

// BuildComparison computes comparison statistics from the latest observation
// per retailer. It returns nil when there is nothing to compare. The best
// deal is the cheapest available offer; the lowest price may belong to an
// out-of-stock offer.
func BuildComparison(productID uuid.UUID, prices []Price) *Comparison {
	if len(prices) == 0 {
		return nil
	}

	cmp := &Comparison{
		ProductID:     productID,
		RetailerCount: len(prices),
	}

	sum := decimal.Zero
	for i := range prices {
		p := &prices[i]
		sum = sum.Add(p.Price)

		if cmp.LowestPrice == nil || p.Price.LessThan(cmp.LowestPrice.Price) {
			cmp.LowestPrice = p
		}
		if cmp.HighestPrice == nil || p.Price.GreaterThan(cmp.HighestPrice.Price) {
			cmp.HighestPrice = p
		}
		if p.Availability && (cmp.BestDeal == nil || p.Price.LessThan(cmp.BestDeal.Price)) {
			cmp.BestDeal = p
		}
	}

	cmp.AveragePrice = sum.Div(decimal.NewFromInt(int64(len(prices)))).Round(2)
	cmp.PriceRange = cmp.HighestPrice.Price.Sub(cmp.LowestPrice.Price)

	if cmp.HighestPrice.Price.IsPositive() && cmp.PriceRange.IsPositive() {
		savings := cmp.PriceRange.
			Div(cmp.HighestPrice.Price).
			Mul(decimal.NewFromInt(100)).
			Round(2)
		cmp.PotentialSavings = &savings
	}

	return cmp
}

// Trend values produced by BuildHistorySummary
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// HistorySummary summarizes a product's price history over a window
type HistorySummary struct {
	ProductID    uuid.UUID       `json:"product_id"`
	Days         int             `json:"days"`
	Observations int             `json:"observations"`
	AveragePrice decimal.Decimal `json:"average_price"`
	MinPrice     decimal.Decimal `json:"min_price"`
	MaxPrice     decimal.Decimal `json:"max_price"`
	Trend        string          `json:"trend"`
	Prices       []Price         `json:"prices"`
}

// trendThreshold is the relative change below which the trend counts as stable
var trendThreshold = decimal.RequireFromString("0.05")

// BuildHistorySummary computes history statistics from a set of observations.
// The trend compares the average of the newer half against the older half; a
// difference within five percent counts as stable. It returns nil when there
// are no observations.
func BuildHistorySummary(productID uuid.UUID, days int, prices []Price) *HistorySummary {
	if len(prices) == 0 {
		return nil
	}

	sorted := make([]Price, len(prices))
	copy(sorted, prices)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ScrapedAt.Before(sorted[j].ScrapedAt)
	})

	summary := &HistorySummary{
		ProductID:    productID,
		Days:         days,
		Observations: len(sorted),
		MinPrice:     sorted[0].Price,
		MaxPrice:     sorted[0].Price,
		Trend:        TrendStable,
		Prices:       sorted,
	}

	sum := decimal.Zero
	for _, p := range sorted {
		sum = sum.Add(p.Price)
		if p.Price.LessThan(summary.MinPrice) {
			summary.MinPrice = p.Price
		}
		if p.Price.GreaterThan(summary.MaxPrice) {
			summary.MaxPrice = p.Price
		}
	}
	summary.AveragePrice = sum.Div(decimal.NewFromInt(int64(len(sorted)))).Round(2)

	if len(sorted) >= 2 {
		mid := len(sorted) / 2
		older := averagePrice(sorted[:mid])
		newer := averagePrice(sorted[mid:])
		if older.IsPositive() {
			change := newer.Sub(older).Div(older)
			switch {
			case change.GreaterThan(trendThreshold):
				summary.Trend = TrendIncreasing
			case change.LessThan(trendThreshold.Neg()):
				summary.Trend = TrendDecreasing
			}
		}
	}

	return summary
}

func averagePrice(prices []Price) decimal.Decimal {
	if len(prices) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, p := range prices {
		sum = sum.Add(p.Price)
	}
	return sum.Div(decimal.NewFromInt(int64(len(prices))))
}
