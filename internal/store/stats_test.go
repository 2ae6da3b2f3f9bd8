package store

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(retailer, amount string, available bool, scrapedAt time.Time) Price {
	return Price{
		ID:           uuid.New(),
		Retailer:     retailer,
		Price:        decimal.RequireFromString(amount),
		Currency:     "RON",
		Availability: available,
		ScrapedAt:    scrapedAt,
	}
}

func TestBuildComparison(t *testing.T) {
	productID := uuid.New()
	now := time.Now()

	prices := []Price{
		price("eMAG", "100", true, now),
		price("Altex", "80", false, now),
		price("Carrefour", "120", true, now),
	}

	cmp := BuildComparison(productID, prices)
	require.NotNil(t, cmp)

	assert.Equal(t, productID, cmp.ProductID)
	assert.Equal(t, 3, cmp.RetailerCount)
	assert.Equal(t, "Altex", cmp.LowestPrice.Retailer)
	assert.Equal(t, "Carrefour", cmp.HighestPrice.Retailer)
	assert.True(t, decimal.RequireFromString("100").Equal(cmp.AveragePrice))
	assert.True(t, decimal.RequireFromString("40").Equal(cmp.PriceRange))

	// The best deal is the cheapest available offer, not the absolute lowest.
	require.NotNil(t, cmp.BestDeal)
	assert.Equal(t, "eMAG", cmp.BestDeal.Retailer)

	// (120 - 80) / 120 * 100
	require.NotNil(t, cmp.PotentialSavings)
	assert.True(t, decimal.RequireFromString("33.33").Equal(*cmp.PotentialSavings))
}

func TestBuildComparisonSingleRetailer(t *testing.T) {
	productID := uuid.New()
	cmp := BuildComparison(productID, []Price{price("eMAG", "100", true, time.Now())})
	require.NotNil(t, cmp)

	assert.Equal(t, 1, cmp.RetailerCount)
	assert.True(t, cmp.PriceRange.IsZero())
	assert.Nil(t, cmp.PotentialSavings)
}

func TestBuildComparisonEmpty(t *testing.T) {
	assert.Nil(t, BuildComparison(uuid.New(), nil))
}

func TestBuildHistorySummaryTrend(t *testing.T) {
	productID := uuid.New()
	base := time.Now().Add(-4 * 24 * time.Hour)
	series := func(amounts ...string) []Price {
		prices := make([]Price, 0, len(amounts))
		for i, amount := range amounts {
			prices = append(prices, price("eMAG", amount, true, base.Add(time.Duration(i)*24*time.Hour)))
		}
		return prices
	}

	tests := []struct {
		name    string
		amounts []string
		want    string
	}{
		{"increasing", []string{"100", "100", "120", "120"}, TrendIncreasing},
		{"decreasing", []string{"120", "120", "100", "100"}, TrendDecreasing},
		{"stable", []string{"100", "101", "99", "100"}, TrendStable},
		{"single observation", []string{"100"}, TrendStable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary := BuildHistorySummary(productID, 30, series(tt.amounts...))
			require.NotNil(t, summary)
			assert.Equal(t, tt.want, summary.Trend)
		})
	}
}

func TestBuildHistorySummaryStats(t *testing.T) {
	productID := uuid.New()
	base := time.Now().Add(-48 * time.Hour)

	// Deliberately unsorted input; the summary sorts chronologically.
	prices := []Price{
		price("eMAG", "90", true, base.Add(24*time.Hour)),
		price("eMAG", "110", true, base),
		price("eMAG", "100", true, base.Add(48*time.Hour)),
	}

	summary := BuildHistorySummary(productID, 7, prices)
	require.NotNil(t, summary)

	assert.Equal(t, 7, summary.Days)
	assert.Equal(t, 3, summary.Observations)
	assert.True(t, decimal.RequireFromString("100").Equal(summary.AveragePrice))
	assert.True(t, decimal.RequireFromString("90").Equal(summary.MinPrice))
	assert.True(t, decimal.RequireFromString("110").Equal(summary.MaxPrice))
	require.Len(t, summary.Prices, 3)
	assert.True(t, decimal.RequireFromString("110").Equal(summary.Prices[0].Price))
}

func TestBuildHistorySummaryEmpty(t *testing.T) {
	assert.Nil(t, BuildHistorySummary(uuid.New(), 30, nil))
}
