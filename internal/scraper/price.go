package scraper

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	currencyTokens = regexp.MustCompile(`(lei|ron|eur|€)`)
	numberPattern  = regexp.MustCompile(`\d+(\.\d+)?`)
)

// ParsePrice parses a price from Romanian text format into a canonical
// decimal amount. The Romanian format uses "." as the thousands separator
// and "," as the decimal separator.
//
//	"123,45 lei"   -> 123.45
//	"1.234,56 RON" -> 1234.56
//	"123 lei"      -> 123
//
// The second return value is false when no number could be extracted.
func ParsePrice(text string) (decimal.Decimal, bool) {
	t := strings.ToLower(text)
	t = currencyTokens.ReplaceAllString(t, "")
	t = strings.TrimSpace(t)

	// "1.234,56" -> "1234.56"
	t = strings.ReplaceAll(t, ".", "")
	t = strings.ReplaceAll(t, ",", ".")

	match := numberPattern.FindString(t)
	if match == "" {
		return decimal.Decimal{}, false
	}

	d, err := decimal.NewFromString(match)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// IsPromotional reports whether the current price undercuts the original one
func IsPromotional(original *decimal.Decimal, current decimal.Decimal) bool {
	if original == nil {
		return false
	}
	return current.LessThan(*original)
}

// cleanText collapses all whitespace runs into single spaces
func cleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
