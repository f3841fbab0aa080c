package marketplace

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
)

// Attributes of the machine-readable metrics block on product pages
const (
	metricsSelector      = "div#cerberus-data-metrics"
	metricsAttrPrice     = "data-asin-price"
	metricsAttrCurrency  = "data-asin-currency-code"
	metricsAttrCatalogID = "data-asin"
)

// productMetrics holds the fields read from the metrics block
type productMetrics struct {
	Price    decimal.NullDecimal
	Currency string
	ASIN     string
}

// readMetrics reads price, currency and catalog id from the metrics block.
// Returns false when the page has no metrics block.
func readMetrics(doc *goquery.Document) (productMetrics, bool) {
	block := doc.Find(metricsSelector).First()
	if block.Length() == 0 {
		return productMetrics{}, false
	}

	return productMetrics{
		Price:    parsePrice(block.AttrOr(metricsAttrPrice, "")),
		Currency: strings.TrimSpace(block.AttrOr(metricsAttrCurrency, "")),
		ASIN:     strings.TrimSpace(block.AttrOr(metricsAttrCatalogID, "")),
	}, true
}

// parsePrice converts a price attribute into a decimal. Thousands separators
// and currency symbols are tolerated; anything else yields an absent price.
func parsePrice(raw string) decimal.NullDecimal {
	replacer := strings.NewReplacer("$", "", "€", "", "£", "", "¥", "", " ", "", "\u00a0", "")
	cleaned := replacer.Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return decimal.NullDecimal{}
	}

	switch {
	case strings.Contains(cleaned, ".") && strings.Contains(cleaned, ","):
		// 1,234.56 or 1.234,56: the last separator is the decimal one
		if strings.LastIndex(cleaned, ",") > strings.LastIndex(cleaned, ".") {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.ReplaceAll(cleaned, ",", ".")
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case strings.Contains(cleaned, ","):
		if strings.LastIndex(cleaned, ",") == len(cleaned)-3 {
			cleaned = strings.ReplaceAll(cleaned, ",", ".")
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	}

	price, err := decimal.NewFromString(cleaned)
	if err != nil || price.IsNegative() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(price)
}
