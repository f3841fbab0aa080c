package domain

import "github.com/shopspring/decimal"

// Product represents the product data extracted from a marketplace page
type Product struct {
	Hostname    string              `json:"hostname"`
	Name        string              `json:"name"`
	Ref         string              `json:"ref,omitempty"`
	ASIN        string              `json:"asin,omitempty"`
	Price       decimal.NullDecimal `json:"price"`
	Currency    string              `json:"currency,omitempty"`
	SourcePrice decimal.NullDecimal `json:"sourcePrice"`
}

// IsEmpty reports whether no field at all could be extracted
func (p Product) IsEmpty() bool {
	return p.Hostname == "" && p.Name == "" && p.Ref == "" && p.ASIN == "" &&
		!p.Price.Valid && p.Currency == "" && !p.SourcePrice.Valid
}

// Comparable reports whether the product carries both a price and a currency.
// Products that are not comparable never win a price comparison.
func (p Product) Comparable() bool {
	return p.Price.Valid && p.Currency != ""
}

// SearchMode selects the field that seeds the marketplace search and the
// primary key used when matching candidates.
type SearchMode int

const (
	SearchByReference SearchMode = iota
	SearchByCatalogID
	SearchByName
)

func (m SearchMode) String() string {
	switch m {
	case SearchByReference:
		return "reference"
	case SearchByCatalogID:
		return "catalog_id"
	case SearchByName:
		return "name"
	default:
		return "unknown"
	}
}

// SearchModeFor picks the search mode for a source product: reference first,
// then catalog id, then name.
func SearchModeFor(source Product) SearchMode {
	switch {
	case source.Ref != "":
		return SearchByReference
	case source.ASIN != "":
		return SearchByCatalogID
	default:
		return SearchByName
	}
}

// FindRequest represents a cheaper-product lookup request
type FindRequest struct {
	URL        string `json:"url"`
	SessionKey string `json:"sid"`
}

// FindResult is the successful answer to a FindRequest
type FindResult struct {
	Product Product `json:"info"`
	URL     string  `json:"url"`
}
