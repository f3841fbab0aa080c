package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestProduct_IsEmpty(t *testing.T) {
	if !(Product{}).IsEmpty() {
		t.Error("zero Product should be empty")
	}
	if (Product{Hostname: "https://www.amazon.com"}).IsEmpty() {
		t.Error("Product with hostname should not be empty")
	}
	if (Product{Price: decimal.NewNullDecimal(decimal.Zero)}).IsEmpty() {
		t.Error("Product with a zero price should not be empty")
	}
}

func TestProduct_Comparable(t *testing.T) {
	priced := decimal.NewNullDecimal(decimal.RequireFromString("9.99"))

	tests := []struct {
		name    string
		product Product
		want    bool
	}{
		{"price and currency", Product{Price: priced, Currency: "USD"}, true},
		{"missing currency", Product{Price: priced}, false},
		{"missing price", Product{Currency: "USD"}, false},
		{"empty", Product{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.product.Comparable(); got != tt.want {
				t.Errorf("Comparable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSearchModeFor(t *testing.T) {
	tests := []struct {
		name   string
		source Product
		want   SearchMode
	}{
		{"reference wins", Product{Ref: "XJ-500", ASIN: "B001", Name: "Drill"}, SearchByReference},
		{"catalog id without reference", Product{ASIN: "B001", Name: "Drill"}, SearchByCatalogID},
		{"name only", Product{Name: "Drill"}, SearchByName},
		{"nothing falls back to name", Product{}, SearchByName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SearchModeFor(tt.source); got != tt.want {
				t.Errorf("SearchModeFor() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSearchMode_String(t *testing.T) {
	for mode, want := range map[SearchMode]string{
		SearchByReference: "reference",
		SearchByCatalogID: "catalog_id",
		SearchByName:      "name",
		SearchMode(42):    "unknown",
	} {
		if got := mode.String(); got != want {
			t.Errorf("SearchMode(%d).String() = %q, want %q", int(mode), got, want)
		}
	}
}

func TestProduct_JSON(t *testing.T) {
	p := Product{
		Hostname:    "https://www.amazon.de",
		Name:        "Akkuschrauber",
		ASIN:        "B001",
		Price:       decimal.NewNullDecimal(decimal.RequireFromString("49.90")),
		Currency:    "EUR",
		SourcePrice: decimal.NullDecimal{},
	}

	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if fields["price"] != "49.9" {
		t.Errorf("price = %v, want \"49.9\"", fields["price"])
	}
	if fields["sourcePrice"] != nil {
		t.Errorf("sourcePrice = %v, want null", fields["sourcePrice"])
	}
	if _, ok := fields["ref"]; ok {
		t.Error("empty ref should be omitted")
	}
}
