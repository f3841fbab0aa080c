package marketplace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBaseURL(t *testing.T) {
	tests := []struct {
		rawURL string
		want   string
	}{
		{"https://www.amazon.com/dp/B0001?th=1", "https://www.amazon.com"},
		{"http://www.amazon.co.uk/gp/product/B0001/ref=x", "http://www.amazon.co.uk"},
		{"https://www.amazon.de:8443/dp/B1", "https://www.amazon.de:8443"},
		{"not a url", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.rawURL, func(t *testing.T) {
			assert.Equal(t, tt.want, BaseURL(tt.rawURL))
		})
	}
}

func TestSearchURL(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		want   string
	}{
		{name: "reference tokens are joined", tokens: []string{"XJ", "500", "PRO"}, want: "https://www.amazon.com/s?ref=nb_sb_noss_1&k=XJ+500+PRO"},
		{name: "catalog id", tokens: []string{"B000XJ500"}, want: "https://www.amazon.com/s?ref=nb_sb_noss_1&k=B000XJ500"},
		{name: "name is escaped", tokens: []string{"Drill & Driver 18V"}, want: "https://www.amazon.com/s?ref=nb_sb_noss_1&k=Drill+%26+Driver+18V"},
		{name: "literal plus in a name survives", tokens: []string{"C++ Primer"}, want: "https://www.amazon.com/s?ref=nb_sb_noss_1&k=C%2B%2B+Primer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SearchURL("https://www.amazon.com", tt.tokens...))
		})
	}
}

func TestProductURL(t *testing.T) {
	assert.Equal(t, "https://www.amazon.fr/dp/B0001", ProductURL("https://www.amazon.fr", "B0001"))
}

func TestSiteVariant(t *testing.T) {
	tests := []struct {
		hostname string
		want     string
	}{
		{"https://www.amazon.com", "com"},
		{"https://www.amazon.co.uk", "co"},
		{"https://www.amazon.de", "de"},
		{"https://amazon.fr", "fr"},
		{"https://WWW.AMAZON.COM", "com"},
		{"https://localhost", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.hostname, func(t *testing.T) {
			assert.Equal(t, tt.want, SiteVariant(tt.hostname))
		})
	}
}

func TestIsSupportedURL(t *testing.T) {
	tests := []struct {
		name   string
		rawURL string
		want   bool
	}{
		{name: "us product page", rawURL: "https://www.amazon.com/dp/B0001", want: true},
		{name: "uk product page", rawURL: "https://www.amazon.co.uk/gp/product/B0001", want: true},
		{name: "without www", rawURL: "http://amazon.de/dp/B0001", want: true},
		{name: "other marketplace", rawURL: "https://www.ebay.com/itm/1", want: false},
		{name: "lookalike domain", rawURL: "https://www.amazon-deals.com/dp/B0001", want: false},
		{name: "unsupported scheme", rawURL: "ftp://www.amazon.com/dp/B0001", want: false},
		{name: "bare host", rawURL: "www.amazon.com/dp/B0001", want: false},
		{name: "empty", rawURL: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSupportedURL(tt.rawURL))
		})
	}
}
