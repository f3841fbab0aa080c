package marketplace

import (
	"fmt"
	"net/url"
	"strings"
)

// MarketplaceName is the second-level domain label of supported sites
const MarketplaceName = "amazon"

// searchPath is the search endpoint, the ref parameter mimics the site's own search box
const searchPath = "/s?ref=nb_sb_noss_1&k="

// BaseURL returns scheme://host of any URL, or "" when it cannot be parsed
func BaseURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return ""
	}
	return parsed.Scheme + "://" + parsed.Host
}

// SearchURL builds the search results URL for the given term tokens. Each
// token is escaped on its own and the tokens are joined with "+".
func SearchURL(hostname string, tokens ...string) string {
	escaped := make([]string, len(tokens))
	for i, token := range tokens {
		escaped[i] = url.QueryEscape(token)
	}
	return hostname + searchPath + strings.Join(escaped, "+")
}

// ProductURL builds the product page URL for a catalog identifier
func ProductURL(hostname, asin string) string {
	return fmt.Sprintf("%s/dp/%s", hostname, asin)
}

// SiteVariant returns the domain label that follows the marketplace name,
// e.g. "com" for www.amazon.com and "co" for www.amazon.co.uk.
func SiteVariant(hostname string) string {
	labels := hostLabels(hostname)
	if len(labels) < 2 {
		return ""
	}
	return labels[1]
}

// IsSupportedURL checks that the URL is an http(s) URL on a supported marketplace domain
func IsSupportedURL(rawURL string) bool {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	labels := hostLabels(parsed.Scheme + "://" + parsed.Host)
	return len(labels) >= 2 && labels[0] == MarketplaceName
}

// hostLabels splits the host of a URL into domain labels, dropping a leading "www"
func hostLabels(hostname string) []string {
	parsed, err := url.Parse(hostname)
	if err != nil {
		return nil
	}
	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return nil
	}
	host = strings.TrimPrefix(host, "www.")
	return strings.Split(host, ".")
}
