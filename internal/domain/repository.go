package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// PageFetcher retrieves raw page content. Implementations must be safe for
// concurrent use; any non-success status is reported as an error.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// ProductExtractor turns a fetched product page into a Product.
// It never fails: missing data degrades to empty fields.
type ProductExtractor interface {
	ExtractProduct(pageURL string, page []byte) Product
}

// ResultLocator lists the catalog identifiers found on a search results page
type ResultLocator interface {
	LocateResults(hostname string, page []byte) []string
}

// ProgressSink receives fire-and-forget progress notifications for a session
type ProgressSink interface {
	Emit(sessionKey string, progress Progress)
}
