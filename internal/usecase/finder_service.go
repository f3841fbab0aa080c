package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/komparator/backend/internal/domain"
	"github.com/komparator/backend/internal/infrastructure/marketplace"
	"github.com/komparator/backend/internal/pkg/metrics"
)

// FinderServiceConfig holds configuration for the finder service
type FinderServiceConfig struct {
	CacheTTL time.Duration
}

// FinderService answers cheaper-product lookups with caching
type FinderService struct {
	cache      domain.CacheRepository
	fetcher    domain.PageFetcher
	extractor  domain.ProductExtractor
	comparator *Comparator
	cacheTTL   time.Duration
	sources    singleflight.Group
	logger     *zap.Logger
}

// NewFinderService creates a new finder service with dependencies
func NewFinderService(
	cache domain.CacheRepository,
	fetcher domain.PageFetcher,
	extractor domain.ProductExtractor,
	comparator *Comparator,
	config FinderServiceConfig,
	logger *zap.Logger,
) *FinderService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = time.Hour // Default 1 hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &FinderService{
		cache:      cache,
		fetcher:    fetcher,
		extractor:  extractor,
		comparator: comparator,
		cacheTTL:   cacheTTL,
		logger:     logger.Named("finder"),
	}
}

// FindCheaper looks for an offer cheaper than the product behind request.URL.
// Flow: validate -> check cache -> fetch source -> compare -> cache -> return
// Once validated, a lookup runs to completion even if ctx is canceled, so a
// disconnecting caller never leaves a comparison of a partial batch behind.
func (s *FinderService) FindCheaper(ctx context.Context, request *domain.FindRequest) (*domain.FindResult, error) {
	if request == nil {
		return nil, domain.ErrInvalidRequest
	}
	if strings.TrimSpace(request.URL) == "" {
		return nil, domain.ErrEmptyURL
	}
	if !marketplace.IsSupportedURL(request.URL) {
		return nil, domain.ErrUnsupportedURL
	}
	if strings.TrimSpace(request.SessionKey) == "" {
		return nil, domain.ErrMissingSession
	}

	sourceURL := strings.TrimSpace(request.URL)
	log := s.logger.With(
		zap.String("run", uuid.NewString()),
		zap.String("sid", request.SessionKey),
		zap.String("url", sourceURL),
	)

	cacheKey := generateCacheKey(sourceURL)

	// Fetches only honour the fetch client's own timeout from here on
	ctx = context.WithoutCancel(ctx)

	// Try cache first
	if cached, err := s.getFromCache(ctx, cacheKey); err == nil {
		log.Debug("comparison served from cache", zap.String("outcome", string(cached.Outcome)))
		s.comparator.Complete(request.SessionKey)
		return toFindResult(cached)
	} else if !errors.Is(err, domain.ErrCacheMiss) {
		log.Warn("cache lookup failed", zap.Error(err))
	}

	// Cache miss - scrape the source product, sharing the fetch with concurrent lookups of the same page
	page, err := s.fetchSource(ctx, cacheKey, sourceURL)
	if err != nil {
		log.Warn("source page fetch failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}

	source := s.extractor.ExtractProduct(sourceURL, page)
	if source.IsEmpty() {
		return nil, domain.ErrProductInfoNotFound
	}
	log.Info("source product extracted",
		zap.String("name", source.Name),
		zap.String("ref", source.Ref),
		zap.String("asin", source.ASIN),
		zap.String("price", source.Price.Decimal.String()),
		zap.String("currency", source.Currency))

	result := s.comparator.Compare(ctx, source, request.SessionKey)
	log.Info("comparison finished", zap.String("outcome", string(result.Outcome)))

	// NoMatch may come from a blocked search, don't pin it
	if result.Found() {
		if err := s.setInCache(ctx, cacheKey, result); err != nil {
			log.Warn("caching comparison failed", zap.Error(err))
		}
	}

	return toFindResult(result)
}

// fetchSource fetches the source page once per key across concurrent callers.
// The shared fetch is detached from the caller that started it.
func (s *FinderService) fetchSource(ctx context.Context, key, sourceURL string) ([]byte, error) {
	fetchCtx := context.WithoutCancel(ctx)
	value, err, shared := s.sources.Do(key, func() (interface{}, error) {
		return s.fetcher.Fetch(fetchCtx, sourceURL)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debug("source page fetch shared", zap.String("key", key))
	}
	return value.([]byte), nil
}

// toFindResult maps a comparison outcome to the lookup answer
func toFindResult(result domain.ComparisonResult) (*domain.FindResult, error) {
	if !result.FoundCheaper() {
		return nil, domain.ErrNoCheaperProduct
	}
	return &domain.FindResult{
		Product: *result.Product,
		URL:     marketplace.ProductURL(result.Product.Hostname, result.Product.ASIN),
	}, nil
}

// generateCacheKey creates a cache key from the source URL.
// Format: "compare:{scheme://host/path}" with host lowercased and query dropped
func generateCacheKey(sourceURL string) string {
	return "compare:" + normalizeSourceURL(sourceURL)
}

// normalizeSourceURL drops query and fragment so tracking parameters don't split the cache
func normalizeSourceURL(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return strings.TrimSpace(rawURL)
	}
	return strings.ToLower(parsed.Scheme) + "://" + strings.ToLower(parsed.Host) + strings.TrimSuffix(parsed.Path, "/")
}

// getFromCache retrieves a comparison result from cache
func (s *FinderService) getFromCache(ctx context.Context, key string) (domain.ComparisonResult, error) {
	value, err := s.cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()
		}
		return domain.ComparisonResult{}, err
	}

	var result domain.ComparisonResult
	if err := json.Unmarshal(value, &result); err != nil {
		metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()
		return domain.ComparisonResult{}, domain.ErrCacheMiss
	}

	metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
	return result, nil
}

// setInCache stores a comparison result in cache
func (s *FinderService) setInCache(ctx context.Context, key string, result domain.ComparisonResult) error {
	value, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, key, value, s.cacheTTL)
}
