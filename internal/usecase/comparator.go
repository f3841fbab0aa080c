package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/komparator/backend/internal/domain"
	"github.com/komparator/backend/internal/infrastructure/marketplace"
	"github.com/komparator/backend/internal/pkg/metrics"
)

// comparison run states, logged at debug level
const (
	stateSearchIssued = "search_issued"
	stateCollecting   = "collecting"
	stateCollected    = "collected"
	stateSelected     = "selected"
	stateDone         = "done"
)

// Comparator searches the source's marketplace for equivalent offers and
// picks the best one.
type Comparator struct {
	fetcher   domain.PageFetcher
	extractor domain.ProductExtractor
	locator   domain.ResultLocator
	collector *Collector
	progress  domain.ProgressSink
	logger    *zap.Logger
}

// NewComparator creates a new comparator with dependencies
func NewComparator(
	fetcher domain.PageFetcher,
	extractor domain.ProductExtractor,
	locator domain.ResultLocator,
	collector *Collector,
	progress domain.ProgressSink,
	logger *zap.Logger,
) *Comparator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if collector == nil {
		collector = NewCollector(DefaultWorkers, logger)
	}
	return &Comparator{
		fetcher:   fetcher,
		extractor: extractor,
		locator:   locator,
		collector: collector,
		progress:  progress,
		logger:    logger.Named("comparator"),
	}
}

// Compare runs one comparison for source and reports progress to sessionKey.
// Every failure along the way degrades to fewer candidates, so the only
// possible results are the three outcomes of domain.ComparisonResult.
func (c *Comparator) Compare(ctx context.Context, source domain.Product, sessionKey string) domain.ComparisonResult {
	mode := domain.SearchModeFor(source)
	term := BuildSearchTerm(source, mode)
	log := c.logger.With(
		zap.String("sid", sessionKey),
		zap.String("mode", mode.String()),
		zap.String("term", term),
	)

	// Search results
	ids := c.search(ctx, source.Hostname, SearchTokens(term, mode), log)
	log.Debug("comparison state", zap.String("state", stateSearchIssued), zap.Int("results", len(ids)))

	if len(ids) == 0 {
		c.emit(sessionKey, domain.Progress{})
		metrics.ComparisonsTotal.WithLabelValues(string(domain.OutcomeNoMatch)).Inc()
		log.Debug("comparison state", zap.String("state", stateDone), zap.String("outcome", string(domain.OutcomeNoMatch)))
		return domain.NoMatch()
	}

	// Candidate pages
	log.Debug("comparison state", zap.String("state", stateCollecting))
	candidates := c.collector.Collect(ctx, ids, c.candidate(source.Hostname), func(p domain.Progress) {
		c.emit(sessionKey, p)
	})
	log.Debug("comparison state", zap.String("state", stateCollected), zap.Int("candidates", len(candidates)))

	// Selection
	result := SelectBest(source, candidates, mode)
	log.Debug("comparison state", zap.String("state", stateSelected), zap.String("outcome", string(result.Outcome)))

	metrics.ComparisonsTotal.WithLabelValues(string(result.Outcome)).Inc()
	log.Debug("comparison state", zap.String("state", stateDone))
	return result
}

// Complete reports a finished lookup to sessionKey without running a
// comparison, as for answers served from cache.
func (c *Comparator) Complete(sessionKey string) {
	c.emit(sessionKey, domain.Progress{Completed: 1, Total: 1})
}

// search fetches the search results page and lists candidate identifiers.
// A failed fetch counts as zero results.
func (c *Comparator) search(ctx context.Context, hostname string, tokens []string, log *zap.Logger) []string {
	if hostname == "" || strings.Join(tokens, "") == "" {
		return nil
	}

	searchURL := marketplace.SearchURL(hostname, tokens...)
	page, err := c.fetcher.Fetch(ctx, searchURL)
	if err != nil {
		log.Warn("search page fetch failed", zap.String("url", searchURL), zap.Error(err))
		return nil
	}

	return c.locator.LocateResults(hostname, page)
}

// candidate returns the CollectFunc that fetches and extracts one product page
func (c *Comparator) candidate(hostname string) CollectFunc {
	return func(ctx context.Context, id string) (domain.Product, error) {
		productURL := marketplace.ProductURL(hostname, id)
		page, err := c.fetcher.Fetch(ctx, productURL)
		if err != nil {
			return domain.Product{}, fmt.Errorf("fetch %s: %w", productURL, err)
		}
		return c.extractor.ExtractProduct(productURL, page), nil
	}
}

func (c *Comparator) emit(sessionKey string, progress domain.Progress) {
	if c.progress == nil {
		return
	}
	c.progress.Emit(sessionKey, progress)
}
