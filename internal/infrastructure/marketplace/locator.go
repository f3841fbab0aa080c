package marketplace

import (
	"bytes"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// ResultStrategy selects the result blocks of a parsed search page
type ResultStrategy interface {
	ResultBlocks(doc *goquery.Document) *goquery.Selection
}

// ContainerStrategy collects the child blocks of a known results container
type ContainerStrategy struct {
	Selector string
}

// ResultBlocks returns every div inside the container that carries a catalog id
func (s ContainerStrategy) ResultBlocks(doc *goquery.Document) *goquery.Selection {
	return doc.Find(s.Selector).First().Find("div[" + metricsAttrCatalogID + "]")
}

// PredicateStrategy scans all elements and keeps those that carry an explicit
// index attribute or whose id contains the result marker.
type PredicateStrategy struct {
	IndexAttr    string
	ResultMarker string
}

// ResultBlocks returns the elements matching either structural signal
func (s PredicateStrategy) ResultBlocks(doc *goquery.Document) *goquery.Selection {
	return doc.Find("*").FilterFunction(func(_ int, sel *goquery.Selection) bool {
		if _, ok := sel.Attr(s.IndexAttr); ok {
			return true
		}
		id, ok := sel.Attr("id")
		return ok && strings.Contains(id, s.ResultMarker)
	})
}

// DefaultPredicateStrategy is used for site variants without a registered strategy
var DefaultPredicateStrategy = PredicateStrategy{IndexAttr: "data-index", ResultMarker: "result_"}

// Locator finds candidate identifiers on search result pages. Strategies are
// looked up by site variant.
type Locator struct {
	mu         sync.RWMutex
	strategies map[string]ResultStrategy
	fallback   ResultStrategy
	logger     *zap.Logger
}

// NewLocator creates a locator with the built-in site variants registered
func NewLocator(logger *zap.Logger) *Locator {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Locator{
		strategies: make(map[string]ResultStrategy),
		fallback:   DefaultPredicateStrategy,
		logger:     logger.Named("locator"),
	}
	l.Register("com", ContainerStrategy{Selector: ".s-result-list.sg-row"})
	return l
}

// Register binds a strategy to a site variant, replacing any previous one
func (l *Locator) Register(variant string, strategy ResultStrategy) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.strategies[strings.ToLower(variant)] = strategy
}

// StrategyFor returns the strategy used for a hostname
func (l *Locator) StrategyFor(hostname string) ResultStrategy {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if strategy, ok := l.strategies[SiteVariant(hostname)]; ok {
		return strategy
	}
	return l.fallback
}

// LocateResults returns the catalog ids of the result blocks in document
// order. Blocks without an id are skipped and duplicates dropped.
func (l *Locator) LocateResults(hostname string, page []byte) []string {
	if len(bytes.TrimSpace(page)) == 0 {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		l.logger.Debug("unparseable search page", zap.String("hostname", hostname), zap.Error(err))
		return nil
	}

	var ids []string
	seen := make(map[string]bool)
	l.StrategyFor(hostname).ResultBlocks(doc).Each(func(_ int, block *goquery.Selection) {
		id := strings.TrimSpace(block.AttrOr(metricsAttrCatalogID, ""))
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		ids = append(ids, id)
	})

	l.logger.Debug("located search results",
		zap.String("hostname", hostname),
		zap.String("variant", SiteVariant(hostname)),
		zap.Int("count", len(ids)))
	return ids
}
