package usecase

import (
	"context"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/komparator/backend/internal/domain"
	"github.com/komparator/backend/internal/pkg/metrics"
)

// DefaultWorkers is the collector pool size used when none is configured
const DefaultWorkers = 4

// CollectFunc turns one catalog identifier into a product
type CollectFunc func(ctx context.Context, id string) (domain.Product, error)

// Collector runs a CollectFunc over a list of identifiers on a bounded worker pool
type Collector struct {
	workers int
	logger  *zap.Logger
}

// NewCollector creates a new collector with the given pool size
func NewCollector(workers int, logger *zap.Logger) *Collector {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{
		workers: workers,
		logger:  logger.Named("collector"),
	}
}

// Collect applies op to every id and returns one product per id, in no
// particular order. A failing or panicking op yields an empty product.
// onProgress, when set, is called once per finished id with a strictly
// increasing completed count. Collect returns after every task has finished.
func (c *Collector) Collect(ctx context.Context, ids []string, op CollectFunc, onProgress func(domain.Progress)) []domain.Product {
	if len(ids) == 0 {
		return nil
	}

	agg := newAggregator(len(ids), onProgress)

	pool, err := ants.NewPool(c.workers)
	if err != nil {
		// Pool creation only fails on bad options; degrade to running inline
		c.logger.Error("worker pool unavailable, collecting sequentially", zap.Error(err))
		for _, id := range ids {
			agg.record(c.run(ctx, id, op))
		}
		return agg.products
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			agg.record(c.run(ctx, id, op))
		})
		if submitErr != nil {
			wg.Done()
			c.logger.Warn("task rejected by pool", zap.String("id", id), zap.Error(submitErr))
			metrics.CandidateFailuresTotal.Inc()
			agg.record(domain.Product{})
		}
	}
	wg.Wait()

	metrics.CandidatesCollected.Observe(float64(len(agg.products)))
	return agg.products
}

// run executes op for one id, converting errors and panics into an empty product
func (c *Collector) run(ctx context.Context, id string, op CollectFunc) (product domain.Product) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("candidate panicked", zap.String("id", id), zap.Any("panic", r))
			metrics.CandidateFailuresTotal.Inc()
			product = domain.Product{}
		}
	}()

	product, err := op(ctx, id)
	if err != nil {
		c.logger.Warn("candidate failed", zap.String("id", id), zap.Error(err))
		metrics.CandidateFailuresTotal.Inc()
		return domain.Product{}
	}
	return product
}

// aggregator gathers the products of one collection run
type aggregator struct {
	mu         sync.Mutex
	products   []domain.Product
	completed  int
	total      int
	onProgress func(domain.Progress)
}

func newAggregator(total int, onProgress func(domain.Progress)) *aggregator {
	return &aggregator{
		products:   make([]domain.Product, 0, total),
		total:      total,
		onProgress: onProgress,
	}
}

// record stores a product and reports progress. The tick is emitted under the
// lock so observers see completed counts in order.
func (a *aggregator) record(product domain.Product) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.products = append(a.products, product)
	a.completed++
	if a.onProgress != nil {
		a.onProgress(domain.Progress{Completed: a.completed, Total: a.total})
	}
}
