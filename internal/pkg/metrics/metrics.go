package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PageFetchesTotal counts page fetches by HTTP status ("0" for transport errors)
	PageFetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "komparator_page_fetches_total",
		Help: "Marketplace page fetches by response status.",
	}, []string{"status"})

	// PageFetchDuration observes the latency of single fetch attempts
	PageFetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "komparator_page_fetch_duration_seconds",
		Help:    "Latency of marketplace page fetch attempts.",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	})

	// CandidatesCollected observes how many candidates each comparison run fetched
	CandidatesCollected = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "komparator_candidates_collected",
		Help:    "Number of search candidates collected per comparison run.",
		Buckets: []float64{0, 1, 5, 10, 20, 30, 50, 75, 100},
	})

	// CandidateFailuresTotal counts candidates whose fetch or extraction failed
	CandidateFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "komparator_candidate_failures_total",
		Help: "Candidates that degraded to an empty product.",
	})

	// ComparisonsTotal counts finished comparison runs by outcome
	ComparisonsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "komparator_comparisons_total",
		Help: "Finished comparison runs by outcome.",
	}, []string{"outcome"})

	// CacheLookupsTotal counts result cache lookups by result ("hit" or "miss")
	CacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "komparator_cache_lookups_total",
		Help: "Comparison result cache lookups.",
	}, []string{"result"})

	// ProgressSubscribers tracks the number of open progress streams
	ProgressSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "komparator_progress_subscribers",
		Help: "Open progress event streams.",
	})
)

// ObserveFetch records one fetch attempt
func ObserveFetch(status int, elapsed time.Duration) {
	PageFetchesTotal.WithLabelValues(strconv.Itoa(status)).Inc()
	PageFetchDuration.Observe(elapsed.Seconds())
}
