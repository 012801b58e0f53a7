// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch-pipeline metrics track per-feed retrieval performance and outcomes.
var (
	// FeedFetchDuration measures the total duration of one feed's fetch cycle
	FeedFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feed_fetch_duration_seconds",
			Help:    "Duration of a full fetch cycle for one feed",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"feed_id"},
	)

	// FeedFetchErrors counts fetch-cycle failures by feed and failing stage
	FeedFetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_fetch_errors_total",
			Help: "Total number of failed fetch cycles by stage",
		},
		[]string{"feed_id", "stage"},
	)

	// ItemsFetchedTotal counts all items seen in fetched documents
	ItemsFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_items_fetched_total",
			Help: "Total number of items seen across fetches",
		},
		[]string{"feed_id"},
	)

	// ItemsNewTotal counts items that survived deduplication and were archived
	ItemsNewTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_items_new_total",
			Help: "Total number of genuinely new items appended to archives",
		},
		[]string{"feed_id"},
	)
)

// Store metrics track contention on the shared persisted files.
var (
	// LockWaitDuration measures time spent waiting for advisory file locks
	LockWaitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_lock_wait_seconds",
			Help:    "Time spent acquiring advisory file locks",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
		},
		[]string{"scope"},
	)

	// LockTimeouts counts lock acquisitions that exceeded the bounded wait
	LockTimeouts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_lock_timeouts_total",
			Help: "Total number of advisory lock acquisition timeouts",
		},
		[]string{"scope"},
	)

	// FeedsTotal tracks the number of feeds currently registered
	FeedsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "feeds_registered_total",
			Help: "Number of feeds currently in the registry",
		},
	)
)
