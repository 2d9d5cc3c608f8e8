package recipe

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Recipe cache metrics
	recipeCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recipevault_recipe_cache_hits_total",
			Help: "Total number of recipe cache hits",
		},
	)
	recipeCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recipevault_recipe_cache_misses_total",
			Help: "Total number of recipe cache misses",
		},
	)
	recipeFetchShared = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recipevault_recipe_fetch_shared_total",
			Help: "Total number of detail lookups that joined an in-flight upstream fetch",
		},
	)

	// Upstream fetch latency for the three-part merge
	recipeFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recipevault_recipe_fetch_duration_seconds",
			Help:    "Duration of the three-part upstream recipe fetch in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	aggregationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipevault_aggregation_errors_total",
			Help: "Total number of failed aggregator operations",
		},
		[]string{"op"},
	)
)
