package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Sync engine metrics
	SyncRowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sigem_sync_rows_total",
		Help: "Newly persisted meter readings per measurement kind",
	}, []string{"kind"})

	SyncCycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sigem_sync_cycle_duration_seconds",
		Help:    "Wall-clock duration of full sync cycles",
		Buckets: prometheus.DefBuckets,
	})

	SyncFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sigem_sync_failures_total",
		Help: "Sync failures per measurement kind and reason",
	}, []string{"kind", "reason"})

	SyncCyclesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sigem_sync_cycles_skipped_total",
		Help: "Scheduled cycles skipped because the previous cycle was still running",
	})

	// Analytics metrics
	QueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sigem_query_latency_seconds",
		Help:    "Latency of analytics queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"section"})

	CacheHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sigem_analytics_cache_total",
		Help: "Analytics cache lookups by outcome",
	}, []string{"outcome"})
)
