package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operational metrics, labeled by namespace. These complement the per-namespace
// Stats counters: Stats answers the caller's "how is my cache doing" question,
// the prometheus series feed dashboards and alerts.
var (
	lookupsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_lookups_total",
		Help: "Total number of cache lookups.",
	}, []string{"namespace", "status" /* hit | miss | expired */})

	setsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_sets_total",
		Help: "Total number of cache writes that stored an entry.",
	}, []string{"namespace"})

	deletesMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_deletes_total",
		Help: "Total number of explicit deletes that removed an entry.",
	}, []string{"namespace"})

	evictionsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_evictions_total",
		Help: "Total number of entries removed by the eviction machinery.",
	}, []string{"namespace", "cause" /* capacity | expired | sweep */})

	admissionsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_admissions_total",
		Help: "Doorkeeper admission decisions for new keys.",
	}, []string{"namespace", "decision" /* admit | deny */})

	refreshSignalsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_refresh_signals_total",
		Help: "Stale-while-revalidate refresh signals by outcome.",
	}, []string{"namespace", "outcome" /* queued | dropped */})
)

// Eviction causes for evictionsMetric.
const (
	evictCauseCapacity = "capacity" // Removed to make room for a new key.
	evictCauseExpired  = "expired"  // Removed lazily when a read found it dead.
	evictCauseSweep    = "sweep"    // Removed by a proactive Cleanup pass.
)
