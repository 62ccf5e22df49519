// Invariants are conditions the cache engine's own code must uphold; a violation
// means a bug, not a bad environment. Think of what you'd `panic()` on (equivalent
// to `assert` in other languages), except the process keeps running: the violation
// is logged, a monitoring counter fires, and the caller is expected to degrade
// gracefully (early return, fall back to a safe default). A strategy index
// disagreeing with the entry table is an invariant violation; a caller passing an
// unknown namespace is not.
//
// Under test builds (see build.go) a violation panics instead, so broken
// assumptions fail the suite loudly rather than hiding behind a counter.

package utils

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	promclient "github.com/prometheus/client_model/go"
)

var invariantsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "invariant_violations_total",
	Help: "The total number of invariant violations detected in the cache engine",
}, []string{
	"module", // The module in which this invariant occurred.
	"type",   // The type of the invariant that occurred.
})

// RaiseInvariant records an invariant violation: it bumps the monitoring counter and
// logs an error with the given structured args. Panics when running under tests.
func RaiseInvariant(module, invariantType, msg string, args ...any) {
	invariantsMetric.WithLabelValues(module, invariantType).Inc()
	slog.With("invariant", invariantType, "module", module).Error(msg, args...)
	if IsTestMode {
		panic("invariant violated: " + invariantType)
	}
}

// GetMetricValue returns the current value of the invariant counter for the given
// module and invariant type labels.
func GetMetricValue(module, invariantType string) int {
	var metric = &promclient.Metric{}
	if err := invariantsMetric.WithLabelValues(module, invariantType).Write(metric); err != nil {
		slog.Error(err.Error())
		return 0
	}
	return int(metric.Counter.GetValue())
}
