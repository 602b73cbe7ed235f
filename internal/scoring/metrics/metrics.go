// Package metrics provides observability for report scoring.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks recalculation throughput and outcomes. All methods are
// nil-safe so callers can leave metrics unwired in tests.
type Metrics struct {
	// Final classification outcomes per recalculation
	Outcome *prometheus.CounterVec

	// Full recalculation latency including persistence
	RecalculateLatency prometheus.Histogram

	// Watchlist lifecycle transitions driven by scoring
	WatchlistTransition *prometheus.CounterVec
}

// New registers all scoring metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		Outcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vigil_scoring_outcomes_total",
			Help: "Total recalculation outcomes by final classification",
		}, []string{"classification"}),

		RecalculateLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "vigil_scoring_recalculate_duration_seconds",
			Help:    "Duration of full report recalculation including persistence",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),

		WatchlistTransition: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vigil_scoring_watchlist_transitions_total",
			Help: "Watchlist transitions triggered by classification outcomes",
		}, []string{"transition"}), // transition: "created", "archived", "unchanged"
	}
}

// IncrementOutcome records a final classification.
func (m *Metrics) IncrementOutcome(classification string) {
	if m != nil {
		m.Outcome.WithLabelValues(classification).Inc()
	}
}

// ObserveRecalculateLatency records the duration of one recalculation.
func (m *Metrics) ObserveRecalculateLatency(d time.Duration) {
	if m != nil {
		m.RecalculateLatency.Observe(d.Seconds())
	}
}

// IncrementWatchlistTransition records a scoring-driven watchlist change.
func (m *Metrics) IncrementWatchlistTransition(transition string) {
	if m != nil {
		m.WatchlistTransition.WithLabelValues(transition).Inc()
	}
}
