// Package metrics exposes prometheus counters for the tipping loop.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mwirth/tippbot/internal/pkg/models"
)

var (
	cyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tippbot",
		Name:      "cycles_total",
		Help:      "Completed tipping cycles by result",
	}, []string{"result"})

	cycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tippbot",
		Name:      "cycle_duration_seconds",
		Help:      "Wall-clock duration of one tipping cycle",
		Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
	})

	matchOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tippbot",
		Name:      "match_outcomes_total",
		Help:      "Per-match outcomes across all cycles",
	}, []string{"outcome"})
)

// ObserveCycle records one finished cycle.
func ObserveCycle(result *models.CycleResult) {
	state := "completed"
	if result.Aborted() {
		state = "aborted"
	}
	cyclesTotal.WithLabelValues(state).Inc()
	cycleDuration.Observe(result.Duration.Seconds())

	for _, m := range result.Matches {
		matchOutcomes.WithLabelValues(string(m.Outcome)).Inc()
	}
}
