// Package metrics provides Prometheus metrics for the honor score engine:
// counters, gauges, and histograms for calculations, batch runs, and log
// ingestion.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Calculations ───────────────────────────────────────────────────────────

// Calculations tracks completed period score computations.
var Calculations = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "honor",
	Name:      "calculations_total",
	Help:      "Total completed period score calculations.",
})

// CalculationErrors tracks failed computations by trigger path.
var CalculationErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "honor",
	Name:      "calculation_errors_total",
	Help:      "Total failed period score calculations.",
}, []string{"trigger"})

// HonorScores tracks the distribution of computed honor scores.
var HonorScores = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "honor",
	Name:      "score_distribution",
	Help:      "Distribution of computed honor scores (0-1000).",
	Buckets:   []float64{0, 100, 250, 400, 550, 700, 850, 1000},
})

// ─── Batches ────────────────────────────────────────────────────────────────

// BatchDuration tracks full batch run duration by trigger.
var BatchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "honor",
	Name:      "batch_duration_seconds",
	Help:      "Duration of batch recomputation runs.",
	Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300},
}, []string{"trigger"})

// BatchUsers tracks users processed in the most recent batch run.
var BatchUsers = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "honor",
	Name:      "batch_users_last",
	Help:      "Users processed in the most recent batch run.",
})

// ─── Ingestion ──────────────────────────────────────────────────────────────

// LogsIngested tracks daily habit logs recorded via the fast path.
var LogsIngested = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "honor",
	Name:      "logs_ingested_total",
	Help:      "Total daily habit logs recorded.",
})
