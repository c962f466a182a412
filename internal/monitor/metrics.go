package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Evaluation metrics
	EvaluationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "evaluation_runs_total",
		Help: "Total number of embedding evaluations",
	}, []string{"status"})

	MetricFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "evaluation_metric_failures_total",
		Help: "Total number of per-metric computation failures",
	}, []string{"metric"})

	EvaluationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "evaluation_duration_seconds",
		Help:    "Duration of full evaluation calls",
		Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	})

	PairwiseLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "evaluation_pairwise_latency_seconds",
		Help:    "Latency of pairwise distance/rank computation",
		Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5},
	})

	// Run store metrics
	RunsPersisted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "run_store_operations_total",
		Help: "Total number of run store operations",
	}, []string{"backend", "status"})
)
