package qa

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// StageDuration tracks per-stage pipeline latency.
// Labels: stage (retrieve, compose, parse)
var StageDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "docqd",
		Subsystem: "qa",
		Name:      "stage_duration_seconds",
		Help:      "Pipeline stage duration in seconds",
		Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
	},
	[]string{"stage"},
)
