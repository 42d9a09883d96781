package http

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// QuestionsTotal counts answered questions by pipeline outcome.
	// Labels: outcome (answered, no_matches, retrieval_error,
	// upstream_error, parse_error)
	QuestionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docqd",
			Subsystem: "qa",
			Name:      "questions_total",
			Help:      "Total questions processed, by pipeline outcome",
		},
		[]string{"outcome"},
	)

	// QuestionDuration tracks end-to-end question latency.
	QuestionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "docqd",
			Subsystem: "qa",
			Name:      "question_duration_seconds",
			Help:      "End-to-end question handling duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
		},
	)

	// RequestsTotal counts HTTP requests.
	// Labels: method, endpoint, status
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docqd",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by method, endpoint, and status code",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration tracks HTTP request latency.
	// Labels: method, endpoint
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docqd",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds by method and endpoint",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 10.0, 30.0},
		},
		[]string{"method", "endpoint"},
	)
)

// metricsMiddleware records per-request counters and latency. Routes
// are labeled by their registered pattern, not the raw URI, to keep
// label cardinality bounded.
func metricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			endpoint := c.Path()
			if endpoint == "" {
				endpoint = "/"
			}
			method := c.Request().Method
			status := strconv.Itoa(c.Response().Status)

			RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
			RequestDuration.WithLabelValues(method, endpoint).Observe(time.Since(start).Seconds())

			return err
		}
	}
}
