// Package metrics defines the Prometheus collectors for the registration
// service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "guestreg_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "guestreg_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	// SubmissionsTotal counts submission attempts by outcome:
	// accepted, validation_failed, rate_limited, spam_rejected, store_error.
	SubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "guestreg_submissions_total",
		Help: "Submission attempts by outcome",
	}, []string{"outcome"})

	RateLimitStoreErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "guestreg_rate_limit_store_errors_total",
		Help: "Rate limiter store failures that were allowed through (fail open)",
	})

	RenderDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "guestreg_document_render_duration_seconds",
		Help:    "Time spent rendering registration documents",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	})
)
