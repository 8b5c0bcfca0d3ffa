package metrics

import (
	"time"

	"mercator-hq/callisto/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RequestMetrics tracks metrics for proxied requests.
//
// Metrics:
//   - callisto_requests_total: Total proxied requests by method and outcome
//   - callisto_request_duration_seconds: End-to-end request duration
//   - callisto_request_redirect_hops: Redirect hops followed per request
type RequestMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	redirectHops    prometheus.Histogram
}

// NewRequestMetrics creates and registers request metrics with the provided registry.
func NewRequestMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RequestMetrics {
	rm := &RequestMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "requests_total",
				Help:      "Total number of proxied requests",
			},
			[]string{"method", "outcome"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "request_duration_seconds",
				Help:      "End-to-end duration of proxied requests in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
			},
			[]string{"method"},
		),

		redirectHops: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "request_redirect_hops",
				Help:      "Number of redirect hops followed per proxied request",
				Buckets:   []float64{0, 1, 2, 3, 4, 5, 10},
			},
		),
	}

	registry.MustRegister(
		rm.requestsTotal,
		rm.requestDuration,
		rm.redirectHops,
	)

	return rm
}

// RecordRequest records metrics for a completed proxied request.
// Outcome is one of "success", "bad_request", or "error".
func (rm *RequestMetrics) RecordRequest(method, outcome string, duration time.Duration, redirects int) {
	rm.requestsTotal.WithLabelValues(method, outcome).Inc()
	rm.requestDuration.WithLabelValues(method).Observe(duration.Seconds())
	rm.redirectHops.Observe(float64(redirects))
}
