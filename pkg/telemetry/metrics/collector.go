package metrics

import (
	"time"

	"mercator-hq/callisto/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector is the orchestrator for all Prometheus metrics in Callisto.
// It manages metric registration and provides a unified interface for
// recording metrics across components. When metrics are disabled in the
// configuration, every recording method is a no-op.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	requestMetrics *RequestMetrics
	sessionMetrics *SessionMetrics
}

// NewCollector creates a metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a fresh registry is created.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultNamespace
	}

	c := &Collector{
		config:   cfg,
		registry: registry,
	}

	c.requestMetrics = NewRequestMetrics(cfg, registry)
	c.sessionMetrics = NewSessionMetrics(cfg, registry)

	return c
}

// RecordRequest records metrics for a completed proxied request.
// Outcome is one of "success", "bad_request", or "error".
func (c *Collector) RecordRequest(method, outcome string, duration time.Duration, redirects int) {
	if !c.config.Enabled {
		return
	}
	c.requestMetrics.RecordRequest(method, outcome, duration, redirects)
}

// SetActiveSessions sets the active named session gauge.
func (c *Collector) SetActiveSessions(count int) {
	if !c.config.Enabled {
		return
	}
	c.sessionMetrics.SetActive(count)
}

// RecordSessionCreated increments the session created counter.
func (c *Collector) RecordSessionCreated() {
	if !c.config.Enabled {
		return
	}
	c.sessionMetrics.RecordCreated()
}

// RecordSessionDeleted increments the session deleted counter.
func (c *Collector) RecordSessionDeleted() {
	if !c.config.Enabled {
		return
	}
	c.sessionMetrics.RecordDeleted()
}

// RecordSessionsExpired adds to the expired session counter.
func (c *Collector) RecordSessionsExpired(count int) {
	if !c.config.Enabled || count == 0 {
		return
	}
	c.sessionMetrics.RecordExpired(count)
}

// RecordSessionRejected increments the capacity-rejection counter.
func (c *Collector) RecordSessionRejected() {
	if !c.config.Enabled {
		return
	}
	c.sessionMetrics.RecordRejected()
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
