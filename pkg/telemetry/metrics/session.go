package metrics

import (
	"mercator-hq/callisto/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// SessionMetrics tracks session store lifecycle metrics.
//
// Metrics:
//   - callisto_sessions_active: Currently held named sessions
//   - callisto_sessions_created_total: Named sessions created
//   - callisto_sessions_deleted_total: Named sessions explicitly deleted
//   - callisto_sessions_expired_total: Named sessions evicted by the reaper
//   - callisto_sessions_rejected_total: Session creations rejected at capacity
type SessionMetrics struct {
	active   prometheus.Gauge
	created  prometheus.Counter
	deleted  prometheus.Counter
	expired  prometheus.Counter
	rejected prometheus.Counter
}

// NewSessionMetrics creates and registers session metrics with the provided registry.
func NewSessionMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *SessionMetrics {
	sm := &SessionMetrics{
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Name:      "sessions_active",
			Help:      "Number of named sessions currently held",
		}),
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "sessions_created_total",
			Help:      "Total number of named sessions created",
		}),
		deleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "sessions_deleted_total",
			Help:      "Total number of named sessions explicitly deleted",
		}),
		expired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "sessions_expired_total",
			Help:      "Total number of named sessions evicted after TTL expiry",
		}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "sessions_rejected_total",
			Help:      "Total number of session creations rejected at capacity",
		}),
	}

	registry.MustRegister(sm.active, sm.created, sm.deleted, sm.expired, sm.rejected)

	return sm
}

// SetActive sets the active named session gauge.
func (sm *SessionMetrics) SetActive(count int) {
	sm.active.Set(float64(count))
}

// RecordCreated increments the created counter.
func (sm *SessionMetrics) RecordCreated() {
	sm.created.Inc()
}

// RecordDeleted increments the deleted counter.
func (sm *SessionMetrics) RecordDeleted() {
	sm.deleted.Inc()
}

// RecordExpired adds to the expired counter.
func (sm *SessionMetrics) RecordExpired(count int) {
	sm.expired.Add(float64(count))
}

// RecordRejected increments the capacity-rejection counter.
func (sm *SessionMetrics) RecordRejected() {
	sm.rejected.Inc()
}
