// Package metrics provides Prometheus instrumentation for Callisto.
//
// The Collector owns a prometheus.Registry and the metric subsystems:
// request metrics (counts, durations, redirect hops) and session
// metrics (active gauge, lifecycle counters). All recording methods are
// no-ops when metrics are disabled, so call sites never need to guard.
package metrics
