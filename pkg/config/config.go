package config

import "time"

// Config is the root configuration structure for Callisto.
// It contains all configuration sections for the HTTP server, session
// store, outbound client, redirect handling, audit trail, telemetry,
// and authentication.
type Config struct {
	// Server contains HTTP server configuration including listen address,
	// timeouts, and connection limits.
	Server ServerConfig `yaml:"server"`

	// Sessions contains session store configuration: capacity, TTL, and
	// the reaper schedule.
	Sessions SessionsConfig `yaml:"sessions"`

	// Client contains configuration for the outbound browser-identity
	// HTTP client that performs the actual proxied requests.
	Client ClientConfig `yaml:"client"`

	// Redirects contains redirect-following configuration.
	Redirects RedirectsConfig `yaml:"redirects"`

	// Audit contains configuration for the proxied-request audit trail.
	Audit AuditConfig `yaml:"audit"`

	// Telemetry contains observability configuration: logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Auth contains API key authentication configuration.
	Auth AuthConfig `yaml:"auth"`
}

// ServerConfig contains configuration for the HTTP API server.
type ServerConfig struct {
	// ListenAddress is the address and port for the server to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8000", "0.0.0.0:8000").
	// Default: "127.0.0.1:8000"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. Proxied requests that follow slow redirect chains must
	// complete within this window.
	// Default: 120s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes controls the maximum number of bytes the server will
	// read parsing request headers.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`
}

// SessionsConfig contains configuration for the session store.
type SessionsConfig struct {
	// MaxSessions is the maximum number of named sessions the store will
	// hold simultaneously. Creating a session beyond this limit fails with
	// a capacity error. Ephemeral (unnamed) sessions do not count.
	// Default: 100
	MaxSessions int `yaml:"max_sessions"`

	// TTL is the idle time after which a session becomes eligible for
	// eviction by the reaper. Measured from the session's last use.
	// Default: 1h
	TTL time.Duration `yaml:"ttl"`

	// SweepSchedule is a cron expression for the reaper that evicts
	// expired sessions. Supports the "@every <duration>" form.
	// An empty string disables the reaper (sessions then only expire
	// when explicitly deleted or at shutdown).
	// Default: "@every 1m"
	SweepSchedule string `yaml:"sweep_schedule"`
}

// ClientConfig contains configuration for the outbound HTTP client.
type ClientConfig struct {
	// Profile is the browser identity profile the transport presents.
	// The profile determines the TLS fingerprint of the external client
	// capability; Callisto itself only threads the label through.
	// Default: "chrome_133"
	Profile string `yaml:"profile"`

	// RequestTimeout is the per-hop timeout for outbound requests.
	// Default: 30s
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// Proxy is an optional default upstream proxy URL applied to all
	// outbound requests unless a request supplies its own.
	// Supported schemes: http, https, socks5.
	Proxy string `yaml:"proxy"`

	// InsecureSkipVerify disables TLS certificate verification on
	// outbound requests. Intended for test environments only.
	// Default: false
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`
}

// RedirectsConfig contains redirect-following configuration.
type RedirectsConfig struct {
	// MaxHops is the maximum number of redirects followed per request.
	// A chain longer than this fails the request.
	// Default: 5
	MaxHops int `yaml:"max_hops"`
}

// AuditConfig contains configuration for the proxied-request audit trail.
type AuditConfig struct {
	// Enabled turns audit recording on.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Backend selects the storage backend: "memory" or "sqlite".
	// Default: "memory"
	Backend string `yaml:"backend"`

	// SQLitePath is the database file path when Backend is "sqlite".
	// Default: "data/callisto.db"
	SQLitePath string `yaml:"sqlite_path"`

	// AsyncBuffer is the size of the recorder's async write channel.
	// Records are dropped (with a warning) when the buffer is full so
	// that auditing never blocks the request path.
	// Default: 1000
	AsyncBuffer int `yaml:"async_buffer"`

	// RetentionDays is the number of days to keep audit records.
	// 0 keeps records forever.
	// Default: 30
	RetentionDays int `yaml:"retention_days"`

	// MaxRecords caps the number of stored audit records; the oldest are
	// pruned first. 0 means unlimited.
	// Default: 0
	MaxRecords int64 `yaml:"max_records"`

	// PruneSchedule is a cron expression for the retention pruner.
	// An empty string disables scheduled pruning.
	// Default: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string `yaml:"prune_schedule"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format: "json" or "text".
	// Default: "json"
	Format string `yaml:"format"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled turns the /metrics endpoint on.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path the metrics handler is mounted on.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the Prometheus metric namespace.
	// Default: "callisto"
	Namespace string `yaml:"namespace"`
}

// AuthConfig contains API key authentication configuration.
type AuthConfig struct {
	// Enabled turns API key checking on. When disabled, all requests are
	// accepted; intended for local development only.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Header is the request header carrying the API key.
	// Default: "X-API-Key"
	Header string `yaml:"header"`

	// Keys is the set of accepted API keys.
	Keys []APIKey `yaml:"keys"`

	// WatchConfig enables hot-reloading of the key set when the
	// configuration file changes on disk.
	// Default: false
	WatchConfig bool `yaml:"watch_config"`
}

// APIKey describes a single accepted API key.
type APIKey struct {
	// Key is the secret value compared against the request header.
	Key string `yaml:"key"`

	// Name is a human-readable label used in logs and audit records.
	Name string `yaml:"name"`

	// Disabled temporarily rejects the key without removing it.
	Disabled bool `yaml:"disabled"`
}
