package config

import "time"

// Default values applied to unset configuration fields.
const (
	DefaultListenAddress   = "127.0.0.1:8000"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 120 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1 << 20

	DefaultMaxSessions   = 100
	DefaultSessionTTL    = time.Hour
	DefaultSweepSchedule = "@every 1m"

	DefaultClientProfile  = "chrome_133"
	DefaultRequestTimeout = 30 * time.Second

	DefaultMaxHops = 5

	DefaultAuditBackend  = "memory"
	DefaultSQLitePath    = "data/callisto.db"
	DefaultAsyncBuffer   = 1000
	DefaultRetentionDays = 30
	DefaultPruneSchedule = "0 3 * * *"

	DefaultLogLevel    = "info"
	DefaultLogFormat   = "json"
	DefaultMetricsPath = "/metrics"
	DefaultNamespace   = "callisto"

	DefaultAuthHeader = "X-API-Key"
)

// ApplyDefaults fills in default values for any unset fields in cfg.
// Explicitly configured values are never overwritten.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}

	if cfg.Sessions.MaxSessions == 0 {
		cfg.Sessions.MaxSessions = DefaultMaxSessions
	}
	if cfg.Sessions.TTL == 0 {
		cfg.Sessions.TTL = DefaultSessionTTL
	}
	if cfg.Sessions.SweepSchedule == "" {
		cfg.Sessions.SweepSchedule = DefaultSweepSchedule
	}

	if cfg.Client.Profile == "" {
		cfg.Client.Profile = DefaultClientProfile
	}
	if cfg.Client.RequestTimeout == 0 {
		cfg.Client.RequestTimeout = DefaultRequestTimeout
	}

	if cfg.Redirects.MaxHops == 0 {
		cfg.Redirects.MaxHops = DefaultMaxHops
	}

	if cfg.Audit.Backend == "" {
		cfg.Audit.Backend = DefaultAuditBackend
	}
	if cfg.Audit.SQLitePath == "" {
		cfg.Audit.SQLitePath = DefaultSQLitePath
	}
	if cfg.Audit.AsyncBuffer == 0 {
		cfg.Audit.AsyncBuffer = DefaultAsyncBuffer
	}
	if cfg.Audit.RetentionDays == 0 {
		cfg.Audit.RetentionDays = DefaultRetentionDays
	}
	if cfg.Audit.PruneSchedule == "" {
		cfg.Audit.PruneSchedule = DefaultPruneSchedule
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultNamespace
	}

	if cfg.Auth.Header == "" {
		cfg.Auth.Header = DefaultAuthHeader
	}
}

// NewDefault returns a configuration populated entirely from defaults.
// Metrics and auth are enabled; audit is not.
func NewDefault() *Config {
	cfg := &Config{}
	cfg.Telemetry.Metrics.Enabled = true
	cfg.Auth.Enabled = true
	ApplyDefaults(cfg)
	return cfg
}
