package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path,
// applies defaults, and validates the result. Environment variables are
// not consulted; use LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	return cfg, nil
}

// Parse parses raw YAML configuration bytes, applies defaults, and
// validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides. Environment variables follow the
// naming convention CALLISTO_SECTION_FIELD (e.g. CALLISTO_SERVER_LISTEN_ADDRESS)
// and always take precedence over file-based configuration.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies CALLISTO_* environment variable overrides.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	if val := os.Getenv("CALLISTO_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("CALLISTO_SERVER_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if val := os.Getenv("CALLISTO_SERVER_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}
	if val := os.Getenv("CALLISTO_SERVER_SHUTDOWN_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ShutdownTimeout = d
		}
	}

	// Session overrides
	if val := os.Getenv("CALLISTO_SESSIONS_MAX_SESSIONS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Sessions.MaxSessions = i
		}
	}
	if val := os.Getenv("CALLISTO_SESSIONS_TTL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Sessions.TTL = d
		}
	}
	if val := os.Getenv("CALLISTO_SESSIONS_SWEEP_SCHEDULE"); val != "" {
		cfg.Sessions.SweepSchedule = val
	}

	// Client overrides
	if val := os.Getenv("CALLISTO_CLIENT_PROFILE"); val != "" {
		cfg.Client.Profile = val
	}
	if val := os.Getenv("CALLISTO_CLIENT_REQUEST_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Client.RequestTimeout = d
		}
	}
	if val := os.Getenv("CALLISTO_CLIENT_PROXY"); val != "" {
		cfg.Client.Proxy = val
	}

	// Redirect overrides
	if val := os.Getenv("CALLISTO_REDIRECTS_MAX_HOPS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Redirects.MaxHops = i
		}
	}

	// Audit overrides
	if val := os.Getenv("CALLISTO_AUDIT_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Audit.Enabled = b
		}
	}
	if val := os.Getenv("CALLISTO_AUDIT_BACKEND"); val != "" {
		cfg.Audit.Backend = val
	}
	if val := os.Getenv("CALLISTO_AUDIT_SQLITE_PATH"); val != "" {
		cfg.Audit.SQLitePath = val
	}
	if val := os.Getenv("CALLISTO_AUDIT_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Audit.RetentionDays = i
		}
	}
	if val := os.Getenv("CALLISTO_AUDIT_PRUNE_SCHEDULE"); val != "" {
		cfg.Audit.PruneSchedule = val
	}

	// Telemetry overrides
	if val := os.Getenv("CALLISTO_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("CALLISTO_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("CALLISTO_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}

	// Auth overrides. CALLISTO_AUTH_API_KEY adds a single key on top of
	// the configured set, which is how container deployments inject the
	// secret without writing it into the config file.
	if val := os.Getenv("CALLISTO_AUTH_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Auth.Enabled = b
		}
	}
	if val := os.Getenv("CALLISTO_AUTH_HEADER"); val != "" {
		cfg.Auth.Header = val
	}
	if val := os.Getenv("CALLISTO_AUTH_API_KEY"); val != "" {
		cfg.Auth.Keys = append(cfg.Auth.Keys, APIKey{Key: val, Name: "env"})
	}
}
