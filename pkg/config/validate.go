package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// cronParser accepts the standard five-field cron syntax plus the
// "@every <duration>" descriptors used by the session reaper.
var cronParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateSessions(&cfg.Sessions)...)
	errs = append(errs, validateClient(&cfg.Client)...)
	errs = append(errs, validateRedirects(&cfg.Redirects)...)
	errs = append(errs, validateAudit(&cfg.Audit)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)
	errs = append(errs, validateAuth(&cfg.Auth)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateServer validates HTTP server configuration.
func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	}

	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.read_timeout",
			Message: "read timeout must be positive",
		})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.write_timeout",
			Message: "write timeout must be positive",
		})
	}
	if cfg.IdleTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.idle_timeout",
			Message: "idle timeout must be positive",
		})
	}
	if cfg.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.shutdown_timeout",
			Message: "shutdown timeout must be positive",
		})
	}

	if cfg.MaxHeaderBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes must be non-negative",
		})
	}
	if cfg.MaxHeaderBytes > 10*1024*1024 { // 10MB is excessive
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes exceeds reasonable limit (10MB)",
		})
	}

	return errs
}

// validateSessions validates session store configuration.
func validateSessions(cfg *SessionsConfig) []FieldError {
	var errs []FieldError

	if cfg.MaxSessions < 1 {
		errs = append(errs, FieldError{
			Field:   "sessions.max_sessions",
			Message: "max sessions must be at least 1",
		})
	}
	if cfg.MaxSessions > 100000 {
		errs = append(errs, FieldError{
			Field:   "sessions.max_sessions",
			Message: "max sessions exceeds reasonable limit (100,000)",
		})
	}

	if cfg.TTL <= 0 {
		errs = append(errs, FieldError{
			Field:   "sessions.ttl",
			Message: "TTL must be positive",
		})
	}

	if cfg.SweepSchedule != "" {
		if _, err := cronParser.Parse(cfg.SweepSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "sessions.sweep_schedule",
				Message: fmt.Sprintf("invalid cron expression: %v", err),
			})
		}
	}

	return errs
}

// validateClient validates outbound client configuration.
func validateClient(cfg *ClientConfig) []FieldError {
	var errs []FieldError

	if cfg.Profile == "" {
		errs = append(errs, FieldError{
			Field:   "client.profile",
			Message: "profile is required",
		})
	}

	if cfg.RequestTimeout <= 0 {
		errs = append(errs, FieldError{
			Field:   "client.request_timeout",
			Message: "request timeout must be positive",
		})
	}

	if cfg.Proxy != "" {
		errs = append(errs, validateProxyURL("client.proxy", cfg.Proxy)...)
	}

	return errs
}

// validateProxyURL validates an upstream proxy URL and its scheme.
func validateProxyURL(field, raw string) []FieldError {
	var errs []FieldError

	u, err := url.Parse(raw)
	if err != nil {
		errs = append(errs, FieldError{
			Field:   field,
			Message: fmt.Sprintf("invalid URL format: %v", err),
		})
		return errs
	}

	validSchemes := map[string]bool{"http": true, "https": true, "socks5": true}
	if !validSchemes[u.Scheme] {
		errs = append(errs, FieldError{
			Field:   field,
			Message: fmt.Sprintf("invalid scheme %q: must be 'http', 'https', or 'socks5'", u.Scheme),
		})
	}
	if u.Host == "" {
		errs = append(errs, FieldError{
			Field:   field,
			Message: "proxy URL must include a host",
		})
	}

	return errs
}

// validateRedirects validates redirect-following configuration.
func validateRedirects(cfg *RedirectsConfig) []FieldError {
	var errs []FieldError

	if cfg.MaxHops < 0 {
		errs = append(errs, FieldError{
			Field:   "redirects.max_hops",
			Message: "max hops must be non-negative",
		})
	}
	if cfg.MaxHops > 100 {
		errs = append(errs, FieldError{
			Field:   "redirects.max_hops",
			Message: "max hops exceeds reasonable limit (100)",
		})
	}

	return errs
}

// validateAudit validates audit trail configuration.
func validateAudit(cfg *AuditConfig) []FieldError {
	var errs []FieldError

	// If audit is disabled, skip validation
	if !cfg.Enabled {
		return errs
	}

	validBackends := map[string]bool{"memory": true, "sqlite": true}
	if cfg.Backend == "" {
		errs = append(errs, FieldError{
			Field:   "audit.backend",
			Message: "backend is required when audit is enabled",
		})
	} else if !validBackends[cfg.Backend] {
		errs = append(errs, FieldError{
			Field:   "audit.backend",
			Message: fmt.Sprintf("invalid backend %q: must be 'memory' or 'sqlite'", cfg.Backend),
		})
	}

	if cfg.Backend == "sqlite" && cfg.SQLitePath == "" {
		errs = append(errs, FieldError{
			Field:   "audit.sqlite_path",
			Message: "SQLite path is required when backend is 'sqlite'",
		})
	}

	if cfg.AsyncBuffer < 1 {
		errs = append(errs, FieldError{
			Field:   "audit.async_buffer",
			Message: "async buffer must be at least 1",
		})
	}

	if cfg.RetentionDays < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.retention_days",
			Message: "retention days must be non-negative",
		})
	}
	if cfg.RetentionDays > 3650 { // 10 years is excessive
		errs = append(errs, FieldError{
			Field:   "audit.retention_days",
			Message: "retention days exceeds reasonable limit (3650 days / 10 years)",
		})
	}

	if cfg.MaxRecords < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.max_records",
			Message: "max records must be non-negative",
		})
	}

	if cfg.PruneSchedule != "" {
		if _, err := cronParser.Parse(cfg.PruneSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "audit.prune_schedule",
				Message: fmt.Sprintf("invalid cron expression: %v", err),
			})
		}
	}

	return errs
}

// validateTelemetry validates telemetry configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if cfg.Logging.Level == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: "logging level is required",
		})
	} else if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if cfg.Logging.Format == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: "logging format is required",
		})
	} else if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json' or 'text'", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Path == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.path",
				Message: "metrics path is required when metrics are enabled",
			})
		} else if cfg.Metrics.Path[0] != '/' {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.path",
				Message: "metrics path must start with /",
			})
		}
		if cfg.Metrics.Namespace == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.namespace",
				Message: "metrics namespace is required when metrics are enabled",
			})
		}
	}

	return errs
}

// validateAuth validates authentication configuration.
func validateAuth(cfg *AuthConfig) []FieldError {
	var errs []FieldError

	if !cfg.Enabled {
		return errs
	}

	if cfg.Header == "" {
		errs = append(errs, FieldError{
			Field:   "auth.header",
			Message: "header is required when auth is enabled",
		})
	}

	// Empty key sets are allowed at load time because the key may arrive
	// via CALLISTO_AUTH_API_KEY after file validation.
	seen := make(map[string]bool)
	for i, key := range cfg.Keys {
		prefix := fmt.Sprintf("auth.keys[%d]", i)
		if key.Key == "" {
			errs = append(errs, FieldError{
				Field:   prefix + ".key",
				Message: "key value must not be empty",
			})
			continue
		}
		if seen[key.Key] {
			errs = append(errs, FieldError{
				Field:   prefix + ".key",
				Message: "duplicate key value",
			})
		}
		seen[key.Key] = true
	}

	return errs
}
