package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestValidate_DefaultConfigIsValid(t *testing.T) {
	cfg := NewDefault()
	if err := Validate(cfg); err != nil {
		t.Errorf("default config should validate, got: %v", err)
	}
}

func TestValidate_Server(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{
			name:      "empty listen address",
			mutate:    func(c *Config) { c.Server.ListenAddress = "" },
			wantField: "server.listen_address",
		},
		{
			name:      "negative read timeout",
			mutate:    func(c *Config) { c.Server.ReadTimeout = -time.Second },
			wantField: "server.read_timeout",
		},
		{
			name:      "excessive max header bytes",
			mutate:    func(c *Config) { c.Server.MaxHeaderBytes = 20 * 1024 * 1024 },
			wantField: "server.max_header_bytes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefault()
			tt.mutate(cfg)
			assertFieldError(t, Validate(cfg), tt.wantField)
		})
	}
}

func TestValidate_Sessions(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{
			name:      "zero max sessions",
			mutate:    func(c *Config) { c.Sessions.MaxSessions = -1 },
			wantField: "sessions.max_sessions",
		},
		{
			name:      "negative ttl",
			mutate:    func(c *Config) { c.Sessions.TTL = -time.Minute },
			wantField: "sessions.ttl",
		},
		{
			name:      "bad sweep schedule",
			mutate:    func(c *Config) { c.Sessions.SweepSchedule = "every minute" },
			wantField: "sessions.sweep_schedule",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefault()
			tt.mutate(cfg)
			assertFieldError(t, Validate(cfg), tt.wantField)
		})
	}
}

func TestValidate_SweepScheduleForms(t *testing.T) {
	valid := []string{"@every 1m", "@every 30s", "*/5 * * * *", "0 3 * * *", ""}
	for _, schedule := range valid {
		cfg := NewDefault()
		cfg.Sessions.SweepSchedule = schedule
		if err := Validate(cfg); err != nil {
			t.Errorf("schedule %q should be valid, got: %v", schedule, err)
		}
	}
}

func TestValidate_ClientProxy(t *testing.T) {
	tests := []struct {
		name    string
		proxy   string
		wantErr bool
	}{
		{name: "empty", proxy: "", wantErr: false},
		{name: "http", proxy: "http://proxy.internal:3128", wantErr: false},
		{name: "https", proxy: "https://proxy.internal:3128", wantErr: false},
		{name: "socks5", proxy: "socks5://127.0.0.1:1080", wantErr: false},
		{name: "bad scheme", proxy: "ftp://proxy.internal:21", wantErr: true},
		{name: "no host", proxy: "http://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefault()
			cfg.Client.Proxy = tt.proxy
			err := Validate(cfg)
			if tt.wantErr && err == nil {
				t.Errorf("proxy %q: expected error, got nil", tt.proxy)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("proxy %q: unexpected error: %v", tt.proxy, err)
			}
		})
	}
}

func TestValidate_Audit(t *testing.T) {
	// Disabled audit skips backend validation entirely
	cfg := NewDefault()
	cfg.Audit.Backend = "bogus"
	if err := Validate(cfg); err != nil {
		t.Errorf("disabled audit should skip validation, got: %v", err)
	}

	cfg = NewDefault()
	cfg.Audit.Enabled = true
	cfg.Audit.Backend = "bogus"
	assertFieldError(t, Validate(cfg), "audit.backend")

	cfg = NewDefault()
	cfg.Audit.Enabled = true
	cfg.Audit.Backend = "sqlite"
	cfg.Audit.SQLitePath = ""
	assertFieldError(t, Validate(cfg), "audit.sqlite_path")

	cfg = NewDefault()
	cfg.Audit.Enabled = true
	cfg.Audit.RetentionDays = 5000
	assertFieldError(t, Validate(cfg), "audit.retention_days")
}

func TestValidate_Auth(t *testing.T) {
	cfg := NewDefault()
	cfg.Auth.Keys = []APIKey{
		{Key: "abc", Name: "one"},
		{Key: "abc", Name: "two"},
	}
	assertFieldError(t, Validate(cfg), "auth.keys[1].key")

	cfg = NewDefault()
	cfg.Auth.Keys = []APIKey{{Key: "", Name: "blank"}}
	assertFieldError(t, Validate(cfg), "auth.keys[0].key")

	// Disabled auth skips key validation
	cfg = NewDefault()
	cfg.Auth.Enabled = false
	cfg.Auth.Keys = []APIKey{{Key: ""}}
	if err := Validate(cfg); err != nil {
		t.Errorf("disabled auth should skip validation, got: %v", err)
	}
}

func TestValidate_CollectsMultipleErrors(t *testing.T) {
	cfg := NewDefault()
	cfg.Server.ListenAddress = ""
	cfg.Sessions.TTL = -time.Second
	cfg.Telemetry.Logging.Format = "xml"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}

	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(verr.Errors) != 3 {
		t.Errorf("expected 3 errors, got %d: %v", len(verr.Errors), verr)
	}
}

// assertFieldError fails the test unless err is a ValidationError
// containing an error for the named field.
func assertFieldError(t *testing.T, err error, field string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected validation error for %q, got nil", field)
	}

	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}

	for _, fe := range verr.Errors {
		if fe.Field == field {
			return
		}
	}

	var fields []string
	for _, fe := range verr.Errors {
		fields = append(fields, fe.Field)
	}
	t.Errorf("expected error for field %q, got fields: %s", field, strings.Join(fields, ", "))
}
