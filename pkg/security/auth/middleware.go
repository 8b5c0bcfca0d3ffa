package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"mercator-hq/callisto/pkg/proxy/types"
	"mercator-hq/callisto/pkg/telemetry/logging"
)

// Middleware is HTTP middleware for API key authentication. Requests
// to the configured skip paths bypass authentication entirely.
type Middleware struct {
	validator *Validator
	header    string
	skip      map[string]struct{}
}

// NewMiddleware creates a new API key authentication middleware.
// The header argument names the request header carrying the key.
func NewMiddleware(validator *Validator, header string, skipPaths ...string) *Middleware {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return &Middleware{
		validator: validator,
		header:    header,
		skip:      skip,
	}
}

// Handle wraps an HTTP handler with API key authentication.
func (m *Middleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := m.skip[r.URL.Path]; ok {
			next.ServeHTTP(w, r)
			return
		}

		apiKey := r.Header.Get(m.header)
		if apiKey == "" {
			slog.Warn("missing API key",
				"remote_addr", r.RemoteAddr,
				"path", r.URL.Path,
			)
			writeUnauthorized(w, "Missing API key")
			return
		}

		info, err := m.validator.Validate(apiKey)
		if err != nil {
			slog.Warn("invalid API key",
				"error", err,
				"remote_addr", r.RemoteAddr,
				"path", r.URL.Path,
			)
			writeUnauthorized(w, "Invalid API key")
			return
		}

		slog.Debug("API key authenticated",
			"key_name", info.Name,
			"path", r.URL.Path,
		)

		ctx := context.WithValue(r.Context(), keyInfoKey, info)
		ctx = logging.WithAPIKeyName(ctx, info.Name)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// writeUnauthorized writes a 401 response in the standard error envelope.
func writeUnauthorized(w http.ResponseWriter, message string) {
	errResp := types.NewAuthenticationError(message)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(errResp)
}

// Context key for API key info
type contextKey string

// #nosec G101 - This is a context key constant, not a credential
const keyInfoKey contextKey = "api_key_info"

// GetKeyInfo retrieves API key info from request context.
func GetKeyInfo(ctx context.Context) (*KeyInfo, bool) {
	info, ok := ctx.Value(keyInfoKey).(*KeyInfo)
	return info, ok
}
