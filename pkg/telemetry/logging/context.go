package logging

import "context"

// Context keys for common log fields.
type contextKey string

const (
	// RequestIDKey is the context key for request IDs.
	RequestIDKey contextKey = "request_id"

	// SessionIDKey is the context key for proxy session identifiers.
	SessionIDKey contextKey = "session_id"

	// APIKeyNameKey is the context key for the authenticated API key's
	// human-readable name. The key value itself is never logged.
	APIKeyNameKey contextKey = "api_key_name"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithSessionID adds a proxy session identifier to the context.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, SessionIDKey, sessionID)
}

// GetSessionID retrieves the proxy session identifier from the context.
func GetSessionID(ctx context.Context) string {
	if sessionID, ok := ctx.Value(SessionIDKey).(string); ok {
		return sessionID
	}
	return ""
}

// WithAPIKeyName adds an API key name to the context.
func WithAPIKeyName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, APIKeyNameKey, name)
}

// GetAPIKeyName retrieves the API key name from the context.
func GetAPIKeyName(ctx context.Context) string {
	if name, ok := ctx.Value(APIKeyNameKey).(string); ok {
		return name
	}
	return ""
}

// ContextFields extracts common fields from context for logging.
// Returns a slice of key-value pairs suitable for logger.With().
func ContextFields(ctx context.Context) []any {
	var fields []any

	if requestID := GetRequestID(ctx); requestID != "" {
		fields = append(fields, "request_id", requestID)
	}
	if sessionID := GetSessionID(ctx); sessionID != "" {
		fields = append(fields, "session_id", sessionID)
	}
	if name := GetAPIKeyName(ctx); name != "" {
		fields = append(fields, "api_key_name", name)
	}

	return fields
}
