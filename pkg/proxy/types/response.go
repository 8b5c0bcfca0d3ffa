package types

import (
	"encoding/json"
	"net/http"
)

// HeaderValue is a response header's values. A single value marshals
// as a plain string; repeated values (Set-Cookie) marshal as an
// ordered list.
type HeaderValue []string

// MarshalJSON emits a string for single values and an array otherwise.
func (h HeaderValue) MarshalJSON() ([]byte, error) {
	if len(h) == 1 {
		return json.Marshal(h[0])
	}
	return json.Marshal([]string(h))
}

// UnmarshalJSON accepts both forms.
func (h *HeaderValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*h = HeaderValue{s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*h = HeaderValue(list)
	return nil
}

// NormalizeHeaders converts an http.Header into the response header
// map, preserving value order for repeated headers.
func NormalizeHeaders(header http.Header) map[string]HeaderValue {
	out := make(map[string]HeaderValue, len(header))
	for key, values := range header {
		out[key] = HeaderValue(values)
	}
	return out
}

// ProxyResponse is the JSON envelope for a completed proxied request.
type ProxyResponse struct {
	// StatusCode is the final hop's HTTP status code.
	StatusCode int `json:"status_code"`

	// Headers are the final hop's response headers.
	Headers map[string]HeaderValue `json:"headers"`

	// Body is the parsed JSON body, or the raw text when the body is
	// not valid JSON.
	Body any `json:"body"`

	// SessionID echoes the named session used, empty for ephemeral.
	SessionID string `json:"session_id,omitempty"`

	// ElapsedMS is the end-to-end execution time in milliseconds.
	ElapsedMS int64 `json:"elapsed_ms"`

	// RedirectCount is the number of redirects followed.
	RedirectCount int `json:"redirect_count"`

	// RedirectChain lists the URLs visited before the final one, in
	// order.
	RedirectChain []string `json:"redirect_chain"`

	// FinalURL is the URL that produced the final response.
	FinalURL string `json:"final_url"`
}

// SessionCreateResponse is returned by the session-create endpoint.
type SessionCreateResponse struct {
	// SessionID is the allocated session identifier.
	SessionID string `json:"session_id"`
}

// SessionDeleteResponse is returned by the session-delete endpoint.
type SessionDeleteResponse struct {
	// SessionID is the deleted session identifier.
	SessionID string `json:"session_id"`

	// Deleted is true when the session existed.
	Deleted bool `json:"deleted"`
}

// SessionCookiesResponse is returned by the session-cookies endpoint.
type SessionCookiesResponse struct {
	// SessionID is the inspected session identifier.
	SessionID string `json:"session_id"`

	// Cookies is the session's current cookie set.
	Cookies map[string]string `json:"cookies"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	// Status is "ok" while the service accepts requests.
	Status string `json:"status"`

	// Version is the build version.
	Version string `json:"version,omitempty"`

	// ActiveSessions is the number of named sessions currently held.
	ActiveSessions int `json:"active_sessions"`

	// MaxSessions is the configured session limit.
	MaxSessions int `json:"max_sessions"`
}
