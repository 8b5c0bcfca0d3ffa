package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Body is the request body variant: either a structured JSON value
// (object, array, number, bool) sent as application/json, or a raw
// string sent verbatim. The variant is decided once, when the API
// request is decoded.
type Body struct {
	// Raw holds the body when the caller supplied a JSON string.
	Raw string

	// Structured holds the body when the caller supplied any other
	// JSON value.
	Structured json.RawMessage
}

// IsRaw reports whether the body is the raw string variant.
func (b *Body) IsRaw() bool {
	return b.Structured == nil
}

// Bytes returns the wire form of the body.
func (b *Body) Bytes() []byte {
	if b.IsRaw() {
		return []byte(b.Raw)
	}
	return []byte(b.Structured)
}

// UnmarshalJSON decides the variant from the JSON value's shape.
func (b *Body) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		b.Raw = s
		b.Structured = nil
		return nil
	}

	if !json.Valid(data) {
		return fmt.Errorf("body is not valid JSON")
	}
	b.Structured = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON emits the original variant.
func (b *Body) MarshalJSON() ([]byte, error) {
	if b.IsRaw() {
		return json.Marshal(b.Raw)
	}
	return b.Structured, nil
}

// ProxyRequest is the JSON envelope for a proxied request.
type ProxyRequest struct {
	// Method is the HTTP method. Defaults to GET.
	Method string `json:"method"`

	// URL is the absolute target URL. Must use http or https.
	URL string `json:"url"`

	// Headers override or extend the browser-identity baseline.
	Headers map[string]string `json:"headers,omitempty"`

	// Body is the optional request body variant.
	Body *Body `json:"body,omitempty"`

	// SessionID selects a named session. Nil means ephemeral; when
	// present it must be non-empty.
	SessionID *string `json:"session_id,omitempty"`

	// Proxy optionally routes this request through an upstream proxy.
	Proxy string `json:"proxy,omitempty"`
}

// methodsWithoutBody are methods for which a request body is rejected.
var methodsWithoutBody = map[string]bool{
	"GET":     true,
	"HEAD":    true,
	"DELETE":  true,
	"OPTIONS": true,
}

// Validate checks the envelope and normalizes the method. It returns
// an *ErrorResponse describing the first violation found.
func (r *ProxyRequest) Validate() *ErrorResponse {
	if r.Method == "" {
		r.Method = "GET"
	}
	r.Method = strings.ToUpper(r.Method)

	if r.URL == "" {
		return NewInvalidRequestError("url is required", "url", CodeMissingField)
	}
	if !strings.HasPrefix(r.URL, "http://") && !strings.HasPrefix(r.URL, "https://") {
		return NewInvalidRequestError("url must start with http:// or https://", "url", CodeInvalidValue)
	}

	if r.SessionID != nil && *r.SessionID == "" {
		return NewInvalidRequestError("session_id must not be empty", "session_id", CodeInvalidValue)
	}

	if r.Body != nil && len(r.Body.Bytes()) > 0 && methodsWithoutBody[r.Method] {
		return NewInvalidRequestError(
			fmt.Sprintf("method %s does not accept a body", r.Method),
			"body", CodeInvalidValue,
		)
	}

	return nil
}
