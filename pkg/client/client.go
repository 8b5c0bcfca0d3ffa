package client

import (
	"context"
	"net/http"
)

// Request describes a single outbound HTTP request. The client issues
// it exactly as given and never follows redirects.
type Request struct {
	// Method is the HTTP method (GET, POST, ...).
	Method string

	// URL is the absolute target URL.
	URL string

	// Headers are sent verbatim. Later writes of the same key replace
	// earlier ones; the client adds nothing beyond transport-mandated
	// headers (Host, Content-Length).
	Headers map[string]string

	// Body is the request body, nil for bodyless requests.
	Body []byte

	// Proxy optionally routes this request through an upstream proxy
	// (http, https, or socks5 URL), overriding the client's default.
	Proxy string
}

// Response is the result of a single outbound request.
type Response struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Header contains the response headers with repeated values intact.
	Header http.Header

	// Body is the fully read response body.
	Body []byte
}

// Client is a stateful outbound HTTP client bound to one session.
//
// Implementations must be safe for concurrent use by multiple
// goroutines, must not follow redirects, and must persist cookies
// across requests until Close.
type Client interface {
	// Do issues a single request and reads the full response body.
	Do(ctx context.Context, req *Request) (*Response, error)

	// Cookies returns a snapshot of the cookie jar as name to value
	// pairs. When the same cookie name exists for several domains the
	// most recently set value wins.
	Cookies() map[string]string

	// Close releases the client's resources. Subsequent Do calls fail.
	// Close is idempotent.
	Close() error
}

// Factory creates Clients. The session store uses one factory for all
// sessions so every handle shares the same identity profile and
// timeout configuration.
type Factory interface {
	New() (Client, error)
}
