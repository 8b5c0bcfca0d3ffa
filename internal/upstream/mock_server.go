// Package upstream provides a mock target server for proxy tests.
package upstream

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"
)

// MockServer is a mock HTTP target for testing the proxy pipeline.
// It simulates redirect chains, cookie handshakes, and slow or failing
// endpoints.
type MockServer struct {
	server       *httptest.Server
	responses    map[string]MockResponse
	requestCount int
	lastHeaders  http.Header
	mu           sync.Mutex
}

// MockResponse defines a mock response configuration.
type MockResponse struct {
	StatusCode int
	Body       any
	Delay      time.Duration
	Headers    map[string]string

	// RedirectTo issues a Location header relative to the server root.
	RedirectTo string

	// SetCookies are emitted as Set-Cookie headers.
	SetCookies map[string]string

	// EchoCookies replaces Body with a JSON object of received cookies.
	EchoCookies bool
}

// NewMockServer creates a new mock target server.
func NewMockServer() *MockServer {
	ms := &MockServer{
		responses: make(map[string]MockResponse),
	}
	ms.server = httptest.NewServer(http.HandlerFunc(ms.handler))
	return ms
}

// URL returns the mock server's base URL.
func (ms *MockServer) URL() string {
	return ms.server.URL
}

// Close closes the mock server.
func (ms *MockServer) Close() {
	ms.server.Close()
}

// SetResponse sets a mock response for a specific endpoint.
func (ms *MockServer) SetResponse(path string, response MockResponse) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.responses[path] = response
}

// SetRedirect registers a redirect from path to target with the given
// status code.
func (ms *MockServer) SetRedirect(path, target string, statusCode int) {
	ms.SetResponse(path, MockResponse{StatusCode: statusCode, RedirectTo: target})
}

// SetJSON registers a 200 JSON response.
func (ms *MockServer) SetJSON(path string, body any) {
	ms.SetResponse(path, MockResponse{StatusCode: http.StatusOK, Body: body})
}

// RequestCount returns the number of requests received.
func (ms *MockServer) RequestCount() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	return ms.requestCount
}

// ResetRequestCount resets the request counter.
func (ms *MockServer) ResetRequestCount() {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.requestCount = 0
}

// LastHeaders returns the headers of the most recent request.
func (ms *MockServer) LastHeaders() http.Header {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	return ms.lastHeaders
}

// handler handles incoming HTTP requests.
func (ms *MockServer) handler(w http.ResponseWriter, r *http.Request) {
	ms.mu.Lock()
	ms.requestCount++
	ms.lastHeaders = r.Header.Clone()
	response, ok := ms.responses[r.URL.Path]
	ms.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}

	if response.Delay > 0 {
		time.Sleep(response.Delay)
	}

	for key, value := range response.Headers {
		w.Header().Set(key, value)
	}

	for name, value := range response.SetCookies {
		http.SetCookie(w, &http.Cookie{Name: name, Value: value, Path: "/"})
	}

	if response.RedirectTo != "" {
		w.Header().Set("Location", response.RedirectTo)
		w.WriteHeader(response.StatusCode)
		return
	}

	if response.EchoCookies {
		cookies := make(map[string]string)
		for _, c := range r.Cookies() {
			cookies[c.Name] = c.Value
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(cookies)
		return
	}

	statusCode := response.StatusCode
	if statusCode == 0 {
		statusCode = http.StatusOK
	}
	w.WriteHeader(statusCode)

	if response.Body != nil {
		switch v := response.Body.(type) {
		case string:
			_, _ = w.Write([]byte(v))
		case []byte:
			_, _ = w.Write(v)
		default:
			_ = json.NewEncoder(w).Encode(response.Body)
		}
	}
}

// ExpectHeader checks if a request header contains a specific value.
func ExpectHeader(h http.Header, key, value string) error {
	actual := h.Get(key)
	if !strings.Contains(actual, value) {
		return fmt.Errorf("header %q mismatch: expected %q, got %q", key, value, actual)
	}
	return nil
}
