package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// ErrClosed is returned by Do after the client has been closed.
var ErrClosed = errors.New("client is closed")

// proxyKey carries the per-request upstream proxy URL through the
// request context to the transport's Proxy function.
type proxyKey struct{}

// Options configures the net/http client implementation.
type Options struct {
	// Profile is the browser identity label (e.g. "chrome_133").
	Profile string

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// Proxy is the default upstream proxy URL, overridable per request.
	Proxy string

	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool
}

// HTTPClient implements Client on net/http. Redirects are surfaced to
// the caller, never followed. Cookies accumulate in a recording jar so
// they can be enumerated.
type HTTPClient struct {
	profile string
	client  *http.Client
	jar     *recordingJar

	mu     sync.Mutex
	closed bool
}

// HTTPFactory implements Factory for HTTPClient.
type HTTPFactory struct {
	opts         Options
	defaultProxy *url.URL
}

// NewHTTPFactory validates the options and returns a factory. A
// configured default proxy URL must parse and carry a supported scheme.
func NewHTTPFactory(opts Options) (*HTTPFactory, error) {
	var defaultProxy *url.URL
	if opts.Proxy != "" {
		u, err := parseProxyURL(opts.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid default proxy: %w", err)
		}
		defaultProxy = u
	}

	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	return &HTTPFactory{opts: opts, defaultProxy: defaultProxy}, nil
}

// New creates a fresh client with an empty cookie jar.
func (f *HTTPFactory) New() (Client, error) {
	jar, err := newRecordingJar()
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	defaultProxy := f.defaultProxy
	transport := &http.Transport{
		// Per-request proxy selection: the request context carries an
		// override URL, otherwise the factory default applies.
		Proxy: func(req *http.Request) (*url.URL, error) {
			if u, ok := req.Context().Value(proxyKey{}).(*url.URL); ok {
				return u, nil
			}
			if defaultProxy != nil {
				return defaultProxy, nil
			}
			return nil, nil
		},
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
	}
	if f.opts.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &HTTPClient{
		profile: f.opts.Profile,
		jar:     jar,
		client: &http.Client{
			Transport: transport,
			Jar:       jar,
			Timeout:   f.opts.Timeout,
			// Redirect traversal belongs to the proxy core
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}, nil
}

// Profile returns the browser identity label this client carries.
func (c *HTTPClient) Profile() string {
	return c.profile
}

// Do issues a single request and reads the full response body.
func (c *HTTPClient) Do(ctx context.Context, req *Request) (*Response, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	c.mu.Unlock()

	if req.Proxy != "" {
		u, err := parseProxyURL(req.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy: %w", err)
		}
		ctx = context.WithValue(ctx, proxyKey{}, u)
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       respBody,
	}, nil
}

// Cookies returns a snapshot of the cookie jar.
func (c *HTTPClient) Cookies() map[string]string {
	return c.jar.Snapshot()
}

// Close releases idle connections. It is idempotent.
func (c *HTTPClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	if transport, ok := c.client.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
	return nil
}

// parseProxyURL parses and validates an upstream proxy URL.
func parseProxyURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "http", "https", "socks5":
	default:
		return nil, fmt.Errorf("unsupported proxy scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("proxy URL %q has no host", raw)
	}
	return u, nil
}
