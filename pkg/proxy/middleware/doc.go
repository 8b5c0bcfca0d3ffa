// Package middleware provides the HTTP middleware chain: panic
// recovery, request logging, and request id propagation. The server
// composes them as recovery, logging, request id, auth, mux.
package middleware
