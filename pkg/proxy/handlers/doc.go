// Package handlers implements the HTTP handlers for the proxy API:
// proxied request execution, session lifecycle (create, delete,
// cookie inspection), and the health endpoint.
package handlers
