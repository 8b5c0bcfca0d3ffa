// Package server provides the main HTTP API server for Callisto.
//
// This package ties together all proxy components (handlers, middleware,
// session store, audit recorder) and provides server lifecycle management
// including start, shutdown, and health checks.
//
// # Architecture
//
// The server package is the top-level orchestrator that:
//   - Sets up HTTP routes and handlers
//   - Chains middleware for cross-cutting concerns
//   - Manages graceful shutdown
//   - Handles OS signals (SIGTERM, SIGINT)
//
// Component assembly (session store, redirect executor, audit storage)
// happens in the run command; the server receives the finished pieces
// through Options.
//
// # Basic Usage
//
// Creating and starting a server:
//
//	import (
//	    "context"
//	    "mercator-hq/callisto/pkg/config"
//	    "mercator-hq/callisto/pkg/server"
//	)
//
//	cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	srv := server.NewServer(cfg, server.Options{
//	    Version:  "1.0.0",
//	    Executor: executor,
//	    Store:    store,
//	})
//	if err := srv.Start(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// The server handles graceful shutdown automatically when receiving SIGTERM
// or SIGINT:
//
//	// Or trigger shutdown programmatically:
//	if err := srv.Shutdown(context.Background()); err != nil {
//	    log.Error("shutdown error", "error", err)
//	}
//
// The shutdown process:
//  1. Stops accepting new connections
//  2. Waits for active connections to complete (up to shutdown timeout)
//  3. Forces connection closure if timeout exceeded
//
// # Routes
//
// The server exposes the following HTTP endpoints:
//
//   - POST /proxy/request - Execute a proxied request
//   - POST /proxy/session/create - Allocate a named session
//   - DELETE /proxy/session/{id} - Delete a named session
//   - GET /proxy/session/{id}/cookies - Read a session's cookies
//   - GET /health - Liveness probe
//   - GET /metrics - Prometheus metrics (when enabled)
//
// # Middleware Chain
//
// Requests pass through the following middleware (innermost to outermost):
//  1. Auth: API key validation (skips /health and /metrics)
//  2. RequestID: Generates unique request ID for tracing
//  3. Logging: Logs request/response details
//  4. Recovery: Recovers from panics and returns 500 error
//
// # Thread Safety
//
// All server operations are thread-safe and can be called concurrently from
// multiple goroutines.
package server
