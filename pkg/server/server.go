package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"mercator-hq/callisto/pkg/config"
	"mercator-hq/callisto/pkg/proxy/handlers"
	"mercator-hq/callisto/pkg/proxy/middleware"
	"mercator-hq/callisto/pkg/security/auth"
)

// Options carries the assembled components the server serves. The run
// command builds these from configuration; tests supply stubs.
type Options struct {
	// Version is reported by the health endpoint.
	Version string

	// Executor runs proxied requests.
	Executor handlers.Executor

	// Store is the session lifecycle surface.
	Store handlers.SessionStore

	// Recorder records audit entries. May be nil to disable auditing.
	Recorder handlers.AuditRecorder

	// Validator checks API keys. May be nil to disable authentication.
	Validator *auth.Validator

	// Metrics serves the Prometheus exposition endpoint. May be nil to
	// leave the metrics route unregistered.
	Metrics http.Handler
}

// Server is the main HTTP API server.
type Server struct {
	config       *config.Config
	opts         Options
	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates a new API server.
func NewServer(cfg *config.Config, opts Options) *Server {
	return &Server{
		config:       cfg,
		opts:         opts,
		shutdownChan: make(chan struct{}),
		isRunning:    false,
	}
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	handler := s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:           s.config.Server.ListenAddress,
		Handler:        handler,
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		IdleTimeout:    s.config.Server.IdleTimeout,
		MaxHeaderBytes: s.config.Server.MaxHeaderBytes,
	}

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting API server",
			"address", s.config.Server.ListenAddress,
			"auth_enabled", s.opts.Validator != nil,
		)

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	// Set up signal handlers
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		slog.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		// Unblocks Start when shutdown is triggered directly.
		close(s.shutdownChan)

		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		slog.Info("initiating graceful shutdown", "timeout", s.config.Server.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("API server stopped")
	})

	return shutdownErr
}

// setupRoutes configures HTTP routes and middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	// Create handlers
	proxyHandler := handlers.NewProxyHandler(s.opts.Executor, s.opts.Recorder)
	createHandler := handlers.NewSessionCreateHandler(s.opts.Store)
	deleteHandler := handlers.NewSessionDeleteHandler(s.opts.Store)
	cookiesHandler := handlers.NewSessionCookiesHandler(s.opts.Store)
	healthHandler := handlers.NewHealthHandler(s.opts.Store, s.opts.Version)

	// Register routes
	mux.Handle("POST /proxy/request", proxyHandler)
	mux.Handle("POST /proxy/session/create", createHandler)
	mux.Handle("DELETE /proxy/session/{id}", deleteHandler)
	mux.Handle("GET /proxy/session/{id}/cookies", cookiesHandler)
	mux.Handle("GET /health", healthHandler)

	metricsPath := s.config.Telemetry.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	if s.opts.Metrics != nil {
		mux.Handle("GET "+metricsPath, s.opts.Metrics)
	}

	// Apply middleware chain
	var handler http.Handler = mux

	// Auth middleware (probes and metrics stay reachable without a key)
	if s.opts.Validator != nil {
		authMW := auth.NewMiddleware(s.opts.Validator, s.config.Auth.Header, "/health", metricsPath)
		handler = authMW.Handle(handler)
	}

	// Request ID middleware
	handler = middleware.RequestIDMiddleware(handler)

	// Logging middleware
	handler = middleware.LoggingMiddleware(handler)

	// Recovery middleware (outermost)
	handler = middleware.RecoveryMiddleware(handler)

	return handler
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the configured HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// Health performs a health check on the server.
func (s *Server) Health() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return fmt.Errorf("server is not running")
	}

	return nil
}
