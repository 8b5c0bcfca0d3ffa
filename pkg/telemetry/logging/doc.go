// Package logging configures structured logging for Callisto.
//
// Logging is built on log/slog. Setup installs the process-wide default
// logger from configuration (level and format); packages then derive
// component loggers with slog.Default().With("component", ...).
//
// The package also carries request-scoped log fields (request id,
// session id, API key name) through context.Context so that handlers
// and middleware emit correlated log lines.
package logging
