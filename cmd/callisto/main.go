// Callisto is a session-preserving HTTP request proxy.
//
// It accepts request envelopes over a JSON API and replays them against
// arbitrary targets with a browser-like identity, providing:
//   - Named sessions that accumulate cookies across requests
//   - Browser-identity header composition per redirect hop
//   - Manual redirect following with a configurable hop limit
//   - An audit trail of proxied requests
//   - Prometheus metrics and structured logging
//
// Usage:
//
//	# Start server with default configuration
//	callisto run
//
//	# Start with custom configuration file
//	callisto run --config /path/to/config.yaml
//
//	# Show version information
//	callisto version
//
//	# Validate a configuration file
//	callisto validate --config /path/to/config.yaml
//
//	# Query the audit trail
//	callisto audit query --time-range "2026-08-23T00:00:00Z/2026-08-24T00:00:00Z"
package main

func main() {
	Execute()
}
