// Package security groups the security-related subpackages.
// Subpackage auth implements API key authentication for the proxy API.
package security
