package handlers

import (
	"context"

	"mercator-hq/callisto/pkg/audit"
	"mercator-hq/callisto/pkg/client"
	"mercator-hq/callisto/pkg/proxy/types"
)

// Executor runs a proxied request end to end.
type Executor interface {
	Execute(ctx context.Context, req *types.ProxyRequest) (*types.ProxyResponse, error)
}

// SessionStore is the session lifecycle surface the handlers need.
type SessionStore interface {
	Acquire(id string) (client.Client, error)
	Delete(id string) bool
	Cookies(id string) (map[string]string, bool)
	Count() int
	MaxSessions() int
}

// AuditRecorder records audit entries for proxied requests.
// A nil recorder disables auditing.
type AuditRecorder interface {
	Record(ctx context.Context, record *audit.Record) error
}
