package audit

import (
	"context"
	"time"
)

// Record represents the audit trail entry for a single proxied request.
type Record struct {
	// Identity
	ID        string `json:"id"`         // UUID v4
	RequestID string `json:"request_id"` // From the API layer

	// Timestamps
	RequestTime  time.Time `json:"request_time"`  // When the request was received
	RecordedTime time.Time `json:"recorded_time"` // When the record was created

	// Request
	Method    string `json:"method"`               // HTTP method sent upstream
	TargetURL string `json:"target_url"`           // Requested target URL
	SessionID string `json:"session_id,omitempty"` // Named session, empty for ephemeral
	Ephemeral bool   `json:"ephemeral"`            // True when no session was named
	Proxy     bool   `json:"proxy"`                // True when a per-request proxy was used

	// Outcome
	StatusCode    int    `json:"status_code"`         // Final upstream status, 0 on failure
	RedirectCount int    `json:"redirect_count"`      // Redirects followed
	FinalURL      string `json:"final_url,omitempty"` // URL that produced the final response
	ElapsedMS     int64  `json:"elapsed_ms"`          // Total round-trip time

	// Caller
	APIKeyName string `json:"api_key_name,omitempty"` // Authenticated key name, never the key
	RemoteAddr string `json:"remote_addr,omitempty"`  // Client address

	// Error info
	Error     string `json:"error,omitempty"`      // Error message if the request failed
	ErrorCode string `json:"error_code,omitempty"` // Machine-readable error code
}

// Query defines filter parameters for querying audit records.
type Query struct {
	// Time range
	StartTime *time.Time `json:"start_time,omitempty"` // Inclusive start time
	EndTime   *time.Time `json:"end_time,omitempty"`   // Inclusive end time

	// Filters
	SessionID  string `json:"session_id,omitempty"`   // Filter by session
	APIKeyName string `json:"api_key_name,omitempty"` // Filter by key name
	Method     string `json:"method,omitempty"`       // Filter by HTTP method

	// Status is "success" (no error) or "error" (request failed).
	Status string `json:"status,omitempty"`

	// Pagination
	Limit  int `json:"limit,omitempty"`  // Max records to return
	Offset int `json:"offset,omitempty"` // Skip N records

	// Sorting
	SortBy    string `json:"sort_by,omitempty"`    // "request_time", "elapsed_ms"
	SortOrder string `json:"sort_order,omitempty"` // "asc", "desc"
}

// Storage defines the interface for audit storage backends.
// Implementations must be thread-safe and support concurrent access.
type Storage interface {
	// Store persists an audit record.
	Store(ctx context.Context, record *Record) error

	// Query retrieves audit records matching the query filters.
	// Returns an empty slice if no records match.
	Query(ctx context.Context, query *Query) ([]*Record, error)

	// Count returns the number of audit records matching the query filters.
	Count(ctx context.Context, query *Query) (int64, error)

	// Delete removes audit records matching the query filters.
	// Returns the number of records deleted.
	// Used for retention policy enforcement.
	Delete(ctx context.Context, query *Query) (int64, error)

	// Close releases any resources held by the storage backend.
	Close() error
}
