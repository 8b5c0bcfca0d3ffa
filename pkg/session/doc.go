// Package session implements the bounded, TTL-evicted store of proxy
// sessions. Each session binds a caller-chosen identifier to a live
// outbound client whose cookie jar carries browser state across
// requests.
//
// The store holds one mutex scoped to map mutation. It is never held
// across network I/O: request execution happens after Acquire returns.
// Expired sessions are evicted by a Reaper running on a cron schedule;
// eviction closes the underlying client inside the critical section,
// which is acceptable because the sweep runs on a background schedule,
// not the request path.
package session
