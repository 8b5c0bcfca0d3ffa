package session

import (
	"log/slog"
	"sync"
	"time"

	"mercator-hq/callisto/pkg/client"
)

// Metrics receives session lifecycle events. The telemetry collector
// satisfies this; tests use a stub.
type Metrics interface {
	SetActiveSessions(count int)
	RecordSessionCreated()
	RecordSessionDeleted()
	RecordSessionsExpired(count int)
	RecordSessionRejected()
}

// nopMetrics discards all events.
type nopMetrics struct{}

func (nopMetrics) SetActiveSessions(int)    {}
func (nopMetrics) RecordSessionCreated()    {}
func (nopMetrics) RecordSessionDeleted()    {}
func (nopMetrics) RecordSessionsExpired(int) {}
func (nopMetrics) RecordSessionRejected()   {}

// entry is a stored session: the live client and its bookkeeping.
type entry struct {
	client       client.Client
	createdAt    time.Time
	lastUsed     time.Time
	requestCount int64
}

// Info is a point-in-time snapshot of a session's bookkeeping.
type Info struct {
	// CreatedAt is when the session was first created. It never
	// changes for the life of the session.
	CreatedAt time.Time

	// LastUsed is the most recent acquisition time.
	LastUsed time.Time

	// RequestCount is the number of acquisitions, including the one
	// that created the session.
	RequestCount int64
}

// Options configures a Store.
type Options struct {
	// MaxSessions caps the number of named sessions.
	MaxSessions int

	// TTL is the idle time after which a session is eligible for sweep.
	TTL time.Duration

	// Factory creates the outbound client for each session.
	Factory client.Factory

	// Metrics receives lifecycle events. Optional.
	Metrics Metrics

	// Logger is the store's logger. Optional.
	Logger *slog.Logger
}

// Store is a bounded, TTL-evicted map of session id to outbound client.
// All methods are safe for concurrent use.
type Store struct {
	maxSessions int
	ttl         time.Duration
	factory     client.Factory
	metrics     Metrics
	logger      *slog.Logger

	mu       sync.Mutex
	sessions map[string]*entry
	shutdown bool

	// now is replaceable in tests
	now func() time.Time
}

// NewStore creates a session store.
func NewStore(opts Options) *Store {
	metrics := opts.Metrics
	if metrics == nil {
		metrics = nopMetrics{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default().With("component", "session.store")
	}

	return &Store{
		maxSessions: opts.MaxSessions,
		ttl:         opts.TTL,
		factory:     opts.Factory,
		metrics:     metrics,
		logger:      logger,
		sessions:    make(map[string]*entry),
		now:         time.Now,
	}
}

// Acquire returns the client for the named session, creating the
// session if it does not exist. Every acquisition refreshes the
// session's last-use time and increments its request count. Creation
// fails with *CapacityError when the store is full.
func (s *Store) Acquire(id string) (client.Client, error) {
	s.mu.Lock()

	if e, ok := s.sessions[id]; ok {
		e.lastUsed = s.now()
		e.requestCount++
		c := e.client
		s.mu.Unlock()
		return c, nil
	}

	if len(s.sessions) >= s.maxSessions {
		s.mu.Unlock()
		s.metrics.RecordSessionRejected()
		s.logger.Warn("Session creation rejected at capacity",
			"session_id", id,
			"max_sessions", s.maxSessions,
		)
		return nil, &CapacityError{Max: s.maxSessions}
	}

	// Client construction is local work (jar allocation), so holding
	// the lock here keeps create-or-get atomic without spanning I/O.
	c, err := s.factory.New()
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	now := s.now()
	s.sessions[id] = &entry{client: c, createdAt: now, lastUsed: now, requestCount: 1}
	count := len(s.sessions)
	s.mu.Unlock()

	s.metrics.RecordSessionCreated()
	s.metrics.SetActiveSessions(count)
	s.logger.Info("Session created", "session_id", id, "active_sessions", count)

	return c, nil
}

// AcquireEphemeral creates a client that is not stored and does not
// count against the session limit. The caller owns its lifecycle and
// must Close it.
func (s *Store) AcquireEphemeral() (client.Client, error) {
	return s.factory.New()
}

// Delete removes the named session and closes its client. It reports
// whether the session existed. Close failures are logged; the session
// is gone from the store either way.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	e, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	count := len(s.sessions)
	s.mu.Unlock()

	if !ok {
		return false
	}

	if err := e.client.Close(); err != nil {
		s.logger.Warn("Failed to close session client", "session_id", id, "error", err)
	}

	s.metrics.RecordSessionDeleted()
	s.metrics.SetActiveSessions(count)
	s.logger.Info("Session deleted", "session_id", id, "active_sessions", count)

	return true
}

// Cookies returns the cookie snapshot for the named session. The
// second result reports whether the session exists. Reading cookies
// does not refresh the session's last-use time.
func (s *Store) Cookies(id string) (map[string]string, bool) {
	s.mu.Lock()
	e, ok := s.sessions[id]
	s.mu.Unlock()

	if !ok {
		return nil, false
	}
	return e.client.Cookies(), true
}

// Info returns the bookkeeping snapshot for the named session. The
// second result reports whether the session exists. Reading does not
// count as an acquisition.
func (s *Store) Info(id string) (Info, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return Info{}, false
	}
	return Info{
		CreatedAt:    e.createdAt,
		LastUsed:     e.lastUsed,
		RequestCount: e.requestCount,
	}, true
}

// Count returns the number of named sessions currently held.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// MaxSessions returns the configured session limit.
func (s *Store) MaxSessions() int {
	return s.maxSessions
}

// SweepExpired evicts every session idle for longer than the TTL and
// returns the number evicted. Clients are closed inside the critical
// section; the sweep runs on a background schedule, never the request
// path.
func (s *Store) SweepExpired() int {
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	var expired []string
	for id, e := range s.sessions {
		if e.lastUsed.Before(cutoff) {
			if err := e.client.Close(); err != nil {
				s.logger.Warn("Failed to close expired session client", "session_id", id, "error", err)
			}
			delete(s.sessions, id)
			expired = append(expired, id)
		}
	}
	count := len(s.sessions)
	s.mu.Unlock()

	if len(expired) > 0 {
		s.metrics.RecordSessionsExpired(len(expired))
		s.metrics.SetActiveSessions(count)
		s.logger.Info("Expired sessions evicted",
			"evicted", len(expired),
			"active_sessions", count,
		)
	}

	return len(expired)
}

// Shutdown closes every session's client and empties the store. It is
// idempotent; sessions created after Shutdown would be orphaned, so
// callers stop accepting requests first.
func (s *Store) Shutdown() {
	s.mu.Lock()
	if s.shutdown {
		s.mu.Unlock()
		return
	}
	s.shutdown = true
	sessions := s.sessions
	s.sessions = make(map[string]*entry)
	s.mu.Unlock()

	for id, e := range sessions {
		if err := e.client.Close(); err != nil {
			s.logger.Warn("Failed to close session client during shutdown", "session_id", id, "error", err)
		}
	}

	s.metrics.SetActiveSessions(0)
	s.logger.Info("Session store shut down", "closed_sessions", len(sessions))
}
