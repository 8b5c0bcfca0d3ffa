package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"mercator-hq/callisto/pkg/client"
)

// fakeClient counts closes and serves canned cookies.
type fakeClient struct {
	mu      sync.Mutex
	closed  int
	cookies map[string]string
}

func (f *fakeClient) Do(ctx context.Context, req *client.Request) (*client.Response, error) {
	return &client.Response{StatusCode: 200}, nil
}

func (f *fakeClient) Cookies() map[string]string {
	if f.cookies == nil {
		return map[string]string{}
	}
	return f.cookies
}

func (f *fakeClient) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func (f *fakeClient) closeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// fakeFactory hands out fresh fakeClients and remembers them.
type fakeFactory struct {
	mu      sync.Mutex
	created []*fakeClient
	err     error
}

func (f *fakeFactory) New() (client.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	c := &fakeClient{}
	f.created = append(f.created, c)
	return c, nil
}

func newTestStore(maxSessions int, ttl time.Duration) (*Store, *fakeFactory) {
	factory := &fakeFactory{}
	store := NewStore(Options{
		MaxSessions: maxSessions,
		TTL:         ttl,
		Factory:     factory,
	})
	return store, factory
}

// ==============================
// Acquire
// ==============================

func TestAcquire_SameIDSameClient(t *testing.T) {
	store, _ := newTestStore(10, time.Hour)

	first, err := store.Acquire("alpha")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	second, err := store.Acquire("alpha")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	if first != second {
		t.Error("expected the same client for repeated acquires of one id")
	}
	if store.Count() != 1 {
		t.Errorf("expected 1 session, got %d", store.Count())
	}
}

func TestAcquire_DistinctIDsDistinctClients(t *testing.T) {
	store, _ := newTestStore(10, time.Hour)

	a, _ := store.Acquire("alpha")
	b, _ := store.Acquire("beta")

	if a == b {
		t.Error("expected distinct clients for distinct ids")
	}
	if store.Count() != 2 {
		t.Errorf("expected 2 sessions, got %d", store.Count())
	}
}

func TestAcquire_CapacityExceeded(t *testing.T) {
	store, _ := newTestStore(2, time.Hour)

	store.Acquire("one")
	store.Acquire("two")

	_, err := store.Acquire("three")
	if err == nil {
		t.Fatal("expected capacity error")
	}

	var capErr *CapacityError
	if !errors.As(err, &capErr) {
		t.Fatalf("expected *CapacityError, got %T", err)
	}
	if capErr.Max != 2 {
		t.Errorf("expected Max 2, got %d", capErr.Max)
	}

	// Existing sessions are untouched
	if store.Count() != 2 {
		t.Errorf("expected 2 sessions after rejection, got %d", store.Count())
	}
	if _, err := store.Acquire("one"); err != nil {
		t.Errorf("existing session should still acquire: %v", err)
	}
}

func TestAcquire_FactoryError(t *testing.T) {
	factory := &fakeFactory{err: errors.New("jar failure")}
	store := NewStore(Options{MaxSessions: 5, TTL: time.Hour, Factory: factory})

	if _, err := store.Acquire("x"); err == nil {
		t.Fatal("expected factory error to propagate")
	}
	if store.Count() != 0 {
		t.Errorf("failed create must not leave a session, got %d", store.Count())
	}
}

func TestAcquireEphemeral_DoesNotCount(t *testing.T) {
	store, _ := newTestStore(1, time.Hour)

	store.Acquire("named")

	// Store is at capacity, ephemeral clients are still available
	c, err := store.AcquireEphemeral()
	if err != nil {
		t.Fatalf("AcquireEphemeral: %v", err)
	}
	if c == nil {
		t.Fatal("expected a client")
	}
	if store.Count() != 1 {
		t.Errorf("ephemeral client must not be stored, count %d", store.Count())
	}
}

func TestAcquire_RequestCountStrictlyIncreases(t *testing.T) {
	store, _ := newTestStore(10, time.Hour)

	base := time.Now()
	store.now = func() time.Time { return base }

	store.Acquire("alpha")
	info, ok := store.Info("alpha")
	if !ok {
		t.Fatal("expected session to exist")
	}
	if info.RequestCount != 1 {
		t.Fatalf("expected request count 1 after create, got %d", info.RequestCount)
	}
	if !info.CreatedAt.Equal(base) {
		t.Errorf("expected creation time %v, got %v", base, info.CreatedAt)
	}

	prev := info.RequestCount
	for i := 1; i <= 5; i++ {
		store.Acquire("alpha")
		info, _ = store.Info("alpha")
		if info.RequestCount <= prev {
			t.Fatalf("request count must strictly increase, got %d after %d", info.RequestCount, prev)
		}
		prev = info.RequestCount
	}

	// Re-acquiring moves last-use forward but never the creation time
	store.now = func() time.Time { return base.Add(time.Minute) }
	store.Acquire("alpha")
	info, _ = store.Info("alpha")
	if !info.CreatedAt.Equal(base) {
		t.Errorf("creation time must not move on re-acquire, got %v", info.CreatedAt)
	}
	if !info.LastUsed.Equal(base.Add(time.Minute)) {
		t.Errorf("expected last-use %v, got %v", base.Add(time.Minute), info.LastUsed)
	}
}

func TestInfo_Absent(t *testing.T) {
	store, _ := newTestStore(10, time.Hour)
	if _, ok := store.Info("ghost"); ok {
		t.Error("expected absent session to report false")
	}
}

// ==============================
// Delete and Cookies
// ==============================

func TestDelete_ExistingClosesClient(t *testing.T) {
	store, factory := newTestStore(10, time.Hour)

	store.Acquire("alpha")
	if !store.Delete("alpha") {
		t.Error("expected Delete to report existence")
	}
	if store.Count() != 0 {
		t.Errorf("expected 0 sessions, got %d", store.Count())
	}
	if factory.created[0].closeCount() != 1 {
		t.Errorf("expected client closed once, got %d", factory.created[0].closeCount())
	}
}

func TestDelete_Absent(t *testing.T) {
	store, _ := newTestStore(10, time.Hour)
	if store.Delete("ghost") {
		t.Error("expected Delete of absent session to report false")
	}
}

func TestCookies(t *testing.T) {
	store, factory := newTestStore(10, time.Hour)

	store.Acquire("alpha")
	factory.created[0].cookies = map[string]string{"token": "abc"}

	cookies, ok := store.Cookies("alpha")
	if !ok {
		t.Fatal("expected session to exist")
	}
	if cookies["token"] != "abc" {
		t.Errorf("expected cookie snapshot, got %v", cookies)
	}

	if _, ok := store.Cookies("ghost"); ok {
		t.Error("expected absent session to report false")
	}
}

// ==============================
// Sweep
// ==============================

func TestSweepExpired_EvictsIdleSessions(t *testing.T) {
	store, factory := newTestStore(10, time.Hour)

	base := time.Now()
	store.now = func() time.Time { return base }

	store.Acquire("old")
	store.Acquire("fresh")

	// "old" idles past the TTL, "fresh" is re-acquired midway
	store.now = func() time.Time { return base.Add(45 * time.Minute) }
	store.Acquire("fresh")

	store.now = func() time.Time { return base.Add(90 * time.Minute) }
	evicted := store.SweepExpired()

	if evicted != 1 {
		t.Fatalf("expected 1 eviction, got %d", evicted)
	}
	if store.Count() != 1 {
		t.Errorf("expected 1 remaining session, got %d", store.Count())
	}
	if _, ok := store.Cookies("old"); ok {
		t.Error("expected old session gone")
	}
	if _, ok := store.Cookies("fresh"); !ok {
		t.Error("expected fresh session kept")
	}
	if factory.created[0].closeCount() != 1 {
		t.Error("expected evicted session's client closed")
	}
}

func TestSweepExpired_NothingExpired(t *testing.T) {
	store, _ := newTestStore(10, time.Hour)
	store.Acquire("alpha")

	if evicted := store.SweepExpired(); evicted != 0 {
		t.Errorf("expected 0 evictions, got %d", evicted)
	}
	if store.Count() != 1 {
		t.Errorf("expected session kept, count %d", store.Count())
	}
}

func TestAcquire_RefreshesTTL(t *testing.T) {
	store, _ := newTestStore(10, time.Hour)

	base := time.Now()
	store.now = func() time.Time { return base }
	store.Acquire("alpha")

	// Keep touching the session every 40 minutes; it must survive sweeps
	for i := 1; i <= 3; i++ {
		store.now = func() time.Time { return base.Add(time.Duration(i) * 40 * time.Minute) }
		store.Acquire("alpha")
		if evicted := store.SweepExpired(); evicted != 0 {
			t.Fatalf("refreshed session swept at step %d", i)
		}
	}
}

// ==============================
// Shutdown
// ==============================

func TestShutdown_ClosesAllClients(t *testing.T) {
	store, factory := newTestStore(10, time.Hour)

	store.Acquire("one")
	store.Acquire("two")

	store.Shutdown()

	if store.Count() != 0 {
		t.Errorf("expected empty store after shutdown, got %d", store.Count())
	}
	for i, c := range factory.created {
		if c.closeCount() != 1 {
			t.Errorf("client %d closed %d times, want 1", i, c.closeCount())
		}
	}
}

func TestShutdown_Idempotent(t *testing.T) {
	store, factory := newTestStore(10, time.Hour)
	store.Acquire("one")

	store.Shutdown()
	store.Shutdown()

	if factory.created[0].closeCount() != 1 {
		t.Errorf("expected exactly one close, got %d", factory.created[0].closeCount())
	}
}

// ==============================
// Concurrency
// ==============================

func TestAcquire_ConcurrentSameID(t *testing.T) {
	store, factory := newTestStore(10, time.Hour)

	var wg sync.WaitGroup
	clients := make([]client.Client, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := store.Acquire("shared")
			if err != nil {
				t.Errorf("Acquire: %v", err)
				return
			}
			clients[i] = c
		}(i)
	}
	wg.Wait()

	for i := 1; i < len(clients); i++ {
		if clients[i] != clients[0] {
			t.Fatal("concurrent acquires of one id returned different clients")
		}
	}
	if len(factory.created) != 1 {
		t.Errorf("expected exactly one client created, got %d", len(factory.created))
	}
}

func TestAcquire_ConcurrentDistinctIDsUpToCapacity(t *testing.T) {
	store, factory := newTestStore(8, time.Hour)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded, rejected := 0, 0
	for i := 0; i < 9; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := store.Acquire(fmt.Sprintf("session-%d", i))

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
				return
			}
			var capErr *CapacityError
			if !errors.As(err, &capErr) {
				t.Errorf("expected *CapacityError, got %v", err)
				return
			}
			rejected++
		}(i)
	}
	wg.Wait()

	if succeeded != 8 {
		t.Errorf("expected 8 successful acquires, got %d", succeeded)
	}
	if rejected != 1 {
		t.Errorf("expected 1 capacity rejection, got %d", rejected)
	}
	if store.Count() != 8 {
		t.Errorf("expected 8 sessions, got %d", store.Count())
	}
	if len(factory.created) != 8 {
		t.Errorf("expected exactly 8 clients created, got %d", len(factory.created))
	}
}
