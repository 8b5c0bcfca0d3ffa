package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Reaper runs the store's expired-session sweep on a cron schedule.
// Schedules use standard cron syntax or the "@every <duration>" form
// (e.g. "@every 1m").
type Reaper struct {
	store    *Store
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewReaper creates a reaper for the given store.
func NewReaper(store *Store, schedule string) *Reaper {
	return &Reaper{
		store:    store,
		schedule: schedule,
		cron:     cron.New(),
		logger:   slog.Default().With("component", "session.reaper"),
	}
}

// Start begins scheduled sweeping. An empty schedule disables the
// reaper; sessions then only leave the store via Delete or Shutdown.
func (r *Reaper) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.schedule == "" {
		r.logger.Info("sweep schedule not configured, skipping reaper")
		return nil
	}

	if _, err := cron.ParseStandard(r.schedule); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", r.schedule, err)
	}

	if _, err := r.cron.AddFunc(r.schedule, r.runSweep); err != nil {
		return fmt.Errorf("failed to schedule sweep: %w", err)
	}

	r.cron.Start()
	r.running = true

	r.logger.Info("session reaper started",
		"schedule", r.schedule,
		"ttl", r.store.ttl,
	)

	go func() {
		<-ctx.Done()
		r.Stop()
	}()

	return nil
}

// runSweep executes one sweep cycle.
func (r *Reaper) runSweep() {
	evicted := r.store.SweepExpired()
	if evicted > 0 {
		r.logger.Info("sweep completed", "evicted", evicted)
	} else {
		r.logger.Debug("sweep completed, no sessions evicted")
	}
}

// Stop stops the reaper and waits for a running sweep to complete.
func (r *Reaper) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cron != nil && r.running {
		ctx := r.cron.Stop()
		<-ctx.Done()
		r.running = false
		r.logger.Info("session reaper stopped")
	}
}

// IsRunning returns true if the reaper is running.
func (r *Reaper) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// NextRun returns the next scheduled sweep time.
func (r *Reaper) NextRun() *time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cron == nil {
		return nil
	}

	entries := r.cron.Entries()
	if len(entries) == 0 {
		return nil
	}

	next := entries[0].Next
	return &next
}
