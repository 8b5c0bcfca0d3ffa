package retention

import (
	"context"
	"fmt"
	"testing"
	"time"

	"mercator-hq/callisto/pkg/audit"
	"mercator-hq/callisto/pkg/audit/storage"
)

func seedRecords(t *testing.T, s audit.Storage, ages ...time.Duration) {
	t.Helper()
	ctx := context.Background()
	now := time.Now()

	for i, age := range ages {
		record := &audit.Record{
			ID:           fmt.Sprintf("rec-%d", i),
			RequestID:    fmt.Sprintf("req-%d", i),
			RequestTime:  now.Add(-age),
			RecordedTime: now,
			Method:       "GET",
			TargetURL:    "https://example.com",
		}
		if err := s.Store(ctx, record); err != nil {
			t.Fatalf("Store: %v", err)
		}
	}
}

func TestPruner_PruneByAge(t *testing.T) {
	s := storage.NewMemoryStorage()
	seedRecords(t, s,
		100*24*time.Hour, // well past retention
		40*24*time.Hour,  // past retention
		time.Hour,        // recent
	)

	pruner := NewPruner(s, &Config{RetentionDays: 30})

	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted = %d, want 2", deleted)
	}
	if s.Size() != 1 {
		t.Errorf("remaining = %d, want 1", s.Size())
	}
}

func TestPruner_PruneByCount(t *testing.T) {
	s := storage.NewMemoryStorage()
	seedRecords(t, s,
		5*time.Hour,
		4*time.Hour,
		3*time.Hour,
		2*time.Hour,
		time.Hour,
	)

	pruner := NewPruner(s, &Config{RetentionDays: 0, MaxRecords: 3})

	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted = %d, want 2", deleted)
	}
	if s.Size() != 3 {
		t.Errorf("remaining = %d, want 3", s.Size())
	}

	// The oldest records go first
	results, err := s.Query(context.Background(), &audit.Query{SortOrder: "asc"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if results[0].ID != "rec-2" {
		t.Errorf("oldest surviving record = %s, want rec-2", results[0].ID)
	}
}

func TestPruner_NothingToPrune(t *testing.T) {
	s := storage.NewMemoryStorage()
	seedRecords(t, s, time.Hour, 2*time.Hour)

	pruner := NewPruner(s, &Config{RetentionDays: 30, MaxRecords: 10})

	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if deleted != 0 {
		t.Errorf("deleted = %d, want 0", deleted)
	}
	if s.Size() != 2 {
		t.Errorf("remaining = %d, want 2", s.Size())
	}
}

func TestPruner_ZeroConfigKeepsEverything(t *testing.T) {
	s := storage.NewMemoryStorage()
	seedRecords(t, s, 365*24*time.Hour)

	pruner := NewPruner(s, &Config{RetentionDays: 0, MaxRecords: 0})

	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if deleted != 0 {
		t.Errorf("deleted = %d, want 0", deleted)
	}
}

func TestPruner_CombinedPhases(t *testing.T) {
	s := storage.NewMemoryStorage()
	seedRecords(t, s,
		60*24*time.Hour, // pruned by age
		3*time.Hour,
		2*time.Hour,
		time.Hour,
	)

	pruner := NewPruner(s, &Config{RetentionDays: 30, MaxRecords: 2})

	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	// One by age, one more by count
	if deleted != 2 {
		t.Errorf("deleted = %d, want 2", deleted)
	}
	if s.Size() != 2 {
		t.Errorf("remaining = %d, want 2", s.Size())
	}
}
