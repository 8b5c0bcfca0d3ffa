package recorder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"mercator-hq/callisto/pkg/audit"
)

// blockingStorage lets tests hold writes open to fill the channel.
type blockingStorage struct {
	mu      sync.Mutex
	stored  []*audit.Record
	release chan struct{}
}

func (s *blockingStorage) Store(ctx context.Context, record *audit.Record) error {
	if s.release != nil {
		<-s.release
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stored = append(s.stored, record)
	return nil
}

func (s *blockingStorage) Query(ctx context.Context, q *audit.Query) ([]*audit.Record, error) {
	return nil, nil
}
func (s *blockingStorage) Count(ctx context.Context, q *audit.Query) (int64, error) { return 0, nil }
func (s *blockingStorage) Delete(ctx context.Context, q *audit.Query) (int64, error) {
	return 0, nil
}
func (s *blockingStorage) Close() error { return nil }

func (s *blockingStorage) storedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stored)
}

func TestRecorder_RecordAndDrain(t *testing.T) {
	storage := &blockingStorage{}
	r := NewRecorder(storage, &Config{Enabled: true, AsyncBuffer: 10, WriteTimeout: time.Second})

	for i := 0; i < 5; i++ {
		err := r.Record(context.Background(), &audit.Record{
			RequestID:   "req",
			RequestTime: time.Now(),
			Method:      "GET",
			TargetURL:   "https://example.com",
		})
		if err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	// Close drains all pending records
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if storage.storedCount() != 5 {
		t.Errorf("stored = %d, want 5", storage.storedCount())
	}
}

func TestRecorder_AssignsIdentity(t *testing.T) {
	storage := &blockingStorage{}
	r := NewRecorder(storage, &Config{Enabled: true, AsyncBuffer: 10, WriteTimeout: time.Second})

	record := &audit.Record{Method: "GET", TargetURL: "https://example.com"}
	if err := r.Record(context.Background(), record); err != nil {
		t.Fatalf("Record: %v", err)
	}
	r.Close()

	if record.ID == "" {
		t.Error("Record should assign a UUID")
	}
	if record.RecordedTime.IsZero() {
		t.Error("Record should stamp RecordedTime")
	}
}

func TestRecorder_DisabledIsNoop(t *testing.T) {
	storage := &blockingStorage{}
	r := NewRecorder(storage, &Config{Enabled: false, AsyncBuffer: 10, WriteTimeout: time.Second})

	if err := r.Record(context.Background(), &audit.Record{}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	r.Close()

	if storage.storedCount() != 0 {
		t.Errorf("disabled recorder stored %d records", storage.storedCount())
	}
}

func TestRecorder_DropsWhenBufferFull(t *testing.T) {
	release := make(chan struct{})
	storage := &blockingStorage{release: release}
	r := NewRecorder(storage, &Config{Enabled: true, AsyncBuffer: 1, WriteTimeout: time.Second})

	// First record may be picked up by the worker (blocked in Store),
	// the second sits in the buffer. Keep recording until one is dropped.
	var dropErr error
	for i := 0; i < 5; i++ {
		err := r.Record(context.Background(), &audit.Record{
			Method: "GET", TargetURL: "https://example.com",
		})
		if err != nil {
			dropErr = err
			break
		}
	}

	if dropErr == nil {
		t.Fatal("expected a drop once the buffer filled")
	}
	var recErr *audit.RecorderError
	if !errors.As(dropErr, &recErr) {
		t.Errorf("expected *audit.RecorderError, got %T", dropErr)
	}
	if !errors.Is(dropErr, ErrBufferFull) {
		t.Errorf("expected ErrBufferFull cause, got %v", dropErr)
	}

	close(release)
	r.Close()
}
