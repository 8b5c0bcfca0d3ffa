package storage

import (
	"context"
	"sort"
	"sync"

	"mercator-hq/callisto/pkg/audit"
)

// MemoryStorage implements the Storage interface using an in-memory map.
// Records do not survive a restart.
type MemoryStorage struct {
	records map[string]*audit.Record
	mu      sync.RWMutex
}

// NewMemoryStorage creates a new in-memory storage backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		records: make(map[string]*audit.Record),
	}
}

// Store persists an audit record to memory.
func (s *MemoryStorage) Store(ctx context.Context, record *audit.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Create a copy to avoid mutation
	recordCopy := *record
	s.records[record.ID] = &recordCopy

	return nil
}

// Query retrieves audit records matching the query filters.
func (s *MemoryStorage) Query(ctx context.Context, query *audit.Query) ([]*audit.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []*audit.Record

	for _, record := range s.records {
		if matchesQuery(record, query) {
			recordCopy := *record
			results = append(results, &recordCopy)
		}
	}

	sortRecords(results, query)

	// Apply pagination
	start := query.Offset
	if start > len(results) {
		return []*audit.Record{}, nil
	}

	end := start + query.Limit
	if end > len(results) {
		end = len(results)
	}

	if query.Limit > 0 {
		results = results[start:end]
	} else if start > 0 {
		results = results[start:]
	}

	return results, nil
}

// Count returns the number of audit records matching the query filters.
func (s *MemoryStorage) Count(ctx context.Context, query *audit.Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, record := range s.records {
		if matchesQuery(record, query) {
			count++
		}
	}

	return count, nil
}

// Delete removes audit records matching the query filters.
func (s *MemoryStorage) Delete(ctx context.Context, query *audit.Query) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64

	toDelete := []string{}
	for id, record := range s.records {
		if matchesQuery(record, query) {
			toDelete = append(toDelete, id)
		}
	}

	for _, id := range toDelete {
		delete(s.records, id)
		deleted++
	}

	return deleted, nil
}

// Close releases resources held by the storage backend.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]*audit.Record)
	return nil
}

// Size returns the number of records in storage (for testing).
func (s *MemoryStorage) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}

// GetByID retrieves a single audit record by ID (for testing).
func (s *MemoryStorage) GetByID(id string) *audit.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return nil
	}

	recordCopy := *record
	return &recordCopy
}

// matchesQuery checks if a record matches the query filters.
func matchesQuery(record *audit.Record, query *audit.Query) bool {
	// Time range filter
	if query.StartTime != nil && record.RequestTime.Before(*query.StartTime) {
		return false
	}
	if query.EndTime != nil && record.RequestTime.After(*query.EndTime) {
		return false
	}

	// Session/key filter
	if query.SessionID != "" && record.SessionID != query.SessionID {
		return false
	}
	if query.APIKeyName != "" && record.APIKeyName != query.APIKeyName {
		return false
	}

	// Method filter
	if query.Method != "" && record.Method != query.Method {
		return false
	}

	// Status filter
	if query.Status != "" {
		switch query.Status {
		case "success":
			if record.Error != "" {
				return false
			}
		case "error":
			if record.Error == "" {
				return false
			}
		}
	}

	return true
}

// sortRecords orders results per the query. Default is request_time
// descending, matching the SQLite backend.
func sortRecords(records []*audit.Record, query *audit.Query) {
	asc := query.SortOrder == "asc"

	switch query.SortBy {
	case "elapsed_ms":
		sort.Slice(records, func(i, j int) bool {
			if asc {
				return records[i].ElapsedMS < records[j].ElapsedMS
			}
			return records[i].ElapsedMS > records[j].ElapsedMS
		})
	default:
		sort.Slice(records, func(i, j int) bool {
			if asc {
				return records[i].RequestTime.Before(records[j].RequestTime)
			}
			return records[i].RequestTime.After(records[j].RequestTime)
		})
	}
}
