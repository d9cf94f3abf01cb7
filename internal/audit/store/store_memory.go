package store

import (
	"context"
	"sync"

	"datawipe/internal/audit"
	id "datawipe/pkg/domain"
)

// MemoryStore keeps audit entries in process memory, in append order. Entries
// are copied on the way in and out so callers cannot reach the stored slice.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []audit.Entry
}

func NewMemory() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(_ context.Context, entry audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, cloneEntry(entry))
	return nil
}

func (s *MemoryStore) ListByUser(_ context.Context, userID id.UserID) ([]audit.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []audit.Entry
	for _, e := range s.entries {
		if e.UserID == userID {
			out = append(out, cloneEntry(e))
		}
	}
	return out, nil
}

func (s *MemoryStore) List(_ context.Context, limit int) ([]audit.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.entries)
	if limit > 0 && limit < n {
		n = limit
	}
	// Newest first, matching the postgres store.
	out := make([]audit.Entry, 0, n)
	for i := len(s.entries) - 1; i >= len(s.entries)-n; i-- {
		out = append(out, cloneEntry(s.entries[i]))
	}
	return out, nil
}

func cloneEntry(e audit.Entry) audit.Entry {
	if e.Results == nil {
		return e
	}
	results := make(audit.Results, len(e.Results))
	for domain, categories := range e.Results {
		copied := make(map[string][]string, len(categories))
		for category, ids := range categories {
			copied[category] = append([]string(nil), ids...)
		}
		results[domain] = copied
	}
	e.Results = results
	return e
}
