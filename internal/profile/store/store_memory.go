package store

import (
	"context"
	"sync"

	"datawipe/internal/profile"
	id "datawipe/pkg/domain"
	"datawipe/pkg/platform/sentinel"
)

// MemoryStore is an in-memory profile store for tests and single-node
// deployments without a database.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[id.UserID]*profile.Profile
}

func NewMemory() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[id.UserID]*profile.Profile),
	}
}

// Put seeds a profile, replacing any existing one for the same user.
func (s *MemoryStore) Put(p profile.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.UserID] = &p
}

func (s *MemoryStore) FindByUser(_ context.Context, userID id.UserID) (*profile.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryStore) Update(_ context.Context, p *profile.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[p.UserID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *p
	s.profiles[p.UserID] = &cp
	return nil
}
