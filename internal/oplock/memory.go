package oplock

import (
	"context"
	"sync"

	id "datawipe/pkg/domain"
	"datawipe/pkg/platform/sentinel"
)

type lockState struct {
	writer  bool
	readers int
}

// MemoryLocker implements Locker for a single process. The zero map entry is
// the unlocked state; entries are removed as soon as they drain so the map
// does not grow with user count.
type MemoryLocker struct {
	mu    sync.Mutex
	users map[id.UserID]*lockState
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{users: make(map[id.UserID]*lockState)}
}

func (l *MemoryLocker) AcquireExclusive(_ context.Context, userID id.UserID) (ReleaseFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	state := l.users[userID]
	if state != nil && (state.writer || state.readers > 0) {
		return nil, sentinel.ErrConflict
	}
	if state == nil {
		state = &lockState{}
		l.users[userID] = state
	}
	state.writer = true

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			state.writer = false
			l.cleanup(userID, state)
		})
	}, nil
}

func (l *MemoryLocker) AcquireShared(_ context.Context, userID id.UserID) (ReleaseFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	state := l.users[userID]
	if state != nil && state.writer {
		return nil, sentinel.ErrConflict
	}
	if state == nil {
		state = &lockState{}
		l.users[userID] = state
	}
	state.readers++

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			state.readers--
			l.cleanup(userID, state)
		})
	}, nil
}

// cleanup drops drained entries. Caller holds l.mu.
func (l *MemoryLocker) cleanup(userID id.UserID, state *lockState) {
	if !state.writer && state.readers == 0 {
		delete(l.users, userID)
	}
}
