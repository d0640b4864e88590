package cache

import (
	"context"
	"sync"

	"github.com/benvon/goal-insights/internal/models"
)

// MemoryStore is a process-local Store
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
	locks   *keyLocks
	now     Clock
}

// NewMemoryStore creates an empty in-memory store. A nil clock uses time.Now.
func NewMemoryStore(clock Clock) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]Entry),
		locks:   newKeyLocks(),
		now:     defaultClock(clock),
	}
}

// Get returns the cached entry regardless of its age
func (s *MemoryStore) Get(_ context.Context, entityID string) (*Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[entityID]
	if !ok {
		return nil, false, nil
	}
	return &e, true, nil
}

// ShouldRecompute is true when no entry exists or it was computed on another day
func (s *MemoryStore) ShouldRecompute(ctx context.Context, entityID string) (bool, error) {
	e, _, err := s.Get(ctx, entityID)
	if err != nil {
		return true, err
	}
	return isStale(e, s.now()), nil
}

// Put overwrites the entry, stamping it with today's date
func (s *MemoryStore) Put(_ context.Context, entityID string, bundle models.InsightBundle) error {
	e := Entry{EntityID: entityID, Bundle: bundle, ComputedOn: DateKey(s.now())}

	s.mu.Lock()
	s.entries[entityID] = e
	s.mu.Unlock()
	return nil
}

// Invalidate drops the entry so the next ShouldRecompute is true
func (s *MemoryStore) Invalidate(_ context.Context, entityID string) error {
	s.mu.Lock()
	delete(s.entries, entityID)
	s.mu.Unlock()
	return nil
}

// Lock serialises writers for one entity id
func (s *MemoryStore) Lock(entityID string) func() {
	return s.locks.lock(entityID)
}

// Ping always succeeds
func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

// Len returns the number of cached entities
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
