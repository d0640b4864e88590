// Package cache holds the last computed insight bundle per entity and decides
// when a fresh computation is due.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/benvon/goal-insights/internal/models"
)

// Clock returns the current time. Stores read "today" through it.
type Clock func() time.Time

// Entry is one cached bundle and the UTC calendar date it was computed on
type Entry struct {
	EntityID   string               `json:"entity_id"`
	Bundle     models.InsightBundle `json:"bundle"`
	ComputedOn string               `json:"computed_on"`
}

// Store caches insight bundles per entity id.
//
// Callers must consult ShouldRecompute before paying for a computation and
// hold Lock(id) across the ShouldRecompute/Put sequence so concurrent callers
// do not both compute.
type Store interface {
	Get(ctx context.Context, entityID string) (*Entry, bool, error)
	ShouldRecompute(ctx context.Context, entityID string) (bool, error)
	Put(ctx context.Context, entityID string, bundle models.InsightBundle) error
	Invalidate(ctx context.Context, entityID string) error
	Lock(entityID string) (unlock func())
	Ping(ctx context.Context) error
}

// DateKey formats t as the UTC calendar date used for cache freshness
func DateKey(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

func defaultClock(c Clock) Clock {
	if c == nil {
		return time.Now
	}
	return c
}

func isStale(e *Entry, now time.Time) bool {
	return e == nil || e.ComputedOn != DateKey(now)
}

// keyLocks hands out one mutex per key and drops it once nobody holds or
// waits on it.
type keyLocks struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyLocks() *keyLocks {
	return &keyLocks{locks: make(map[string]*keyLock)}
}

func (k *keyLocks) lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Unlock()
			k.mu.Lock()
			l.refs--
			if l.refs == 0 {
				delete(k.locks, key)
			}
			k.mu.Unlock()
		})
	}
}
