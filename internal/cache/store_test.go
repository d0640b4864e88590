package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/benvon/goal-insights/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, time.June, 15, 23, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newRedisStore(t *testing.T, clock Clock) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, RedisOptions{}, clock, zap.NewNop())
}

// storeFactories runs every contract test against both implementations
func storeFactories() map[string]func(t *testing.T, clock Clock) Store {
	return map[string]func(t *testing.T, clock Clock) Store{
		"memory": func(_ *testing.T, clock Clock) Store { return NewMemoryStore(clock) },
		"redis":  func(t *testing.T, clock Clock) Store { return newRedisStore(t, clock) },
	}
}

func testBundle(id string) models.InsightBundle {
	return models.InsightBundle{
		EntityID:    id,
		Timeframe:   "month",
		GeneratedAt: time.Date(2024, time.June, 15, 23, 30, 0, 0, time.UTC),
		Insights:    []models.Insight{{ID: "epic-streak", Priority: models.InsightPriorityMedium, Impact: 80}},
	}
}

func TestStore_MissingEntry(t *testing.T) {
	t.Parallel()

	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			s := factory(t, newFakeClock().Now)

			e, ok, err := s.Get(ctx, "goal-1")
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Nil(t, e)

			recompute, err := s.ShouldRecompute(ctx, "goal-1")
			require.NoError(t, err)
			assert.True(t, recompute)
		})
	}
}

func TestStore_PutThenFreshSameDay(t *testing.T) {
	t.Parallel()

	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			clock := newFakeClock()
			s := factory(t, clock.Now)

			require.NoError(t, s.Put(ctx, "goal-1", testBundle("goal-1")))

			e, ok, err := s.Get(ctx, "goal-1")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, "2024-06-15", e.ComputedOn)
			assert.Equal(t, "goal-1", e.EntityID)
			assert.Equal(t, "epic-streak", e.Bundle.Insights[0].ID)

			recompute, err := s.ShouldRecompute(ctx, "goal-1")
			require.NoError(t, err)
			assert.False(t, recompute)

			clock.Advance(29 * time.Minute)
			recompute, err = s.ShouldRecompute(ctx, "goal-1")
			require.NoError(t, err)
			assert.False(t, recompute)
		})
	}
}

func TestStore_DateRollover(t *testing.T) {
	t.Parallel()

	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			clock := newFakeClock()
			s := factory(t, clock.Now)

			require.NoError(t, s.Put(ctx, "goal-1", testBundle("goal-1")))
			clock.Advance(time.Hour)

			recompute, err := s.ShouldRecompute(ctx, "goal-1")
			require.NoError(t, err)
			assert.True(t, recompute)

			// stale entries are still readable by callers that accept them
			_, ok, err := s.Get(ctx, "goal-1")
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestStore_Invalidate(t *testing.T) {
	t.Parallel()

	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			s := factory(t, newFakeClock().Now)

			require.NoError(t, s.Put(ctx, "goal-1", testBundle("goal-1")))
			require.NoError(t, s.Put(ctx, "goal-2", testBundle("goal-2")))
			require.NoError(t, s.Invalidate(ctx, "goal-1"))

			recompute, err := s.ShouldRecompute(ctx, "goal-1")
			require.NoError(t, err)
			assert.True(t, recompute)

			recompute, err = s.ShouldRecompute(ctx, "goal-2")
			require.NoError(t, err)
			assert.False(t, recompute)

			// invalidating a missing entry is not an error
			assert.NoError(t, s.Invalidate(ctx, "goal-404"))
		})
	}
}

func TestStore_LockSerialisesPerKey(t *testing.T) {
	t.Parallel()

	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			s := factory(t, newFakeClock().Now)

			var (
				wg       sync.WaitGroup
				mu       sync.Mutex
				computes int
			)
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					unlock := s.Lock("goal-1")
					defer unlock()

					recompute, err := s.ShouldRecompute(ctx, "goal-1")
					if err != nil || !recompute {
						return
					}
					mu.Lock()
					computes++
					mu.Unlock()
					_ = s.Put(ctx, "goal-1", testBundle("goal-1"))
				}()
			}
			wg.Wait()
			assert.Equal(t, 1, computes)
		})
	}
}

func TestMemoryStore_LocksAreReleased(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore(nil)
	unlock := s.Lock("goal-1")
	unlock()
	unlock()

	s.locks.mu.Lock()
	defer s.locks.mu.Unlock()
	assert.Empty(t, s.locks.locks)
}

func TestRedisStore_KeyLayout(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	s := NewRedisStore(client, RedisOptions{}, newFakeClock().Now, nil)

	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "42", testBundle("42")))
	assert.True(t, mr.Exists("insights:42"))
	assert.Equal(t, DefaultEntryTTL, mr.TTL("insights:42"))

	unlock := s.Lock("42")
	assert.True(t, mr.Exists("insights:lock:42"))
	unlock()
	assert.False(t, mr.Exists("insights:lock:42"))
}

func TestRedisStore_CorruptEntryIsMissing(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	s := NewRedisStore(client, RedisOptions{}, newFakeClock().Now, zap.NewNop())

	require.NoError(t, mr.Set("insights:7", "{not json"))

	ctx := context.Background()
	_, ok, err := s.Get(ctx, "7")
	require.NoError(t, err)
	assert.False(t, ok)

	recompute, err := s.ShouldRecompute(ctx, "7")
	require.NoError(t, err)
	assert.True(t, recompute)
}

func TestRedisStore_UnreachableServer(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	s := NewRedisStore(client, RedisOptions{}, newFakeClock().Now, zap.NewNop())
	mr.Close()

	ctx := context.Background()
	recompute, err := s.ShouldRecompute(ctx, "1")
	assert.Error(t, err)
	assert.True(t, recompute)
	assert.Error(t, s.Ping(ctx))
}

func TestDateKey(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+10", 10*60*60)
	assert.Equal(t, "2024-06-15", DateKey(time.Date(2024, time.June, 16, 9, 0, 0, 0, loc)))
}
