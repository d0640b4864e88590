package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/benvon/goal-insights/internal/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// DefaultKeyPrefix namespaces cache entries as insights:<id>
	DefaultKeyPrefix = "insights:"
	// DefaultEntryTTL keeps an entry a little past the day it was computed on
	DefaultEntryTTL = 48 * time.Hour
	// DefaultLeaseTTL bounds how long a crashed holder can block other processes
	DefaultLeaseTTL = 30 * time.Second

	leaseRetryInterval = 50 * time.Millisecond
	leaseWait          = 5 * time.Second
)

// releaseLease deletes the lease only if this holder still owns it
var releaseLease = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisOptions tunes a RedisStore. Zero values select the defaults.
type RedisOptions struct {
	KeyPrefix string
	EntryTTL  time.Duration
	LeaseTTL  time.Duration
}

// RedisStore keeps entries as JSON in Redis so every server and worker
// process shares one cache. Writers are serialised with a process-local
// mutex plus a SETNX lease across processes.
type RedisStore struct {
	client *redis.Client
	opts   RedisOptions
	locks  *keyLocks
	now    Clock
	logger *zap.Logger
}

// NewRedisClient parses a redis:// URL and verifies the server answers
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewRedisStore wraps an existing client. A nil clock uses time.Now.
func NewRedisStore(client *redis.Client, opts RedisOptions, clock Clock, logger *zap.Logger) *RedisStore {
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = DefaultKeyPrefix
	}
	if opts.EntryTTL <= 0 {
		opts.EntryTTL = DefaultEntryTTL
	}
	if opts.LeaseTTL <= 0 {
		opts.LeaseTTL = DefaultLeaseTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{
		client: client,
		opts:   opts,
		locks:  newKeyLocks(),
		now:    defaultClock(clock),
		logger: logger,
	}
}

func (s *RedisStore) key(entityID string) string {
	return s.opts.KeyPrefix + entityID
}

func (s *RedisStore) leaseKey(entityID string) string {
	return s.opts.KeyPrefix + "lock:" + entityID
}

// Get returns the cached entry regardless of its age
func (s *RedisStore) Get(ctx context.Context, entityID string) (*Entry, bool, error) {
	raw, err := s.client.Get(ctx, s.key(entityID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache entry %s: %w", entityID, err)
	}

	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		// a corrupt entry is treated as missing so it gets rewritten
		s.logger.Warn("cache_entry_corrupt",
			zap.String("entity_id", entityID),
			zap.Error(err))
		return nil, false, nil
	}
	return &e, true, nil
}

// ShouldRecompute is true when no entry exists or it was computed on another day
func (s *RedisStore) ShouldRecompute(ctx context.Context, entityID string) (bool, error) {
	e, _, err := s.Get(ctx, entityID)
	if err != nil {
		return true, err
	}
	return isStale(e, s.now()), nil
}

// Put overwrites the entry, stamping it with today's date
func (s *RedisStore) Put(ctx context.Context, entityID string, bundle models.InsightBundle) error {
	e := Entry{EntityID: entityID, Bundle: bundle, ComputedOn: DateKey(s.now())}
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry %s: %w", entityID, err)
	}
	if err := s.client.Set(ctx, s.key(entityID), raw, s.opts.EntryTTL).Err(); err != nil {
		return fmt.Errorf("failed to write cache entry %s: %w", entityID, err)
	}
	return nil
}

// Invalidate deletes the entry so the next ShouldRecompute is true
func (s *RedisStore) Invalidate(ctx context.Context, entityID string) error {
	if err := s.client.Del(ctx, s.key(entityID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cache entry %s: %w", entityID, err)
	}
	return nil
}

// Lock takes the local mutex for entityID, then waits for the shared lease.
// If the lease cannot be taken in time the caller proceeds with only the
// local lock held.
func (s *RedisStore) Lock(entityID string) func() {
	unlockLocal := s.locks.lock(entityID)

	ctx, cancel := context.WithTimeout(context.Background(), leaseWait)
	defer cancel()

	token := uuid.NewString()
	leaseKey := s.leaseKey(entityID)
	for {
		ok, err := s.client.SetNX(ctx, leaseKey, token, s.opts.LeaseTTL).Result()
		if err == nil && ok {
			return func() {
				releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				if err := releaseLease.Run(releaseCtx, s.client, []string{leaseKey}, token).Err(); err != nil {
					s.logger.Warn("cache_lease_release_failed",
						zap.String("entity_id", entityID),
						zap.Error(err))
				}
				unlockLocal()
			}
		}
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			s.logger.Warn("cache_lease_unavailable",
				zap.String("entity_id", entityID),
				zap.Error(err))
			return unlockLocal
		}

		select {
		case <-ctx.Done():
			s.logger.Warn("cache_lease_timeout", zap.String("entity_id", entityID))
			return unlockLocal
		case <-time.After(leaseRetryInterval):
		}
	}
}

// Ping checks that Redis is reachable
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying client
func (s *RedisStore) Close() error {
	return s.client.Close()
}
