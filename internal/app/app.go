// Package app wires configuration into the shared runtime dependencies of
// the server, worker and CLI binaries.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benvon/goal-insights/internal/cache"
	"github.com/benvon/goal-insights/internal/config"
	"github.com/benvon/goal-insights/internal/database"
	"github.com/benvon/goal-insights/internal/engine"
	"github.com/benvon/goal-insights/internal/queue"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Queue connection retry schedule; RabbitMQ is often still starting when
// the API and worker containers come up
const (
	queueConnectAttempts = 10
	queueInitialDelay    = 2 * time.Second
	queueMaxDelay        = 30 * time.Second
)

// Deps are the connections and services a process runs on
type Deps struct {
	Config  *config.Config
	Logger  *zap.Logger
	DB      *database.DB
	Records *database.RecordRepository
	Store   cache.Store
	Redis   *redis.Client // nil with the memory cache backend
	Engine  *engine.Engine
	Queue   *queue.RabbitMQQueue // nil until ConnectQueue

	closers []func() error
}

// Open connects to Postgres and the configured cache backend and builds the
// insight engine over them
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Deps, error) {
	d := &Deps{Config: cfg, Logger: logger}

	db, err := database.New(ctx, cfg.DatabaseURL, database.DefaultPoolConfig)
	if err != nil {
		return nil, err
	}
	d.DB = db
	d.closers = append(d.closers, db.Close)
	d.Records = database.NewRecordRepository(db)
	logger.Info("connected_to_database")

	switch cfg.CacheBackend {
	case config.CacheBackendRedis:
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			_ = d.Close()
			return nil, err
		}
		d.Redis = client
		d.Store = cache.NewRedisStore(client, cache.RedisOptions{EntryTTL: cfg.CacheTTL}, nil, logger)
		d.closers = append(d.closers, client.Close)
		logger.Info("connected_to_redis", zap.Duration("cache_ttl", cfg.CacheTTL))
	default:
		d.Store = cache.NewMemoryStore(nil)
		logger.Info("using_memory_insight_cache")
	}

	d.Engine = engine.New(d.Store, nil, logger)
	d.Engine.SetConcurrency(cfg.Concurrency)
	return d, nil
}

// ConnectQueue dials RabbitMQ, backing off exponentially between attempts
func (d *Deps) ConnectQueue(ctx context.Context) error {
	if err := d.Config.RequireQueue(); err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt < queueConnectAttempts; attempt++ {
		q, err := queue.NewRabbitMQQueue(d.Config.RabbitMQURL, queue.RabbitMQConfig{}, d.Logger)
		if err == nil {
			d.Queue = q
			d.closers = append(d.closers, q.Close)
			d.Logger.Info("connected_to_rabbitmq", zap.Int("prefetch", d.Config.RabbitMQPrefetch))
			return nil
		}
		lastErr = err

		delay := min(queueInitialDelay*time.Duration(1<<attempt), queueMaxDelay)
		d.Logger.Warn("failed_to_connect_to_rabbitmq_retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", queueConnectAttempts),
			zap.Duration("retry_delay", delay),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", queueConnectAttempts, lastErr)
}

// StartDLQCollector purges old dead-lettered jobs until ctx is cancelled
func (d *Deps) StartDLQCollector(ctx context.Context) {
	if d.Queue == nil {
		return
	}
	gc := queue.NewGarbageCollector(d.Queue, d.Config.DLQGCInterval, d.Config.DLQRetention, d.Logger)
	go func() {
		if err := gc.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			d.Logger.Error("dlq_garbage_collector_stopped_with_error", zap.Error(err))
		}
	}()
	d.Logger.Info("started_dlq_garbage_collector",
		zap.Duration("interval", d.Config.DLQGCInterval),
		zap.Duration("retention", d.Config.DLQRetention),
	)
}

// JobQueue returns the queue as an interface, nil when not connected
func (d *Deps) JobQueue() queue.JobQueue {
	if d.Queue == nil {
		return nil
	}
	return d.Queue
}

// Close releases connections in reverse order of opening
func (d *Deps) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return errors.Join(errs...)
}
