// Package engine is the top-level compute entry point: it windows the
// records, runs the calculators, synthesizes insights and keeps the cache
// current.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benvon/goal-insights/internal/analytics"
	"github.com/benvon/goal-insights/internal/cache"
	"github.com/benvon/goal-insights/internal/insights"
	"github.com/benvon/goal-insights/internal/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const tracerName = "github.com/benvon/goal-insights/internal/engine"

// DefaultConcurrency bounds ComputeMany when no limit is set
const DefaultConcurrency = 4

// Request is one computation for one entity
type Request struct {
	EntityID     string
	Timeframe    string
	Goal         *models.Goal
	Goals        []models.Goal
	Subgoals     []models.Subgoal
	Todos        []models.Todo
	ForceRefresh bool
}

func (r Request) input() analytics.Input {
	return analytics.Input{Goal: r.Goal, Goals: r.Goals, Subgoals: r.Subgoals, Todos: r.Todos}
}

// Result is a computed or cached bundle
type Result struct {
	Bundle *models.InsightBundle
	Cached bool
}

// Engine computes insight bundles through a cache
type Engine struct {
	store       cache.Store
	now         cache.Clock
	logger      *zap.Logger
	tracer      trace.Tracer
	rules       []insights.Rule
	concurrency int
}

// New creates an engine. A nil clock uses time.Now.
func New(store cache.Store, clock cache.Clock, logger *zap.Logger) *Engine {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:       store,
		now:         clock,
		logger:      logger,
		tracer:      otel.Tracer(tracerName),
		rules:       insights.DefaultRules,
		concurrency: DefaultConcurrency,
	}
}

// SetTracerProvider replaces the global tracer provider for this engine
func (e *Engine) SetTracerProvider(tp trace.TracerProvider) {
	e.tracer = tp.Tracer(tracerName)
}

// SetRules replaces the insight rule battery
func (e *Engine) SetRules(rules []insights.Rule) {
	e.rules = rules
}

// SetConcurrency bounds how many entities ComputeMany works on at once
func (e *Engine) SetConcurrency(n int) {
	if n > 0 {
		e.concurrency = n
	}
}

// CacheKey is the cache entry key for one entity viewed over one timeframe
func CacheKey(entityID string, tf analytics.Timeframe) string {
	return entityID + ":" + string(tf)
}

// Compute returns the bundle for req.EntityID, reusing today's cached
// bundle for the same timeframe unless ForceRefresh is set. The bool
// reports a cache hit.
func (e *Engine) Compute(ctx context.Context, req Request) (*models.InsightBundle, bool, error) {
	tf, err := analytics.ParseTimeframe(req.Timeframe)
	if err != nil {
		return nil, false, err
	}
	if req.EntityID == "" {
		return nil, false, fmt.Errorf("entity id is required")
	}
	key := CacheKey(req.EntityID, tf)

	ctx, span := e.tracer.Start(ctx, "engine.Compute", trace.WithAttributes(
		attribute.String("insights.entity_id", req.EntityID),
		attribute.String("insights.timeframe", string(tf)),
		attribute.Bool("insights.force_refresh", req.ForceRefresh),
	))
	defer span.End()

	unlock := e.store.Lock(key)
	defer unlock()

	if req.ForceRefresh {
		if err := e.store.Invalidate(ctx, key); err != nil {
			e.logger.Warn("insight_cache_invalidate_failed",
				zap.String("entity_id", req.EntityID),
				zap.String("timeframe", string(tf)),
				zap.Error(err))
		}
	}

	if bundle, ok := e.cached(ctx, key); ok {
		span.SetAttributes(attribute.Bool("insights.cached", true))
		return bundle, true, nil
	}

	now := e.now()
	start := time.Now()
	metrics := analytics.Compute(now, tf, req.input())
	bundle := &models.InsightBundle{
		EntityID:    req.EntityID,
		Timeframe:   string(tf),
		GeneratedAt: now.UTC(),
		Metrics:     metrics,
		Insights:    insights.SynthesizeWith(e.rules, metrics, string(tf)),
	}

	if err := e.store.Put(ctx, key, *bundle); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "cache write failed")
		e.logger.Warn("insight_cache_write_failed",
			zap.String("entity_id", req.EntityID),
			zap.String("timeframe", string(tf)),
			zap.Error(err))
	}

	span.SetAttributes(
		attribute.Bool("insights.cached", false),
		attribute.Int("insights.count", len(bundle.Insights)),
	)
	e.logger.Debug("insight_bundle_computed",
		zap.String("entity_id", req.EntityID),
		zap.String("timeframe", string(tf)),
		zap.Int("records", len(req.Todos)),
		zap.Int("insights", len(bundle.Insights)),
		zap.Duration("duration", time.Since(start)))

	return bundle, false, nil
}

// Lookup returns today's cached bundle for entityID without loading any
// records. A miss, a stale entry and a cache read failure all report false.
func (e *Engine) Lookup(ctx context.Context, entityID, timeframe string) (*models.InsightBundle, bool, error) {
	tf, err := analytics.ParseTimeframe(timeframe)
	if err != nil {
		return nil, false, err
	}
	bundle, ok := e.cached(ctx, CacheKey(entityID, tf))
	return bundle, ok, nil
}

// cached returns the entry under key when it was computed today.
// Cache read failures fall through to a recompute.
func (e *Engine) cached(ctx context.Context, key string) (*models.InsightBundle, bool) {
	stale, err := e.store.ShouldRecompute(ctx, key)
	if err != nil {
		e.logger.Warn("insight_cache_read_failed",
			zap.String("key", key),
			zap.Error(err))
		return nil, false
	}
	if stale {
		return nil, false
	}
	entry, ok, err := e.store.Get(ctx, key)
	if err != nil || !ok {
		return nil, false
	}
	return &entry.Bundle, true
}

// ComputeMany runs Compute for each request in parallel. Results keep the
// order of reqs. The first error cancels the remaining work.
func (e *Engine) ComputeMany(ctx context.Context, reqs []Request) ([]Result, error) {
	results := make([]Result, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, req := range reqs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			bundle, cached, err := e.Compute(gctx, req)
			if err != nil {
				return fmt.Errorf("failed to compute insights for %s: %w", req.EntityID, err)
			}
			results[i] = Result{Bundle: bundle, Cached: cached}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Invalidate drops the cached bundles for entityID under every timeframe
func (e *Engine) Invalidate(ctx context.Context, entityID string) error {
	var errs []error
	for _, tf := range analytics.Timeframes {
		key := CacheKey(entityID, tf)
		unlock := e.store.Lock(key)
		if err := e.store.Invalidate(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("failed to invalidate %s: %w", key, err))
		}
		unlock()
	}
	return errors.Join(errs...)
}

// Now returns the engine clock's current time
func (e *Engine) Now() time.Time {
	return e.now()
}
