package workers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benvon/goal-insights/internal/database"
	"github.com/benvon/goal-insights/internal/engine"
	"github.com/benvon/goal-insights/internal/queue"
	"go.uber.org/zap"
)

// InsightWorker recomputes cached insight bundles from queued jobs
type InsightWorker struct {
	engine   *engine.Engine
	records  database.RecordRepositoryInterface
	jobQueue queue.JobQueue // For re-enqueueing jobs with delays
	logger   *zap.Logger
	now      func() time.Time

	defaultTimeframe string // Used when a job names no timeframe
}

// NewInsightWorker creates a new insight worker
func NewInsightWorker(
	eng *engine.Engine,
	records database.RecordRepositoryInterface,
	jobQueue queue.JobQueue,
	defaultTimeframe string,
	logger *zap.Logger,
) *InsightWorker {
	return &InsightWorker{
		engine:           eng,
		records:          records,
		jobQueue:         jobQueue,
		logger:           logger,
		now:              eng.Now,
		defaultTimeframe: defaultTimeframe,
	}
}

func (w *InsightWorker) timeframe(job *queue.Job) string {
	if job.Timeframe != "" {
		return job.Timeframe
	}
	return w.defaultTimeframe
}

// ProcessRecomputeJob invalidates and recomputes a single goal
func (w *InsightWorker) ProcessRecomputeJob(ctx context.Context, job *queue.Job) error {
	if job.GoalID == nil {
		return queue.ErrMissingGoalID
	}

	req, err := engine.LoadGoal(ctx, w.records, *job.GoalID, w.timeframe(job))
	if err != nil {
		return err
	}
	req.ForceRefresh = job.ForceRefresh

	bundle, cached, err := w.engine.Compute(ctx, req)
	if err != nil {
		return err
	}

	w.logger.Info("goal_insights_recomputed",
		zap.Int64("goal_id", *job.GoalID),
		zap.String("timeframe", bundle.Timeframe),
		zap.Int("insight_count", len(bundle.Insights)),
		zap.Bool("cached", cached),
	)
	return nil
}

// ProcessRefreshAllJob computes every active goal. Goals deleted between
// listing and loading are skipped.
func (w *InsightWorker) ProcessRefreshAllJob(ctx context.Context, job *queue.Job) error {
	timeframe := w.timeframe(job)
	goalIDs, err := w.records.ListActiveGoalIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active goals: %w", err)
	}

	reqs := make([]engine.Request, 0, len(goalIDs))
	for _, goalID := range goalIDs {
		req, err := engine.LoadGoal(ctx, w.records, goalID, timeframe)
		if errors.Is(err, database.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		req.ForceRefresh = job.ForceRefresh
		reqs = append(reqs, req)
	}

	results, err := w.engine.ComputeMany(ctx, reqs)
	if err != nil {
		return err
	}

	fresh := 0
	for _, r := range results {
		if !r.Cached {
			fresh++
		}
	}
	w.logger.Info("refreshed_all_goal_insights",
		zap.Int("goal_count", len(reqs)),
		zap.String("timeframe", timeframe),
		zap.Int("recomputed", fresh),
	)
	return nil
}

// ProcessJob processes a job based on its type
func (w *InsightWorker) ProcessJob(ctx context.Context, msg queue.MessageInterface) error {
	job := msg.GetJob()
	if job == nil {
		if nackErr := msg.Nack(false); nackErr != nil {
			w.logger.Warn("job_nack_failed", zap.Error(nackErr))
		}
		return errors.New("message carries no job")
	}

	if err := job.Validate(); err != nil {
		if nackErr := msg.Nack(false); nackErr != nil { // Invalid job, send to DLQ
			w.logger.Warn("job_nack_failed", zap.String("job_id", job.ID.String()), zap.Error(nackErr))
		}
		return fmt.Errorf("invalid job %s: %w", job.ID, err)
	}

	now := w.now()
	if job.NotAfter != nil && now.After(*job.NotAfter) {
		w.logger.Info("job_expired_dropped",
			zap.String("job_id", job.ID.String()),
			zap.Time("not_after", *job.NotAfter),
		)
		return w.ack(msg)
	}

	// Without the delayed exchange a deferred job can arrive early
	if !job.ShouldProcessAt(now) {
		return w.deferJob(ctx, msg, job)
	}

	var err error
	switch job.Type {
	case queue.JobTypeRecomputeInsights:
		err = w.ProcessRecomputeJob(ctx, job)
	case queue.JobTypeRefreshAll:
		err = w.ProcessRefreshAllJob(ctx, job)
	}
	if err != nil {
		return w.handleJobError(ctx, msg, job, err)
	}
	return w.ack(msg)
}

func (w *InsightWorker) ack(msg queue.MessageInterface) error {
	if ackErr := msg.Ack(); ackErr != nil {
		return fmt.Errorf("failed to ack job: %w", ackErr)
	}
	return nil
}

// deferJob puts a not-yet-due job back on the queue unchanged
func (w *InsightWorker) deferJob(ctx context.Context, msg queue.MessageInterface, job *queue.Job) error {
	if w.jobQueue == nil {
		return msg.Nack(true)
	}
	if err := w.jobQueue.Enqueue(ctx, job); err != nil {
		if nackErr := msg.Nack(true); nackErr != nil {
			w.logger.Warn("job_nack_failed", zap.String("job_id", job.ID.String()), zap.Error(nackErr))
		}
		return fmt.Errorf("failed to defer job %s: %w", job.ID, err)
	}
	w.logger.Debug("job_not_ready_deferred",
		zap.String("job_id", job.ID.String()),
		zap.Timep("not_before", job.NotBefore),
	)
	return w.ack(msg)
}

// handleJobError retries with backoff, or dead-letters once retries run
// out or the failure cannot succeed on retry.
func (w *InsightWorker) handleJobError(ctx context.Context, msg queue.MessageInterface, job *queue.Job, err error) error {
	permanent := errors.Is(err, database.ErrNotFound) || errors.Is(err, queue.ErrMissingGoalID)
	if permanent || !job.CanRetry() || w.jobQueue == nil {
		w.logger.Error("job_failed_dead_lettered",
			zap.String("job_id", job.ID.String()),
			zap.String("job_type", string(job.Type)),
			zap.Int("retry_count", job.RetryCount),
			zap.Error(err),
		)
		if nackErr := msg.Nack(false); nackErr != nil {
			w.logger.Warn("job_nack_failed", zap.String("job_id", job.ID.String()), zap.Error(nackErr))
		}
		return fmt.Errorf("job %s failed: %w", job.ID, err)
	}

	retry := *job
	retry.IncrementRetry()
	notBefore := w.now().Add(retry.RetryDelay())
	retry.NotBefore = &notBefore

	if enqueueErr := w.jobQueue.Enqueue(ctx, &retry); enqueueErr != nil {
		if nackErr := msg.Nack(false); nackErr != nil {
			w.logger.Warn("job_nack_failed", zap.String("job_id", job.ID.String()), zap.Error(nackErr))
		}
		return fmt.Errorf("job %s failed, re-enqueue failed: %w", job.ID, enqueueErr)
	}

	w.logger.Warn("job_failed_retry_scheduled",
		zap.String("job_id", job.ID.String()),
		zap.Int("retry_count", retry.RetryCount),
		zap.Time("not_before", notBefore),
		zap.Error(err),
	)
	return w.ack(msg)
}
