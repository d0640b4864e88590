package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/benvon/goal-insights/internal/queue"
	"go.uber.org/zap"
)

// RefreshOffset is how long after UTC midnight the daily refresh runs
const RefreshOffset = 5 * time.Minute

// Scheduler enqueues the daily refresh of every active goal. Bundles are
// cached per UTC day, so a refresh just after midnight warms the new day.
type Scheduler struct {
	jobQueue  queue.JobQueue
	timeframe string
	logger    *zap.Logger
	now       func() time.Time
}

// NewScheduler creates a new scheduler
func NewScheduler(jobQueue queue.JobQueue, timeframe string, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		jobQueue:  jobQueue,
		timeframe: timeframe,
		logger:    logger,
		now:       time.Now,
	}
}

// NextRefreshTime returns the first refresh slot after now
func NextRefreshTime(now time.Time) time.Time {
	now = now.UTC()
	slot := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).Add(RefreshOffset)
	if !now.Before(slot) {
		slot = slot.AddDate(0, 0, 1)
	}
	return slot
}

// ScheduleDailyRefresh enqueues a refresh_all job for the next slot and
// returns when it becomes due
func (s *Scheduler) ScheduleDailyRefresh(ctx context.Context) (time.Time, error) {
	next := NextRefreshTime(s.now())

	job := queue.NewJob(queue.JobTypeRefreshAll, nil)
	job.Timeframe = s.timeframe
	job.NotBefore = &next

	// A refresh that has not run by the following day is pointless
	notAfter := next.Add(24 * time.Hour)
	job.NotAfter = &notAfter

	if err := s.jobQueue.Enqueue(ctx, job); err != nil {
		return time.Time{}, fmt.Errorf("failed to enqueue refresh job: %w", err)
	}

	s.logger.Info("scheduled_daily_refresh",
		zap.String("job_id", job.ID.String()),
		zap.Time("not_before", next),
	)
	return next, nil
}

// Start schedules one refresh per day until ctx is cancelled. A failed
// enqueue is retried after retryInterval.
func (s *Scheduler) Start(ctx context.Context, retryInterval time.Duration) {
	for {
		wait := retryInterval
		next, err := s.ScheduleDailyRefresh(ctx)
		if err != nil {
			s.logger.Error("daily_refresh_schedule_failed", zap.Error(err))
		} else {
			wait = next.Sub(s.now())
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}
