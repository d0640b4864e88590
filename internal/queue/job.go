package queue

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JobType represents the type of job
type JobType string

const (
	// JobTypeRecomputeInsights invalidates and recomputes one goal's insights
	JobTypeRecomputeInsights JobType = "recompute_insights"
	// JobTypeRefreshAll recomputes every active goal, typically once per day
	JobTypeRefreshAll JobType = "refresh_all"
)

// DefaultMaxRetries is how often a failing job is retried before dead-lettering
const DefaultMaxRetries = 3

// ErrMissingGoalID is returned when a recompute job names no goal
var ErrMissingGoalID = errors.New("recompute job requires a goal id")

// Job represents a job in the queue
type Job struct {
	ID           uuid.UUID  `json:"id"`
	Type         JobType    `json:"type"`
	GoalID       *int64     `json:"goal_id,omitempty"`    // Required for recompute jobs
	Timeframe    string     `json:"timeframe,omitempty"`  // Empty selects the worker's default view
	ForceRefresh bool       `json:"force_refresh"`        // Invalidate before computing
	NotBefore    *time.Time `json:"not_before,omitempty"` // Earliest time to process job (nil = immediate)
	NotAfter     *time.Time `json:"not_after,omitempty"`  // Latest time to process job (nil = no expiration)
	CreatedAt    time.Time  `json:"created_at"`
	RetryCount   int        `json:"retry_count"`
	MaxRetries   int        `json:"max_retries"`
}

// NewJob creates a new job
func NewJob(jobType JobType, goalID *int64) *Job {
	return &Job{
		ID:         uuid.New(),
		Type:       jobType,
		GoalID:     goalID,
		CreatedAt:  time.Now(),
		RetryCount: 0,
		MaxRetries: DefaultMaxRetries,
	}
}

// NewRecomputeJob creates a forced recompute job for one goal
func NewRecomputeJob(goalID int64, timeframe string) *Job {
	job := NewJob(JobTypeRecomputeInsights, &goalID)
	job.Timeframe = timeframe
	job.ForceRefresh = true
	return job
}

// Validate checks that the job carries what its type needs
func (j *Job) Validate() error {
	switch j.Type {
	case JobTypeRecomputeInsights:
		if j.GoalID == nil {
			return ErrMissingGoalID
		}
	case JobTypeRefreshAll:
	default:
		return fmt.Errorf("unknown job type %q", j.Type)
	}
	return nil
}

// ShouldProcess checks if the job should be processed now
func (j *Job) ShouldProcess() bool {
	return j.ShouldProcessAt(time.Now())
}

// ShouldProcessAt checks the NotBefore/NotAfter window against now
func (j *Job) ShouldProcessAt(now time.Time) bool {
	if j.NotBefore != nil && now.Before(*j.NotBefore) {
		return false
	}
	if j.NotAfter != nil && now.After(*j.NotAfter) {
		return false
	}
	return true
}

// IsExpired checks if the job has expired
func (j *Job) IsExpired() bool {
	if j.NotAfter == nil {
		return false
	}
	return time.Now().After(*j.NotAfter)
}

// CanRetry checks if the job can be retried
func (j *Job) CanRetry() bool {
	return j.RetryCount < j.MaxRetries
}

// IncrementRetry increments the retry count
func (j *Job) IncrementRetry() {
	j.RetryCount++
}

// RetryDelay is the backoff before the next attempt: 30s, 1m, 2m, ...
func (j *Job) RetryDelay() time.Duration {
	return 30 * time.Second << max(j.RetryCount-1, 0)
}
