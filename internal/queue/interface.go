package queue

import (
	"context"
	"time"
)

// MessageInterface is a delivered job awaiting acknowledgement. Workers take
// this rather than *Message so tests can supply their own.
type MessageInterface interface {
	Ack() error
	Nack(requeue bool) error
	GetJob() *Job
}

// JobQueue carries recompute jobs between the API, the scheduler and workers
type JobQueue interface {
	// Enqueue publishes a job, honouring NotBefore when the broker can delay
	Enqueue(ctx context.Context, job *Job) error

	// Consume delivers jobs until ctx is cancelled or the connection drops,
	// at which point the message channel is closed. Every message must be
	// acked or nacked; prefetchCount caps how many are outstanding.
	Consume(ctx context.Context, prefetchCount int) (<-chan *Message, <-chan error, error)

	Close() error

	// HealthCheck reports whether the broker connection is usable
	HealthCheck(ctx context.Context) error
}

// DLQPurger removes dead-lettered jobs older than a retention period and
// reports how many it dropped
type DLQPurger interface {
	PurgeOlderThan(ctx context.Context, retention time.Duration) (int, error)
}
