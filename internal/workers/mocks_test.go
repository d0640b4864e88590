package workers

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/benvon/goal-insights/internal/database"
	"github.com/benvon/goal-insights/internal/models"
	"github.com/benvon/goal-insights/internal/queue"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

// mockRecords is a mock implementation of RecordRepositoryInterface
type mockRecords struct {
	getGoalFunc           func(ctx context.Context, goalID int64) (*models.Goal, error)
	listActiveGoalIDsFunc func(ctx context.Context) ([]int64, error)
	listTodosByGoalFunc   func(ctx context.Context, goalID int64) ([]models.Todo, error)
}

func (m *mockRecords) GetGoal(ctx context.Context, goalID int64) (*models.Goal, error) {
	if m.getGoalFunc != nil {
		return m.getGoalFunc(ctx, goalID)
	}
	return &models.Goal{ID: goalID, Name: "Goal", Status: models.GoalStatusInProgress}, nil
}

func (m *mockRecords) ListGoalsByIDs(ctx context.Context, goalIDs []int64) ([]models.Goal, error) {
	return nil, errors.New("not implemented")
}

func (m *mockRecords) ListActiveGoalIDs(ctx context.Context) ([]int64, error) {
	if m.listActiveGoalIDsFunc != nil {
		return m.listActiveGoalIDsFunc(ctx)
	}
	return nil, nil
}

func (m *mockRecords) ListSubgoals(ctx context.Context, goalID int64) ([]models.Subgoal, error) {
	return nil, nil
}

func (m *mockRecords) ListTodosByGoal(ctx context.Context, goalID int64) ([]models.Todo, error) {
	if m.listTodosByGoalFunc != nil {
		return m.listTodosByGoalFunc(ctx, goalID)
	}
	end := testNow.Add(-time.Hour)
	return []models.Todo{
		{ID: goalID*10 + 1, GoalID: &goalID, Name: "Done", IsDone: true, EndDate: &end},
		{ID: goalID*10 + 2, GoalID: &goalID, Name: "Open"},
	}, nil
}

// Ensure mock implements interface
var _ database.RecordRepositoryInterface = (*mockRecords)(nil)

// mockJobQueue records enqueued jobs
type mockJobQueue struct {
	mu          sync.Mutex
	enqueued    []*queue.Job
	enqueueFunc func(ctx context.Context, job *queue.Job) error
}

func (m *mockJobQueue) Enqueue(ctx context.Context, job *queue.Job) error {
	if m.enqueueFunc != nil {
		if err := m.enqueueFunc(ctx, job); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enqueued = append(m.enqueued, job)
	return nil
}

func (m *mockJobQueue) Consume(ctx context.Context, prefetchCount int) (<-chan *queue.Message, <-chan error, error) {
	return nil, nil, errors.New("not implemented")
}

func (m *mockJobQueue) Close() error {
	return nil
}

func (m *mockJobQueue) HealthCheck(ctx context.Context) error {
	return nil
}

func (m *mockJobQueue) jobs() []*queue.Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*queue.Job(nil), m.enqueued...)
}

// Ensure mock implements interface
var _ queue.JobQueue = (*mockJobQueue)(nil)

// mockMessage is a mock implementation of MessageInterface
type mockMessage struct {
	job     *queue.Job
	acked   bool
	nacked  bool
	requeue bool
}

func (m *mockMessage) Ack() error {
	m.acked = true
	return nil
}

func (m *mockMessage) Nack(requeue bool) error {
	m.nacked = true
	m.requeue = requeue
	return nil
}

func (m *mockMessage) GetJob() *queue.Job {
	return m.job
}

// Ensure mock implements interface
var _ queue.MessageInterface = (*mockMessage)(nil)
