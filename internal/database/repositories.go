package database

import (
	"context"
	"errors"

	"github.com/benvon/goal-insights/internal/models"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("record not found")

// GoalRepositoryInterface defines read access to goals and subgoals
type GoalRepositoryInterface interface {
	GetGoal(ctx context.Context, goalID int64) (*models.Goal, error)
	ListGoalsByIDs(ctx context.Context, goalIDs []int64) ([]models.Goal, error)
	ListActiveGoalIDs(ctx context.Context) ([]int64, error)
	ListSubgoals(ctx context.Context, goalID int64) ([]models.Subgoal, error)
}

// TodoRepositoryInterface defines read access to todos
type TodoRepositoryInterface interface {
	ListTodosByGoal(ctx context.Context, goalID int64) ([]models.Todo, error)
}

// RecordRepositoryInterface is everything the insight engine reads
type RecordRepositoryInterface interface {
	GoalRepositoryInterface
	TodoRepositoryInterface
}

// Ensure concrete types implement the interfaces
var (
	_ GoalRepositoryInterface   = (*GoalRepository)(nil)
	_ TodoRepositoryInterface   = (*TodoRepository)(nil)
	_ RecordRepositoryInterface = (*RecordRepository)(nil)
)

// RecordRepository combines the goal and todo repositories
type RecordRepository struct {
	*GoalRepository
	*TodoRepository
}

// NewRecordRepository creates a record repository over db
func NewRecordRepository(db *DB) *RecordRepository {
	return &RecordRepository{
		GoalRepository: NewGoalRepository(db),
		TodoRepository: NewTodoRepository(db),
	}
}
