package engine

import (
	"context"
	"fmt"
	"strconv"

	"github.com/benvon/goal-insights/internal/models"
	"golang.org/x/sync/errgroup"
)

// RecordSource reads the records for one goal. The engine never writes back.
type RecordSource interface {
	GetGoal(ctx context.Context, goalID int64) (*models.Goal, error)
	ListSubgoals(ctx context.Context, goalID int64) ([]models.Subgoal, error)
	ListTodosByGoal(ctx context.Context, goalID int64) ([]models.Todo, error)
}

// GoalEntityID is the cache key for a goal
func GoalEntityID(goalID int64) string {
	return strconv.FormatInt(goalID, 10)
}

// LoadGoal fetches a goal with its subgoals and todos into a Request.
// Subgoals and todos are read concurrently once the goal is known to exist.
func LoadGoal(ctx context.Context, src RecordSource, goalID int64, timeframe string) (Request, error) {
	goal, err := src.GetGoal(ctx, goalID)
	if err != nil {
		return Request{}, err
	}

	var (
		subgoals []models.Subgoal
		todos    []models.Todo
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if subgoals, err = src.ListSubgoals(gctx, goalID); err != nil {
			return fmt.Errorf("failed to load subgoals for goal %d: %w", goalID, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if todos, err = src.ListTodosByGoal(gctx, goalID); err != nil {
			return fmt.Errorf("failed to load todos for goal %d: %w", goalID, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Request{}, err
	}

	return Request{
		EntityID:  GoalEntityID(goalID),
		Timeframe: timeframe,
		Goal:      goal,
		Subgoals:  subgoals,
		Todos:     todos,
	}, nil
}
