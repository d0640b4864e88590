package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/benvon/goal-insights/internal/models"
	"github.com/lib/pq"
)

// GoalRepository reads goaltable and subgoaltable
type GoalRepository struct {
	db *DB
}

// NewGoalRepository creates a new goal repository
func NewGoalRepository(db *DB) *GoalRepository {
	return &GoalRepository{db: db}
}

const goalColumns = `id, name, description, status, category, "endDate"`

func scanGoal(row interface{ Scan(...any) error }) (models.Goal, error) {
	var (
		g           models.Goal
		description sql.NullString
		category    sql.NullString
		endDate     sql.NullTime
	)
	if err := row.Scan(&g.ID, &g.Name, &description, &g.Status, &category, &endDate); err != nil {
		return models.Goal{}, err
	}
	g.Description = description.String
	g.Category = category.String
	if endDate.Valid {
		t := endDate.Time
		g.EndDate = &t
	}
	return g, nil
}

// GetGoal retrieves a goal by ID
func (r *GoalRepository) GetGoal(ctx context.Context, goalID int64) (*models.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goaltable WHERE id = $1`

	g, err := scanGoal(r.db.QueryRowContext(ctx, query, goalID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("goal %d: %w", goalID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}
	return &g, nil
}

// ListGoalsByIDs retrieves several goals, ordered by id
func (r *GoalRepository) ListGoalsByIDs(ctx context.Context, goalIDs []int64) ([]models.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goaltable WHERE id = ANY($1) ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(goalIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer rows.Close()

	goals := []models.Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating goals: %w", err)
	}
	return goals, nil
}

// ListActiveGoalIDs returns the ids of goals that are not completed
func (r *GoalRepository) ListActiveGoalIDs(ctx context.Context) ([]int64, error) {
	query := `SELECT id FROM goaltable WHERE status <> $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, string(models.GoalStatusCompleted))
	if err != nil {
		return nil, fmt.Errorf("failed to list active goals: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan goal id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating goal ids: %w", err)
	}
	return ids, nil
}

// ListSubgoals retrieves the subgoals of a goal, ordered by id
func (r *GoalRepository) ListSubgoals(ctx context.Context, goalID int64) ([]models.Subgoal, error) {
	// subgoaltable stores its date in created_at
	query := `
		SELECT id, goal_id, name, description, status, isdone, created_at
		FROM subgoaltable
		WHERE goal_id = $1
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, goalID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subgoals: %w", err)
	}
	defer rows.Close()

	subgoals := []models.Subgoal{}
	for rows.Next() {
		var (
			sg          models.Subgoal
			description sql.NullString
			isDone      sql.NullBool
			endDate     sql.NullTime
		)
		if err := rows.Scan(&sg.ID, &sg.GoalID, &sg.Name, &description, &sg.Status, &isDone, &endDate); err != nil {
			return nil, fmt.Errorf("failed to scan subgoal: %w", err)
		}
		sg.Description = description.String
		sg.IsDone = isDone.Bool
		if endDate.Valid {
			t := endDate.Time
			sg.EndDate = &t
		}
		subgoals = append(subgoals, sg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subgoals: %w", err)
	}
	return subgoals, nil
}
