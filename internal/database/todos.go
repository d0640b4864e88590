package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/benvon/goal-insights/internal/models"
	"github.com/lib/pq"
)

// TodoRepository reads todotable
type TodoRepository struct {
	db *DB
}

// NewTodoRepository creates a new todo repository
func NewTodoRepository(db *DB) *TodoRepository {
	return &TodoRepository{db: db}
}

// ListTodosByGoal retrieves every todo attached to a goal, ordered by id
func (r *TodoRepository) ListTodosByGoal(ctx context.Context, goalID int64) ([]models.Todo, error) {
	query := `
		SELECT id, name, description, is_done, category, priority, tags,
		       start_date, end_date, goal_id, subgoal_id
		FROM todotable
		WHERE goal_id = $1
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, goalID)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	defer rows.Close()

	todos := []models.Todo{}
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating todos: %w", err)
	}
	return todos, nil
}

func scanTodo(rows *sql.Rows) (models.Todo, error) {
	var (
		t           models.Todo
		description sql.NullString
		isDone      sql.NullBool
		category    sql.NullString
		priority    sql.NullString
		tags        pq.StringArray
		startDate   sql.NullTime
		endDate     sql.NullTime
		goalID      sql.NullInt64
		subgoalID   sql.NullInt64
	)
	err := rows.Scan(
		&t.ID,
		&t.Name,
		&description,
		&isDone,
		&category,
		&priority,
		&tags,
		&startDate,
		&endDate,
		&goalID,
		&subgoalID,
	)
	if err != nil {
		return models.Todo{}, err
	}

	t.Description = description.String
	t.IsDone = isDone.Bool
	t.Category = category.String
	t.Priority = models.Priority(priority.String)
	if len(tags) > 0 {
		t.Tags = []string(tags)
	}
	if startDate.Valid {
		v := startDate.Time
		t.StartDate = &v
	}
	if endDate.Valid {
		v := endDate.Time
		t.EndDate = &v
	}
	if goalID.Valid {
		v := goalID.Int64
		t.GoalID = &v
	}
	if subgoalID.Valid {
		v := subgoalID.Int64
		t.SubgoalID = &v
	}
	return t, nil
}
