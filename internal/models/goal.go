package models

import (
	"strings"
	"time"
)

// GoalStatus represents the lifecycle state of a goal
type GoalStatus string

const (
	GoalStatusNotStarted GoalStatus = "Not Started"
	GoalStatusInProgress GoalStatus = "In Progress"
	GoalStatusOnHold     GoalStatus = "On Hold"
	GoalStatusCompleted  GoalStatus = "Completed"
)

// Goal is the parent entity that todos and subgoals roll up to
type Goal struct {
	ID          int64      `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Status      GoalStatus `json:"status" yaml:"status"`
	Category    string     `json:"category,omitempty" yaml:"category,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty" yaml:"end_date,omitempty"`
}

// IsCompleted reports whether the goal reached its terminal state
func (g Goal) IsCompleted() bool {
	return strings.EqualFold(string(g.Status), string(GoalStatusCompleted))
}

// Subgoal is a milestone under a goal
type Subgoal struct {
	ID          int64      `json:"id" yaml:"id"`
	GoalID      int64      `json:"goal_id" yaml:"goal_id"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Status      string     `json:"status,omitempty" yaml:"status,omitempty"`
	IsDone      bool       `json:"is_done" yaml:"is_done"`
	EndDate     *time.Time `json:"end_date,omitempty" yaml:"end_date,omitempty"`
}

// IsBehindSchedule reports whether the subgoal status marks it overdue or delayed
func (s Subgoal) IsBehindSchedule() bool {
	status := strings.ToLower(s.Status)
	return strings.Contains(status, "overdue") || strings.Contains(status, "delayed")
}
