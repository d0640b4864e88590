package models

import (
	"time"
)

// Priority is the urgency tier of a todo
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Priorities lists the tiers from highest to lowest
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// Todo is a single task record as supplied by the persistence layer.
// A done todo's EndDate is its completion timestamp.
type Todo struct {
	ID          int64      `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty" yaml:"end_date,omitempty"`
	IsDone      bool       `json:"is_done" yaml:"is_done"`
	Priority    Priority   `json:"priority,omitempty" yaml:"priority,omitempty"`
	Category    string     `json:"category,omitempty" yaml:"category,omitempty"`
	Tags        []string   `json:"tags,omitempty" yaml:"tags,omitempty"`
	GoalID      *int64     `json:"goal_id,omitempty" yaml:"goal_id,omitempty"`
	SubgoalID   *int64     `json:"subgoal_id,omitempty" yaml:"subgoal_id,omitempty"`
}

// CompletedAt returns the timestamp used to place a done todo in time.
// EndDate is authoritative; StartDate is the fallback.
func (t Todo) CompletedAt() (time.Time, bool) {
	if !t.IsDone {
		return time.Time{}, false
	}
	if t.EndDate != nil {
		return *t.EndDate, true
	}
	if t.StartDate != nil {
		return *t.StartDate, true
	}
	return time.Time{}, false
}

// Duration returns EndDate-StartDate for a done todo. ok is false when either
// date is missing or the end precedes the start.
func (t Todo) Duration() (d time.Duration, ok bool) {
	if !t.IsDone || t.StartDate == nil || t.EndDate == nil {
		return 0, false
	}
	d = t.EndDate.Sub(*t.StartDate)
	if d < 0 {
		return 0, false
	}
	return d, true
}

// IsOverdue reports whether an open todo is past its end date.
func (t Todo) IsOverdue(now time.Time) bool {
	return !t.IsDone && t.EndDate != nil && t.EndDate.Before(now)
}

// ActivityAt returns the most relevant timestamp for "recent activity" checks.
func (t Todo) ActivityAt() (time.Time, bool) {
	if t.EndDate != nil {
		return *t.EndDate, true
	}
	if t.StartDate != nil {
		return *t.StartDate, true
	}
	return time.Time{}, false
}
