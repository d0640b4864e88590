package models

import (
	"testing"
	"time"
)

func ptrTime(t time.Time) *time.Time { return &t }

func TestTodo_CompletedAt(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 2, 17, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		todo   Todo
		want   time.Time
		wantOK bool
	}{
		{"open todo", Todo{StartDate: &start, EndDate: &end}, time.Time{}, false},
		{"done with end date", Todo{IsDone: true, StartDate: &start, EndDate: &end}, end, true},
		{"done falls back to start", Todo{IsDone: true, StartDate: &start}, start, true},
		{"done without dates", Todo{IsDone: true}, time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := tt.todo.CompletedAt()
			if ok != tt.wantOK {
				t.Fatalf("Expected ok=%v, got %v", tt.wantOK, ok)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestTodo_Duration(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		todo   Todo
		want   time.Duration
		wantOK bool
	}{
		{"normal", Todo{IsDone: true, StartDate: &start, EndDate: ptrTime(start.Add(3 * time.Hour))}, 3 * time.Hour, true},
		{"end before start is malformed", Todo{IsDone: true, StartDate: &start, EndDate: ptrTime(start.Add(-time.Hour))}, 0, false},
		{"missing end", Todo{IsDone: true, StartDate: &start}, 0, false},
		{"not done", Todo{StartDate: &start, EndDate: ptrTime(start.Add(time.Hour))}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := tt.todo.Duration()
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Expected (%v, %v), got (%v, %v)", tt.want, tt.wantOK, got, ok)
			}
		})
	}
}

func TestTodo_IsOverdue(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	if !(Todo{EndDate: &past}).IsOverdue(now) {
		t.Error("Expected open todo with past end date to be overdue")
	}
	if (Todo{EndDate: &past, IsDone: true}).IsOverdue(now) {
		t.Error("Expected done todo not to be overdue")
	}
	if (Todo{EndDate: &future}).IsOverdue(now) {
		t.Error("Expected future end date not to be overdue")
	}
	if (Todo{}).IsOverdue(now) {
		t.Error("Expected todo without end date not to be overdue")
	}
}

func TestSubgoal_IsBehindSchedule(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status string
		want   bool
	}{
		{"Overdue", true},
		{"delayed by vendor", true},
		{"in_progress", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			t.Parallel()
			if got := (Subgoal{Status: tt.status}).IsBehindSchedule(); got != tt.want {
				t.Errorf("Expected %v for %q, got %v", tt.want, tt.status, got)
			}
		})
	}
}

func TestInsightPriority_Rank(t *testing.T) {
	t.Parallel()

	if !(InsightPriorityHigh.Rank() > InsightPriorityMedium.Rank() &&
		InsightPriorityMedium.Rank() > InsightPriorityLow.Rank() &&
		InsightPriorityLow.Rank() > InsightPriority("bogus").Rank()) {
		t.Error("Expected high > medium > low > unknown")
	}
}
