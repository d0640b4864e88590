package analytics

import (
	"time"

	"github.com/benvon/goal-insights/internal/models"
)

// testNow is a Saturday
var testNow = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func daysAgo(n int) *time.Time {
	t := testNow.AddDate(0, 0, -n)
	return &t
}

func hoursAgo(h float64) *time.Time {
	t := testNow.Add(-time.Duration(h * float64(time.Hour)))
	return &t
}

// doneTodo is completed endDaysAgo, having started startDaysAgo
func doneTodo(id int64, startDaysAgo, endDaysAgo int) models.Todo {
	return models.Todo{ID: id, Name: "task", IsDone: true, StartDate: daysAgo(startDaysAgo), EndDate: daysAgo(endDaysAgo)}
}

func openTodo(id int64, startDaysAgo int) models.Todo {
	return models.Todo{ID: id, Name: "task", StartDate: daysAgo(startDaysAgo)}
}

// sessionTodo is a done todo that took the given number of hours and ended now
func sessionTodo(id int64, hours float64) models.Todo {
	return models.Todo{ID: id, IsDone: true, StartDate: hoursAgo(hours), EndDate: ptr(testNow)}
}
