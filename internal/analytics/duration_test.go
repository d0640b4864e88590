package analytics

import (
	"testing"

	"github.com/benvon/goal-insights/internal/models"
	"github.com/stretchr/testify/assert"
)

func sessionSet() []models.Todo {
	return []models.Todo{
		sessionTodo(1, 0.5),
		sessionTodo(2, 2),
		sessionTodo(3, 10),
		sessionTodo(4, 48),
		sessionTodo(5, 100),
		{ID: 6, IsDone: true, StartDate: daysAgo(1), EndDate: daysAgo(2)},
		{ID: 7, IsDone: true, EndDate: daysAgo(2)},
		openTodo(8, 3),
	}
}

func TestTimeDistribution(t *testing.T) {
	t.Parallel()

	got := TimeDistribution(sessionSet())
	assert.Equal(t, []models.DurationBucket{
		{Range: "Quick (< 1h)", Count: 1},
		{Range: "Short (1-4h)", Count: 1},
		{Range: "Medium (4h-1d)", Count: 1},
		{Range: "Long (1-3d)", Count: 1},
		{Range: "Extended (3d+)", Count: 1},
	}, got)
}

func TestTimeDistribution_Empty(t *testing.T) {
	t.Parallel()

	for _, b := range TimeDistribution(nil) {
		assert.Zero(t, b.Count)
	}
}

func TestAnalyzeFocusTime(t *testing.T) {
	t.Parallel()

	got := AnalyzeFocusTime(sessionSet())
	assert.Equal(t, models.FocusTime{
		AverageHours:       4.2,
		LongestHours:       10,
		ShortestHours:      0.5,
		DeepWorkSessions:   2,
		DeepWorkPercentage: 67,
		TotalHours:         12.5,
		SessionCount:       3,
	}, got)
}

func TestAnalyzeFocusTime_NoRealisticSessions(t *testing.T) {
	t.Parallel()

	assert.Equal(t, models.FocusTime{}, AnalyzeFocusTime([]models.Todo{sessionTodo(1, 30)}))
}
