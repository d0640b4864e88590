package analytics

import (
	"testing"

	"github.com/benvon/goal-insights/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeatmap(t *testing.T) {
	t.Parallel()

	todos := []models.Todo{
		doneTodo(1, 1, 0),
		doneTodo(2, 1, 0),
		doneTodo(3, 1, 0),
		doneTodo(4, 5, 3),
		doneTodo(5, 60, 50),
	}

	days := Heatmap(todos, testNow)
	require.Len(t, days, HeatmapDays)
	assert.Equal(t, dayKey(*daysAgo(41)), days[0].Date)

	today := days[HeatmapDays-1]
	assert.Equal(t, dayKey(testNow), today.Date)
	assert.Equal(t, 3, today.Completions)
	assert.Equal(t, 1.0, today.Intensity)

	threeAgo := days[HeatmapDays-4]
	assert.Equal(t, 1, threeAgo.Completions)
	assert.InDelta(t, 1.0/3, threeAgo.Intensity, 1e-9)
}

func TestHeatmap_Empty(t *testing.T) {
	t.Parallel()

	for _, d := range Heatmap(nil, testNow) {
		assert.Zero(t, d.Completions)
		assert.Zero(t, d.Intensity)
	}
}
