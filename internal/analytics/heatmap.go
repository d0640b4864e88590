package analytics

import (
	"time"

	"github.com/benvon/goal-insights/internal/models"
)

// HeatmapDays is the length of the trailing heatmap window
const HeatmapDays = 42

// Heatmap counts completions per day over the trailing window, oldest first.
// Intensity is each day's count relative to the busiest day in the window.
func Heatmap(todos []models.Todo, now time.Time) []models.HeatmapDay {
	counts := make(map[string]int)
	for _, t := range todos {
		if t.IsDone && t.EndDate != nil {
			counts[dayKey(*t.EndDate)]++
		}
	}

	days := make([]models.HeatmapDay, HeatmapDays)
	peak := 1
	for i := range days {
		key := dayKey(now.AddDate(0, 0, i-(HeatmapDays-1)))
		days[i] = models.HeatmapDay{Date: key, Completions: counts[key]}
		peak = max(peak, counts[key])
	}
	for i := range days {
		days[i].Intensity = float64(days[i].Completions) / float64(peak)
	}
	return days
}
