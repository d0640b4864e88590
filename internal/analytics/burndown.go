package analytics

import (
	"math"
	"time"

	"github.com/benvon/goal-insights/internal/models"
)

const (
	burndownLookbackDays = 30
	week                 = 7 * 24 * time.Hour
)

// Burndown returns remaining work at weekly checkpoints from 30 days before
// now through target, against a linear ideal from the total down to zero.
// Without a target the series is empty.
func Burndown(todos []models.Todo, target *time.Time, now time.Time) []models.BurndownPoint {
	points := []models.BurndownPoint{}
	if target == nil {
		return points
	}

	start := now.AddDate(0, 0, -burndownLookbackDays)
	total := len(todos)
	totalWeeks := max(int(math.Ceil(float64(target.Sub(start))/float64(week))), 1)

	for d := start; !d.After(*target); d = d.AddDate(0, 0, 7) {
		doneBy := 0
		for _, t := range todos {
			if t.IsDone && t.EndDate != nil && !t.EndDate.After(d) {
				doneBy++
			}
		}
		weeksFromStart := int(math.Ceil(float64(d.Sub(start)) / float64(week)))
		ideal := math.Max(0, float64(total)-float64(total*weeksFromStart)/float64(totalWeeks))
		points = append(points, models.BurndownPoint{
			Date:      dayKey(d),
			Remaining: max(0, total-doneBy),
			Ideal:     round(ideal),
		})
	}
	return points
}
