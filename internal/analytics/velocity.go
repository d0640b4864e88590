package analytics

import (
	"fmt"
	"time"

	"github.com/benvon/goal-insights/internal/models"
)

const maxVelocityBuckets = 12

// VelocityTrend buckets completions into weekly periods ending at now, oldest
// first. The number of buckets is min(12, days/7).
func VelocityTrend(todos []models.Todo, days int, now time.Time) []models.VelocityPoint {
	periods := min(maxVelocityBuckets, days/7)
	if periods <= 0 {
		return []models.VelocityPoint{}
	}
	points := make([]models.VelocityPoint, periods)
	for i := 0; i < periods; i++ {
		end := now.AddDate(0, 0, -7*i)
		start := end.AddDate(0, 0, -7)
		count := 0
		for _, t := range todos {
			if !t.IsDone || t.EndDate == nil {
				continue
			}
			if !t.EndDate.Before(start) && !t.EndDate.After(end) {
				count++
			}
		}
		points[periods-1-i] = models.VelocityPoint{
			Period: fmt.Sprintf("W%d", periods-i),
			Value:  count,
			Date:   dayKey(start),
		}
	}
	return points
}

// CompareVelocity counts completions in the current timeframe and in the
// equally long period before it.
func CompareVelocity(todos []models.Todo, tf Timeframe, now time.Time) models.VelocityComparison {
	w := Window(now, tf)
	days, _ := tf.Days()
	prevStart := w.Start.AddDate(0, 0, -days)

	current, previous := 0, 0
	for _, t := range todos {
		if !t.IsDone || t.EndDate == nil {
			continue
		}
		switch end := *t.EndDate; {
		case !end.Before(w.Start):
			current++
		case !end.Before(prevStart):
			previous++
		}
	}

	change := 0
	if previous > 0 {
		change = round(float64(current-previous) / float64(previous) * 100)
	}
	return models.VelocityComparison{
		Period:    string(tf),
		Current:   current,
		Previous:  previous,
		Change:    change,
		Projected: current + round(float64(current)*0.1),
	}
}
