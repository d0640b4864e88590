package analytics

import (
	"math"
	"time"

	"github.com/benvon/goal-insights/internal/models"
)

const forecastTimelineWeeks = 10

// AverageDurationDays is the mean completion time in days over done todos that
// carry a well-formed start/end pair. ok is false when no todo qualifies.
func AverageDurationDays(todos []models.Todo) (avg float64, ok bool) {
	var sum time.Duration
	n := 0
	for _, t := range todos {
		d, valid := t.Duration()
		if !valid {
			continue
		}
		sum += d
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum.Hours() / 24 / float64(n), true
}

// CompletionForecast projects when the open todos will be done. The forecast is
// undefined (confidence 0, no date) until at least one todo is complete.
func CompletionForecast(todos []models.Todo, now time.Time) models.Forecast {
	done := completed(todos)
	if len(done) == 0 {
		return models.Forecast{Timeline: []models.ForecastPoint{}}
	}
	remaining := len(todos) - len(done)

	avg, _ := AverageDurationDays(done)
	pace := math.Max(avg, 1)
	daysRemaining := float64(remaining) * pace
	estimate := now.AddDate(0, 0, int(daysRemaining))

	timeline := make([]models.ForecastPoint, 0, forecastTimelineWeeks+1)
	for i := 0; i <= forecastTimelineWeeks; i++ {
		date := now.AddDate(0, 0, 7*i)
		actual := 0
		for _, t := range done {
			if t.EndDate != nil && !t.EndDate.After(date) {
				actual++
			}
		}
		timeline = append(timeline, models.ForecastPoint{
			Date:     dayKey(date),
			Actual:   actual,
			Forecast: min(len(todos), len(done)+round(float64(7*i)/pace)),
		})
	}

	return models.Forecast{
		EstimatedCompletion: estimate.UTC().Format(time.RFC3339),
		AverageDurationDays: round1(avg),
		DaysRemaining:       round1(daysRemaining),
		Confidence:          clampInt(100-remaining*5, 20, 100),
		Timeline:            timeline,
	}
}
