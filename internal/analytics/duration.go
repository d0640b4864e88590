package analytics

import (
	"github.com/benvon/goal-insights/internal/models"
)

const deepWorkHours = 2.0

type durationRange struct {
	label    string
	maxHours float64
}

// durationRanges are checked in order; the last one is unbounded
var durationRanges = []durationRange{
	{"Quick (< 1h)", 1},
	{"Short (1-4h)", 4},
	{"Medium (4h-1d)", 24},
	{"Long (1-3d)", 72},
	{"Extended (3d+)", 0},
}

// TimeDistribution buckets completion durations. Todos without a well-formed
// start/end pair are left out.
func TimeDistribution(todos []models.Todo) []models.DurationBucket {
	buckets := make([]models.DurationBucket, len(durationRanges))
	for i, r := range durationRanges {
		buckets[i].Range = r.label
	}
	for _, t := range todos {
		d, ok := t.Duration()
		if !ok {
			continue
		}
		hours := d.Hours()
		idx := len(durationRanges) - 1
		for i, r := range durationRanges[:idx] {
			if hours < r.maxHours {
				idx = i
				break
			}
		}
		buckets[idx].Count++
	}
	return buckets
}

// AnalyzeFocusTime summarises realistic sessions, those longer than zero and
// shorter than a day.
func AnalyzeFocusTime(todos []models.Todo) models.FocusTime {
	var sessions []float64
	for _, t := range todos {
		d, ok := t.Duration()
		if !ok {
			continue
		}
		if h := d.Hours(); h > 0 && h < 24 {
			sessions = append(sessions, h)
		}
	}
	if len(sessions) == 0 {
		return models.FocusTime{}
	}

	total, longest, shortest := 0.0, sessions[0], sessions[0]
	deep := 0
	for _, h := range sessions {
		total += h
		longest = max(longest, h)
		shortest = min(shortest, h)
		if h >= deepWorkHours {
			deep++
		}
	}
	return models.FocusTime{
		AverageHours:       round1(total / float64(len(sessions))),
		LongestHours:       round1(longest),
		ShortestHours:      round1(shortest),
		DeepWorkSessions:   deep,
		DeepWorkPercentage: round(percent(deep, len(sessions))),
		TotalHours:         round1(total),
		SessionCount:       len(sessions),
	}
}
