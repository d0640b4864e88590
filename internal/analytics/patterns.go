package analytics

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/benvon/goal-insights/internal/models"
)

const uncategorized = "Uncategorized"

// WeekdayPatterns counts completions per day of week, Sunday first
func WeekdayPatterns(todos []models.Todo) []models.WeekdayCount {
	out := make([]models.WeekdayCount, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		out[d].Day = d.String()
	}
	for _, t := range todos {
		if t.IsDone && t.EndDate != nil {
			out[t.EndDate.UTC().Weekday()].Completions++
		}
	}
	return out
}

// CategoryPerformance reports completion per category, ordered by name
func CategoryPerformance(todos []models.Todo) []models.CategoryStat {
	byName := make(map[string]*models.CategoryStat)
	for _, t := range todos {
		name := t.Category
		if name == "" {
			name = uncategorized
		}
		stat, ok := byName[name]
		if !ok {
			stat = &models.CategoryStat{Name: name}
			byName[name] = stat
		}
		stat.Total++
		if t.IsDone {
			stat.Completed++
		}
	}
	out := make([]models.CategoryStat, 0, len(byName))
	for _, stat := range byName {
		stat.CompletionRate = round(percent(stat.Completed, stat.Total))
		out = append(out, *stat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// GoalHealthScores rates each goal from 0 to 100 starting at a neutral 50,
// adjusted for progress, time left, recent activity and subgoal completion.
func GoalHealthScores(goals []models.Goal, subgoals []models.Subgoal, todos []models.Todo, now time.Time) []models.GoalHealth {
	weekAgo := now.AddDate(0, 0, -7)
	out := make([]models.GoalHealth, 0, len(goals))
	for _, g := range goals {
		var goalTodos []models.Todo
		for _, t := range todos {
			if t.GoalID != nil && *t.GoalID == g.ID {
				goalTodos = append(goalTodos, t)
			}
		}

		score := 50 + percent(countDone(goalTodos), len(goalTodos))*0.4

		if g.EndDate != nil {
			if daysLeft := daysUntil(now, *g.EndDate); daysLeft > 0 {
				score += math.Min(float64(daysLeft)/30*20, 20)
			} else {
				score -= 30
			}
		}

		recent := 0
		for _, t := range goalTodos {
			if at, ok := t.ActivityAt(); ok && !at.Before(weekAgo) {
				recent++
			}
		}
		score += math.Min(float64(recent*5), 20)

		total, done := 0, 0
		for _, sg := range subgoals {
			if sg.GoalID != g.ID {
				continue
			}
			total++
			if sg.IsDone || containsFold(sg.Status, "completed") {
				done++
			}
		}
		if total > 0 {
			score += float64(done) / float64(total) * 20
		}

		out = append(out, models.GoalHealth{GoalID: g.ID, Name: g.Name, Score: clampInt(round(score), 0, 100)})
	}
	return out
}

// progressPeriods is how many weekly periods the trend shows per timeframe
func progressPeriods(tf Timeframe) int {
	switch tf {
	case TimeframeWeek:
		return 4
	case TimeframeMonth:
		return 6
	default:
		return 12
	}
}

// ProgressTrends reports the completion rate of todos started in each of the
// recent weeks, oldest first.
func ProgressTrends(todos []models.Todo, tf Timeframe, now time.Time) []models.ProgressPoint {
	periods := progressPeriods(tf)
	out := make([]models.ProgressPoint, periods)
	for i := 0; i < periods; i++ {
		end := now.AddDate(0, 0, -7*i)
		start := end.AddDate(0, 0, -7)
		total, done := startedBetween(todos, start, end)
		out[periods-1-i] = models.ProgressPoint{
			Period:         fmt.Sprintf("P%d", periods-i),
			CompletionRate: round(percent(done, total)),
			Completed:      done,
			Total:          total,
		}
	}
	return out
}

const sprintCount = 6

// AnalyzeSprints splits recent history into six sprints of one week (week
// view) or two weeks (all other views).
func AnalyzeSprints(todos []models.Todo, tf Timeframe, now time.Time) models.SprintAnalytics {
	length := 14
	if tf == TimeframeWeek {
		length = 7
	}
	sprints := make([]models.Sprint, 0, sprintCount)
	velocity, quality := 0, 0
	for i := sprintCount - 1; i >= 0; i-- {
		end := now.AddDate(0, 0, -i*length)
		start := end.AddDate(0, 0, -length)
		total, done := startedBetween(todos, start, end)
		s := models.Sprint{
			Name:      fmt.Sprintf("S%d", sprintCount-i),
			Velocity:  done,
			Quality:   round(percent(done, total)),
			Planned:   total,
			Completed: done,
		}
		velocity += s.Velocity
		quality += s.Quality
		sprints = append(sprints, s)
	}
	return models.SprintAnalytics{
		Sprints:         sprints,
		AverageVelocity: round(float64(velocity) / sprintCount),
		AverageQuality:  round(float64(quality) / sprintCount),
	}
}

// EnergyPatterns builds an hour-of-day completion histogram in UTC, with
// output weighted by priority.
func EnergyPatterns(todos []models.Todo) models.EnergyPatterns {
	hours := make([]models.HourStat, 24)
	for h := range hours {
		hours[h].Hour = h
	}
	for _, t := range todos {
		at, ok := t.CompletedAt()
		if !ok {
			continue
		}
		h := at.UTC().Hour()
		hours[h].Completions++
		if w, ok := difficultyWeights[t.Priority]; ok {
			hours[h].Productivity += w
		} else {
			hours[h].Productivity++
		}
	}

	out := models.EnergyPatterns{Hours: hours, LowHours: []int{}}
	for _, h := range hours {
		if h.Completions > hours[out.PeakHour].Completions {
			out.PeakHour = h.Hour
		}
		if h.Completions == 0 {
			out.LowHours = append(out.LowHours, h.Hour)
		}
		switch {
		case h.Hour >= 6 && h.Hour < 12:
			out.Morning += h.Completions
		case h.Hour >= 12 && h.Hour < 18:
			out.Afternoon += h.Completions
		case h.Hour >= 18:
			out.Evening += h.Completions
		}
	}
	return out
}

func startedBetween(todos []models.Todo, start, end time.Time) (total, done int) {
	for _, t := range todos {
		if t.StartDate == nil || t.StartDate.Before(start) || t.StartDate.After(end) {
			continue
		}
		total++
		if t.IsDone {
			done++
		}
	}
	return total, done
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
