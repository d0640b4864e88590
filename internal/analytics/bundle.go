package analytics

import (
	"time"

	"github.com/benvon/goal-insights/internal/models"
)

// Input is the record set one computation runs over. Goal is the entity the
// bundle is computed for; Goals may list sibling goals for comparison metrics.
type Input struct {
	Goal     *models.Goal
	Goals    []models.Goal
	Subgoals []models.Subgoal
	Todos    []models.Todo
}

func (in Input) goals() []models.Goal {
	if len(in.Goals) > 0 {
		return in.Goals
	}
	if in.Goal != nil {
		return []models.Goal{*in.Goal}
	}
	return nil
}

func (in Input) target() *time.Time {
	if in.Goal == nil {
		return nil
	}
	return in.Goal.EndDate
}

// Summarize computes the headline KPIs over the period's todos
func Summarize(period []models.Todo, goal *models.Goal, now time.Time) models.Summary {
	s := models.Summary{Total: len(period)}
	for _, t := range period {
		switch {
		case t.IsDone:
			s.Completed++
		case t.IsOverdue(now):
			s.Overdue++
		default:
			s.InProgress++
		}
	}
	s.CompletionRate = percent(s.Completed, s.Total)
	s.OverdueRate = percent(s.Overdue, s.Total)
	if avg, ok := AverageDurationDays(period); ok {
		s.AverageCompletionDays = round1(avg)
	}
	if goal != nil && goal.EndDate != nil {
		days := daysUntil(now, *goal.EndDate)
		s.DaysToGoal = &days
	}
	return s
}

// Compute runs every calculator and assembles the metric bundle. Rate and
// duration KPIs use the todos in the requested period; trend metrics carry
// their own fixed windows and see the full record set.
func Compute(now time.Time, tf Timeframe, in Input) models.MetricBundle {
	w := Window(now, tf)
	days, _ := tf.Days()
	period := FilterPeriod(in.Todos, w)

	summary := Summarize(period, in.Goal, now)
	summary.PrioritizedRecords = countPrioritized(in.Todos)

	return models.MetricBundle{
		Window:                w.Info(),
		Summary:               summary,
		Streaks:               ComputeStreaks(in.Todos, now),
		Velocity:              VelocityTrend(in.Todos, days, now),
		VelocityComparison:    CompareVelocity(in.Todos, tf, now),
		Burndown:              Burndown(in.Todos, in.target(), now),
		Forecast:              CompletionForecast(in.Todos, now),
		Risk:                  AssessRisk(in.Goal, in.Subgoals, in.Todos, now),
		PriorityEffectiveness: AnalyzePriorityEffectiveness(in.Todos),
		TimeDistribution:      TimeDistribution(period),
		FocusTime:             AnalyzeFocusTime(in.Todos),
		Heatmap:               Heatmap(in.Todos, now),
		Collaboration:         AnalyzeCollaboration(in.goals(), in.Todos),
		Milestones:            RollupMilestones(in.Subgoals, in.Todos),
		Weekdays:              WeekdayPatterns(period),
		Categories:            CategoryPerformance(in.Todos),
		GoalHealth:            GoalHealthScores(in.goals(), in.Subgoals, in.Todos, now),
		ProgressTrends:        ProgressTrends(in.Todos, tf, now),
		Sprints:               AnalyzeSprints(in.Todos, tf, now),
		Energy:                EnergyPatterns(in.Todos),
		Difficulty:            AnalyzeDifficulty(in.Todos),
	}
}
