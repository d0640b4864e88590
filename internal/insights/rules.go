// Package insights turns a metric bundle into ranked, human-readable insights.
package insights

import (
	"fmt"
	"math"

	"github.com/benvon/goal-insights/internal/analytics"
	"github.com/benvon/goal-insights/internal/models"
)

// Rule thresholds
const (
	HighPerformanceRate   = 85.0
	LowPerformanceRate    = 60.0
	VelocityShiftPercent  = 20
	EpicStreakDays        = 7
	OverdueWarningRate    = 25.0
	DeepWorkMasterPercent = 60
)

// Rule emits at most one insight when When holds for the bundle
type Rule struct {
	ID    string
	When  func(m models.MetricBundle) bool
	Build func(m models.MetricBundle, timeframe string) models.Insight
}

// DefaultRules is the battery evaluated by Synthesize, in evaluation order
var DefaultRules = []Rule{
	{
		ID:   "high-performance",
		When: func(m models.MetricBundle) bool { return m.Summary.CompletionRate >= HighPerformanceRate },
		Build: func(m models.MetricBundle, timeframe string) models.Insight {
			return models.Insight{
				Type:        models.InsightTypeAchievement,
				Priority:    models.InsightPriorityHigh,
				Title:       "Exceptional Performance",
				Description: fmt.Sprintf("Outstanding %.1f%% completion rate this %s!", m.Summary.CompletionRate, timeframe),
				Impact:      95,
				Confidence:  100,
				Category:    "Performance",
				Suggestion:  "Keep up the excellent work and consider mentoring others.",
			}
		},
	},
	{
		ID: "low-performance",
		// an empty period has no rate to judge
		When: func(m models.MetricBundle) bool {
			return m.Summary.Total > 0 && m.Summary.CompletionRate < LowPerformanceRate
		},
		Build: func(m models.MetricBundle, _ string) models.Insight {
			return models.Insight{
				Type:               models.InsightTypeWarning,
				Priority:           models.InsightPriorityHigh,
				Title:              "Performance Opportunity",
				Description:        fmt.Sprintf("Completion rate is %.1f%%. Room for improvement detected.", m.Summary.CompletionRate),
				Impact:             80,
				Confidence:         90,
				Actionable:         true,
				Category:           "Performance",
				Suggestion:         "Consider task prioritization and time blocking techniques.",
				EstimatedTimeToFix: "1-2 weeks",
			}
		},
	},
	{
		ID:   "velocity-surge",
		When: func(m models.MetricBundle) bool { return m.VelocityComparison.Change > VelocityShiftPercent },
		Build: func(m models.MetricBundle, _ string) models.Insight {
			return models.Insight{
				Type:        models.InsightTypeAchievement,
				Priority:    models.InsightPriorityMedium,
				Title:       "Velocity Surge",
				Description: fmt.Sprintf("Task completion velocity increased by %d%%!", m.VelocityComparison.Change),
				Impact:      75,
				Confidence:  85,
				Category:    "Velocity",
				Suggestion:  "Your productivity optimizations are working well.",
			}
		},
	},
	{
		ID:   "velocity-decline",
		When: func(m models.MetricBundle) bool { return m.VelocityComparison.Change < -VelocityShiftPercent },
		Build: func(m models.MetricBundle, _ string) models.Insight {
			return models.Insight{
				Type:               models.InsightTypeWarning,
				Priority:           models.InsightPriorityMedium,
				Title:              "Velocity Decline",
				Description:        fmt.Sprintf("Task velocity dropped by %d%%. Time to re-energize.", -m.VelocityComparison.Change),
				Impact:             70,
				Confidence:         80,
				Actionable:         true,
				Category:           "Velocity",
				Suggestion:         "Review your energy levels and consider adjusting workload.",
				EstimatedTimeToFix: "3-5 days",
			}
		},
	},
	{
		ID:   "epic-streak",
		When: func(m models.MetricBundle) bool { return m.Streaks.Current >= EpicStreakDays },
		Build: func(m models.MetricBundle, _ string) models.Insight {
			return models.Insight{
				Type:        models.InsightTypeAchievement,
				Priority:    models.InsightPriorityMedium,
				Title:       "Epic Streak!",
				Description: fmt.Sprintf("Amazing %d-day completion streak!", m.Streaks.Current),
				Impact:      80,
				Confidence:  100,
				Category:    "Consistency",
				Suggestion:  "You're building excellent habits. Keep the momentum!",
			}
		},
	},
	{
		ID:   "overdue-tasks",
		When: func(m models.MetricBundle) bool { return m.Summary.Overdue > 0 },
		Build: func(m models.MetricBundle, _ string) models.Insight {
			rate := m.Summary.OverdueRate
			in := models.Insight{
				Type:               models.InsightTypeOpportunity,
				Priority:           models.InsightPriorityMedium,
				Title:              fmt.Sprintf("%d Overdue Tasks", m.Summary.Overdue),
				Description:        fmt.Sprintf("%.1f%% of tasks are past deadline.", rate),
				Impact:             int(math.Floor(math.Min(rate*2, 100) + 0.5)),
				Confidence:         100,
				Actionable:         true,
				Category:           "Time Management",
				Suggestion:         "Reschedule overdue tasks and improve time estimation.",
				EstimatedTimeToFix: "1-3 days",
			}
			if rate > OverdueWarningRate {
				in.Type = models.InsightTypeWarning
				in.Priority = models.InsightPriorityHigh
			}
			return in
		},
	},
	{
		ID:   "deep-work-master",
		When: func(m models.MetricBundle) bool { return m.FocusTime.DeepWorkPercentage >= DeepWorkMasterPercent },
		Build: func(m models.MetricBundle, _ string) models.Insight {
			return models.Insight{
				Type:        models.InsightTypeAchievement,
				Priority:    models.InsightPriorityMedium,
				Title:       "Deep Work Master",
				Description: fmt.Sprintf("%d%% of sessions are deep work (2+ hours)", m.FocusTime.DeepWorkPercentage),
				Impact:      70,
				Confidence:  95,
				Category:    "Focus",
				Suggestion:  "Your focus discipline is exceptional. Share your techniques!",
			}
		},
	},
	{
		ID:   "high-risk-goal",
		When: func(m models.MetricBundle) bool { return m.Risk.Level == models.RiskLevelHigh },
		Build: func(m models.MetricBundle, _ string) models.Insight {
			return models.Insight{
				Type:               models.InsightTypeWarning,
				Priority:           models.InsightPriorityHigh,
				Title:              "Goal at Risk",
				Description:        fmt.Sprintf("High risk detected (%d/100). Immediate action needed.", m.Risk.Score),
				Impact:             95,
				Confidence:         95,
				Actionable:         true,
				Category:           "Risk",
				Suggestion:         "Break down large tasks and eliminate blockers immediately.",
				EstimatedTimeToFix: "1-3 days",
			}
		},
	},
	{
		ID: "priority-misalignment",
		// without prioritized records every tier rate is zero
		When: func(m models.MetricBundle) bool {
			return m.Summary.PrioritizedRecords > 0 &&
				m.PriorityEffectiveness.AlignmentScore < analytics.AlignmentThreshold
		},
		Build: func(m models.MetricBundle, _ string) models.Insight {
			return models.Insight{
				Type:               models.InsightTypeOpportunity,
				Priority:           models.InsightPriorityMedium,
				Title:              "Priority Optimization",
				Description:        fmt.Sprintf("Priority alignment at %d%%. Refocus on high-impact work.", m.PriorityEffectiveness.AlignmentScore),
				Impact:             75,
				Confidence:         85,
				Actionable:         true,
				Category:           "Priority",
				Suggestion:         "Audit task priorities and focus on high-impact activities.",
				EstimatedTimeToFix: "2-4 days",
			}
		},
	},
}
