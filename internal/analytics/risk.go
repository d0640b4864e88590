package analytics

import (
	"fmt"
	"time"

	"github.com/benvon/goal-insights/internal/models"
)

// Risk factor weights. Factors trigger independently, so their sum can exceed
// MaxRiskScore and is clamped afterwards.
const (
	RiskTimelinePressure = 30
	RiskOverdue          = 40
	RiskLowProgress      = 25
	RiskInactive         = 20
	RiskHighPriorityLoad = 15
	RiskBehindSchedule   = 10

	MaxRiskScore = 100

	riskHighThreshold   = 70
	riskMediumThreshold = 40
	inactivityDays      = 3
	highPriorityBacklog = 3
	lowProgressPercent  = 25
)

var riskRecommendations = map[models.RiskLevel][]string{
	models.RiskLevelHigh: {
		"Break down large tasks immediately",
		"Review and adjust timeline",
		"Remove blockers",
		"Increase daily focus time",
	},
	models.RiskLevelMedium: {
		"Monitor progress closely",
		"Adjust schedule if needed",
		"Focus on high-priority items",
	},
	models.RiskLevelLow: {
		"Maintain current momentum",
		"Continue good practices",
	},
}

// RiskLevelFor maps a score onto a level
func RiskLevelFor(score int) models.RiskLevel {
	switch {
	case score >= riskHighThreshold:
		return models.RiskLevelHigh
	case score >= riskMediumThreshold:
		return models.RiskLevelMedium
	default:
		return models.RiskLevelLow
	}
}

// AssessRisk scores how likely the goal is to miss its target. A nil goal
// carries no risk.
func AssessRisk(goal *models.Goal, subgoals []models.Subgoal, todos []models.Todo, now time.Time) models.RiskAssessment {
	factors := []string{}
	if goal == nil {
		return riskResult(0, factors)
	}

	score := 0
	done := countDone(todos)

	if goal.EndDate != nil {
		daysLeft := daysUntil(now, *goal.EndDate)
		remaining := len(todos) - done
		if remaining > 0 && daysLeft < remaining {
			score += RiskTimelinePressure
			factors = append(factors, "Timeline pressure: More tasks than days remaining")
		}
		if daysLeft < 0 {
			score += RiskOverdue
			factors = append(factors, "Goal is overdue")
		}
	}

	if percent(done, len(todos)) < lowProgressPercent {
		score += RiskLowProgress
		factors = append(factors, "Low progress rate (< 25%)")
	}

	if len(todos) > 0 && !hasActivitySince(todos, now.AddDate(0, 0, -inactivityDays)) {
		score += RiskInactive
		factors = append(factors, "No recent activity (last 3 days)")
	}

	openHigh := 0
	for _, t := range todos {
		if t.Priority == models.PriorityHigh && !t.IsDone {
			openHigh++
		}
	}
	if openHigh > highPriorityBacklog {
		score += RiskHighPriorityLoad
		factors = append(factors, "Many high-priority tasks remaining")
	}

	behind := 0
	for _, sg := range subgoals {
		if sg.IsBehindSchedule() {
			behind++
		}
	}
	if behind > 0 {
		score += RiskBehindSchedule
		factors = append(factors, fmt.Sprintf("%d milestone(s) behind schedule", behind))
	}

	return riskResult(min(score, MaxRiskScore), factors)
}

func riskResult(score int, factors []string) models.RiskAssessment {
	level := RiskLevelFor(score)
	recs := append([]string(nil), riskRecommendations[level]...)
	return models.RiskAssessment{
		Score:           score,
		Level:           level,
		Factors:         factors,
		Recommendations: recs,
	}
}

func hasActivitySince(todos []models.Todo, since time.Time) bool {
	for _, t := range todos {
		if at, ok := t.ActivityAt(); ok && !at.Before(since) {
			return true
		}
	}
	return false
}
