package models

import (
	"time"
)

// InsightType classifies an insight
type InsightType string

const (
	InsightTypeAchievement InsightType = "achievement"
	InsightTypeWarning     InsightType = "warning"
	InsightTypeOpportunity InsightType = "opportunity"
)

// InsightPriority orders insights for display
type InsightPriority string

const (
	InsightPriorityHigh   InsightPriority = "high"
	InsightPriorityMedium InsightPriority = "medium"
	InsightPriorityLow    InsightPriority = "low"
)

// Rank returns a sortable weight, higher is more urgent
func (p InsightPriority) Rank() int {
	switch p {
	case InsightPriorityHigh:
		return 3
	case InsightPriorityMedium:
		return 2
	case InsightPriorityLow:
		return 1
	default:
		return 0
	}
}

// Insight is a ranked, human-readable observation derived from metrics
type Insight struct {
	ID                 string          `json:"id" yaml:"id"`
	Type               InsightType     `json:"type" yaml:"type"`
	Priority           InsightPriority `json:"priority" yaml:"priority"`
	Title              string          `json:"title" yaml:"title"`
	Description        string          `json:"description" yaml:"description"`
	Impact             int             `json:"impact" yaml:"impact"`
	Confidence         int             `json:"confidence" yaml:"confidence"`
	Actionable         bool            `json:"actionable" yaml:"actionable"`
	Category           string          `json:"category" yaml:"category"`
	Suggestion         string          `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
	EstimatedTimeToFix string          `json:"estimated_time_to_fix,omitempty" yaml:"estimated_time_to_fix,omitempty"`
}

// InsightBundle is the unit stored in the insight cache for one entity
type InsightBundle struct {
	EntityID    string       `json:"entity_id" yaml:"entity_id"`
	Timeframe   string       `json:"timeframe" yaml:"timeframe"`
	GeneratedAt time.Time    `json:"generated_at" yaml:"generated_at"`
	Metrics     MetricBundle `json:"metrics" yaml:"metrics"`
	Insights    []Insight    `json:"insights" yaml:"insights"`
}
