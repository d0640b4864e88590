package analytics

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/benvon/goal-insights/internal/models"
)

// ExportFormat selects the export encoding
type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportCSV  ExportFormat = "csv"
)

// ExportMetrics are the headline numbers carried alongside raw records
type ExportMetrics struct {
	CompletionRate   float64 `json:"completion_rate"`
	VelocityThisWeek int     `json:"velocity_this_week"`
	CurrentStreak    int     `json:"current_streak"`
	TotalTasks       int     `json:"total_tasks"`
	CompletedTasks   int     `json:"completed_tasks"`
	OverdueTasks     int     `json:"overdue_tasks"`
}

// ExportData is the full analytics export for one goal
type ExportData struct {
	Timestamp string           `json:"timestamp"`
	Timeframe string           `json:"timeframe"`
	Goals     []models.Goal    `json:"goals"`
	Subgoals  []models.Subgoal `json:"subgoals"`
	Todos     []models.Todo    `json:"todos"`
	Metrics   ExportMetrics    `json:"metrics"`
}

var csvHeader = []string{
	"Task Name", "Status", "Priority", "Category", "Start Date", "End Date",
	"Goal", "Subgoal", "Completion Rate", "Days to Complete",
}

// NewExport assembles export data from the input records and a computed bundle
func NewExport(now time.Time, tf Timeframe, in Input, bundle models.MetricBundle) ExportData {
	overdue := 0
	for _, t := range in.Todos {
		if t.IsOverdue(now) {
			overdue++
		}
	}
	return ExportData{
		Timestamp: now.UTC().Format(time.RFC3339),
		Timeframe: string(tf),
		Goals:     in.goals(),
		Subgoals:  in.Subgoals,
		Todos:     in.Todos,
		Metrics: ExportMetrics{
			CompletionRate:   percent(countDone(in.Todos), len(in.Todos)),
			VelocityThisWeek: bundle.VelocityComparison.Current,
			CurrentStreak:    bundle.Streaks.Current,
			TotalTasks:       len(in.Todos),
			CompletedTasks:   countDone(in.Todos),
			OverdueTasks:     overdue,
		},
	}
}

// ParseExportFormat validates a format key
func ParseExportFormat(s string) (ExportFormat, error) {
	switch f := ExportFormat(s); f {
	case ExportJSON, ExportCSV:
		return f, nil
	case "":
		return ExportJSON, nil
	default:
		return "", fmt.Errorf("invalid export format %q (must be 'json' or 'csv')", s)
	}
}

// Write encodes the export in the requested format
func (d ExportData) Write(w io.Writer, format ExportFormat) error {
	switch format {
	case ExportJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("failed to encode export: %w", err)
		}
		return nil
	case ExportCSV:
		return d.writeCSV(w)
	default:
		return fmt.Errorf("invalid export format %q", format)
	}
}

func (d ExportData) writeCSV(w io.Writer) error {
	goalNames := make(map[int64]string, len(d.Goals))
	for _, g := range d.Goals {
		goalNames[g.ID] = g.Name
	}
	subgoalNames := make(map[int64]string, len(d.Subgoals))
	for _, sg := range d.Subgoals {
		subgoalNames[sg.ID] = sg.Name
	}
	rate := strconv.FormatFloat(d.Metrics.CompletionRate, 'f', 1, 64) + "%"

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, t := range d.Todos {
		status := "Pending"
		if t.IsDone {
			status = "Completed"
		}
		priority := string(t.Priority)
		if priority == "" {
			priority = string(models.PriorityMedium)
		}
		category := t.Category
		if category == "" {
			category = "General"
		}
		var goalName, subgoalName string
		if t.GoalID != nil {
			goalName = goalNames[*t.GoalID]
		}
		if t.SubgoalID != nil {
			subgoalName = subgoalNames[*t.SubgoalID]
		}
		daysToComplete := 0
		if t.StartDate != nil && t.EndDate != nil {
			daysToComplete = int(math.Ceil(t.EndDate.Sub(*t.StartDate).Hours() / 24))
		}
		row := []string{
			t.Name, status, priority, category,
			formatOptional(t.StartDate), formatOptional(t.EndDate),
			goalName, subgoalName, rate, strconv.Itoa(daysToComplete),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// SummaryText renders a short plain-text digest of the headline metrics
func SummaryText(bundle models.MetricBundle, tf Timeframe, now time.Time) string {
	return fmt.Sprintf("Analytics Summary (%s):\n"+
		"• Completion Rate: %.1f%%\n"+
		"• Weekly Velocity: %d tasks\n"+
		"• Current Streak: %d days\n"+
		"• Generated: %s",
		tf, bundle.Summary.CompletionRate, bundle.VelocityComparison.Current,
		bundle.Streaks.Current, dayKey(now))
}

func formatOptional(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
