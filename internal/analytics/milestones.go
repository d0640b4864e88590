package analytics

import (
	"github.com/benvon/goal-insights/internal/models"
)

// MilestoneStatusFor maps a progress percentage onto a rollup status
func MilestoneStatusFor(progress float64) models.MilestoneStatus {
	switch {
	case progress == 100:
		return models.MilestoneCompleted
	case progress > 50:
		return models.MilestoneInProgress
	default:
		return models.MilestoneNotStarted
	}
}

// RollupMilestones computes per-subgoal progress from the todos linked to it
func RollupMilestones(subgoals []models.Subgoal, todos []models.Todo) models.Milestones {
	items := make([]models.Milestone, 0, len(subgoals))
	done := 0
	for _, sg := range subgoals {
		m := models.Milestone{SubgoalID: sg.ID, Name: sg.Name}
		for _, t := range todos {
			if t.SubgoalID == nil || *t.SubgoalID != sg.ID {
				continue
			}
			m.TotalTasks++
			if t.IsDone {
				m.CompletedTasks++
			}
		}
		progress := percent(m.CompletedTasks, m.TotalTasks)
		m.Progress = round(progress)
		m.Status = MilestoneStatusFor(progress)
		if m.Status == models.MilestoneCompleted {
			done++
		}
		items = append(items, m)
	}
	return models.Milestones{
		Items:          items,
		Completed:      done,
		Total:          len(items),
		CompletionRate: round1(percent(done, len(items))),
	}
}
