package analytics

import (
	"strings"

	"github.com/benvon/goal-insights/internal/models"
)

// CollaborationKeywords mark a goal or todo as collaborative by substring match
var CollaborationKeywords = []string{"team", "meeting", "review", "discuss", "collaboration", "shared"}

// IsCollaborative reports whether name or description mentions a keyword
func IsCollaborative(name, description string) bool {
	name, description = strings.ToLower(name), strings.ToLower(description)
	for _, kw := range CollaborationKeywords {
		if strings.Contains(name, kw) || strings.Contains(description, kw) {
			return true
		}
	}
	return false
}

// AnalyzeCollaboration applies the keyword heuristic to goals and todos
func AnalyzeCollaboration(goals []models.Goal, todos []models.Todo) models.Collaboration {
	shared := 0
	for _, g := range goals {
		if IsCollaborative(g.Name, g.Description) {
			shared++
		}
	}
	collab, collabDone := 0, 0
	for _, t := range todos {
		if !IsCollaborative(t.Name, t.Description) {
			continue
		}
		collab++
		if t.IsDone {
			collabDone++
		}
	}
	return models.Collaboration{
		SharedGoals:        shared,
		IndividualGoals:    len(goals) - shared,
		CollaborativeTasks: collab,
		CollaborationRate:  round(percent(collab, len(todos))),
		TeamEfficiency:     round(percent(collabDone, collab)),
	}
}
