package analytics

import (
	"github.com/benvon/goal-insights/internal/models"
)

// AlignmentThreshold is the alignment score below which priorities need a refocus
const AlignmentThreshold = 60

// Recommendation categories for priority alignment
const (
	RecommendationRefocus  = "refocus"
	RecommendationMaintain = "maintain"
)

var alignmentWeights = map[models.Priority]float64{
	models.PriorityHigh:   0.5,
	models.PriorityMedium: 0.3,
	models.PriorityLow:    0.2,
}

var difficultyWeights = map[models.Priority]int{
	models.PriorityHigh:   3,
	models.PriorityMedium: 2,
	models.PriorityLow:    1,
}

// PriorityTiers returns completion statistics per tier, highest first
func PriorityTiers(todos []models.Todo) []models.PriorityStat {
	tiers := make([]models.PriorityStat, 0, len(models.Priorities))
	for _, p := range models.Priorities {
		stat := models.PriorityStat{Priority: p}
		for _, t := range todos {
			if t.Priority != p {
				continue
			}
			stat.Total++
			if t.IsDone {
				stat.Completed++
			}
		}
		stat.CompletionRate = round(percent(stat.Completed, stat.Total))
		tiers = append(tiers, stat)
	}
	return tiers
}

// AnalyzePriorityEffectiveness weights tier completion rates into a single
// alignment score.
func AnalyzePriorityEffectiveness(todos []models.Todo) models.PriorityEffectiveness {
	tiers := PriorityTiers(todos)
	var score float64
	for _, tier := range tiers {
		score += float64(tier.CompletionRate) * alignmentWeights[tier.Priority]
	}
	alignment := round(score)

	out := models.PriorityEffectiveness{
		Tiers:          tiers,
		AlignmentScore: alignment,
	}
	if alignment < AlignmentThreshold {
		out.Recommendation = RecommendationRefocus
		out.Recommendations = []string{"Focus more on high-priority tasks", "Review task prioritization"}
	} else {
		out.Recommendation = RecommendationMaintain
		out.Recommendations = []string{"Good priority management"}
	}
	return out
}

// AnalyzeDifficulty weighs tier completion by difficulty (High=3 .. Low=1)
func AnalyzeDifficulty(todos []models.Todo) models.DifficultyCorrelation {
	if countDone(todos) == 0 {
		return models.DifficultyCorrelation{Tiers: []models.PriorityStat{}}
	}
	tiers := PriorityTiers(todos)
	var sum float64
	for _, tier := range tiers {
		sum += float64(tier.CompletionRate*difficultyWeights[tier.Priority]) / 3
	}
	return models.DifficultyCorrelation{
		Correlation: round(sum / float64(len(tiers))),
		Tiers:       tiers,
	}
}

func countPrioritized(todos []models.Todo) int {
	n := 0
	for _, t := range todos {
		if _, ok := alignmentWeights[t.Priority]; ok {
			n++
		}
	}
	return n
}
