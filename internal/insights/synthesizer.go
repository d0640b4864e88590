package insights

import (
	"fmt"
	"sort"

	"github.com/benvon/goal-insights/internal/models"
)

// FilterAll disables priority filtering
const FilterAll = "all"

// Synthesize evaluates DefaultRules against the bundle and ranks the result
func Synthesize(m models.MetricBundle, timeframe string) []models.Insight {
	return SynthesizeWith(DefaultRules, m, timeframe)
}

// SynthesizeWith evaluates rules in order and returns the emitted insights
// ranked by priority, then impact. Ties keep rule order.
func SynthesizeWith(rules []Rule, m models.MetricBundle, timeframe string) []models.Insight {
	out := make([]models.Insight, 0, len(rules))
	for _, r := range rules {
		if !r.When(m) {
			continue
		}
		in := r.Build(m, timeframe)
		in.ID = r.ID
		out = append(out, in)
	}
	Rank(out)
	return out
}

// Rank sorts insights in place: priority descending, then impact descending
func Rank(list []models.Insight) {
	sort.SliceStable(list, func(i, j int) bool {
		pi, pj := list[i].Priority.Rank(), list[j].Priority.Rank()
		if pi != pj {
			return pi > pj
		}
		return list[i].Impact > list[j].Impact
	})
}

// ParsePriorityFilter validates a filter key. An empty key means all.
func ParsePriorityFilter(s string) (string, error) {
	switch s {
	case "", FilterAll:
		return FilterAll, nil
	case string(models.InsightPriorityHigh), string(models.InsightPriorityMedium), string(models.InsightPriorityLow):
		return s, nil
	default:
		return "", fmt.Errorf("invalid priority filter %q (must be 'all', 'high', 'medium', or 'low')", s)
	}
}

// FilterByPriority returns the insights matching filter, keeping order.
// The input slice is not modified.
func FilterByPriority(list []models.Insight, filter string) []models.Insight {
	if filter == "" || filter == FilterAll {
		return append(make([]models.Insight, 0, len(list)), list...)
	}
	out := make([]models.Insight, 0, len(list))
	for _, in := range list {
		if string(in.Priority) == filter {
			out = append(out, in)
		}
	}
	return out
}
