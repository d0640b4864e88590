package analytics

import (
	"time"

	"github.com/benvon/goal-insights/internal/models"
)

// streakLookback bounds how far back streaks are searched
const streakLookback = 365

// DaySet is a set of UTC calendar dates formatted YYYY-MM-DD
type DaySet map[string]struct{}

// Has reports whether the day of t is in the set
func (s DaySet) Has(t time.Time) bool {
	_, ok := s[dayKey(t)]
	return ok
}

// NewDaySet builds a set from YYYY-MM-DD strings
func NewDaySet(days ...string) DaySet {
	s := make(DaySet, len(days))
	for _, d := range days {
		s[d] = struct{}{}
	}
	return s
}

// CompletionDays collects the days on which done todos were completed.
// Done todos without an end date carry no completion day.
func CompletionDays(todos []models.Todo) DaySet {
	s := make(DaySet)
	for _, t := range todos {
		if t.IsDone && t.EndDate != nil {
			s[dayKey(*t.EndDate)] = struct{}{}
		}
	}
	return s
}

// CurrentStreak counts consecutive completion days ending today. Today itself
// may still be empty without breaking the run; any earlier gap ends it.
func CurrentStreak(days DaySet, now time.Time) int {
	if len(days) == 0 {
		return 0
	}
	streak := 0
	for i := 0; i < streakLookback; i++ {
		if days.Has(now.AddDate(0, 0, -i)) {
			streak++
			continue
		}
		if i == 0 {
			continue
		}
		break
	}
	return streak
}

// LongestStreak is the longest run of consecutive completion days within the
// lookback window.
func LongestStreak(days DaySet, now time.Time) int {
	if len(days) == 0 {
		return 0
	}
	longest, run := 0, 0
	for i := streakLookback; i >= 0; i-- {
		if days.Has(now.AddDate(0, 0, -i)) {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	return longest
}

// HabitStreak counts check-in days ending today with no grace for today.
func HabitStreak(checkIns DaySet, now time.Time) int {
	streak := 0
	for i := 0; i < streakLookback; i++ {
		if !checkIns.Has(now.AddDate(0, 0, -i)) {
			break
		}
		streak++
	}
	return streak
}

// ComputeStreaks returns both streak figures for a todo set
func ComputeStreaks(todos []models.Todo, now time.Time) models.Streaks {
	days := CompletionDays(todos)
	return models.Streaks{
		Current: CurrentStreak(days, now),
		Longest: LongestStreak(days, now),
	}
}
