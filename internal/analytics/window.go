// Package analytics contains the pure metric calculators. Every function takes
// the evaluation time explicitly and never reads the wall clock.
package analytics

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/benvon/goal-insights/internal/models"
)

// Timeframe is the granularity of the evaluated period
type Timeframe string

const (
	TimeframeWeek    Timeframe = "week"
	TimeframeMonth   Timeframe = "month"
	TimeframeQuarter Timeframe = "quarter"
	TimeframeYear    Timeframe = "year"
)

// Timeframes lists every known timeframe, shortest first
var Timeframes = []Timeframe{TimeframeWeek, TimeframeMonth, TimeframeQuarter, TimeframeYear}

// ErrInvalidTimeframe is returned for timeframe keys outside the closed set
var ErrInvalidTimeframe = errors.New("invalid timeframe")

var timeframeDays = map[Timeframe]int{
	TimeframeWeek:    7,
	TimeframeMonth:   30,
	TimeframeQuarter: 90,
	TimeframeYear:    365,
}

// Days returns the length of the timeframe in days
func (tf Timeframe) Days() (int, bool) {
	d, ok := timeframeDays[tf]
	return d, ok
}

// Valid reports whether tf is one of the known timeframes
func (tf Timeframe) Valid() bool {
	_, ok := timeframeDays[tf]
	return ok
}

// ParseTimeframe converts a caller-supplied key, failing on unknown values.
// An empty key selects the month view.
func ParseTimeframe(s string) (Timeframe, error) {
	if s == "" {
		return TimeframeMonth, nil
	}
	tf := Timeframe(s)
	if !tf.Valid() {
		return "", fmt.Errorf("%w: %q (must be 'week', 'month', 'quarter', or 'year')", ErrInvalidTimeframe, s)
	}
	return tf, nil
}

// PeriodWindow is a trailing time span ending at the evaluation time
type PeriodWindow struct {
	Start time.Time
	End   time.Time
	Label string
}

// Contains reports whether t lies within [Start, End]
func (w PeriodWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Info returns the serialisable form of the window
func (w PeriodWindow) Info() models.WindowInfo {
	return models.WindowInfo{
		Label: w.Label,
		Start: w.Start.UTC().Format(time.RFC3339),
		End:   w.End.UTC().Format(time.RFC3339),
	}
}

// Window returns {now-N days, now} for the timeframe. Passing a timeframe that
// did not come from ParseTimeframe or the declared constants panics.
func Window(now time.Time, tf Timeframe) PeriodWindow {
	days, ok := tf.Days()
	if !ok {
		panic(fmt.Sprintf("analytics: unknown timeframe %q", string(tf)))
	}
	return PeriodWindow{
		Start: now.AddDate(0, 0, -days),
		End:   now,
		Label: string(tf),
	}
}

// FilterPeriod keeps todos that started inside the window, plus done todos
// whose completion falls inside it.
func FilterPeriod(todos []models.Todo, w PeriodWindow) []models.Todo {
	out := make([]models.Todo, 0, len(todos))
	for _, t := range todos {
		if t.StartDate != nil && !t.StartDate.Before(w.Start) {
			out = append(out, t)
			continue
		}
		if at, ok := t.CompletedAt(); ok && !at.Before(w.Start) {
			out = append(out, t)
		}
	}
	return out
}

func completed(todos []models.Todo) []models.Todo {
	out := make([]models.Todo, 0, len(todos))
	for _, t := range todos {
		if t.IsDone {
			out = append(out, t)
		}
	}
	return out
}

func countDone(todos []models.Todo) int {
	n := 0
	for _, t := range todos {
		if t.IsDone {
			n++
		}
	}
	return n
}

// dayKey formats t as a UTC calendar date
func dayKey(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// round rounds half up, so -2.5 becomes -2
func round(f float64) int {
	return int(math.Floor(f + 0.5))
}

func round1(f float64) float64 {
	return math.Floor(f*10+0.5) / 10
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// daysUntil is the whole number of days from now to t, rounded up
func daysUntil(now, t time.Time) int {
	return int(math.Ceil(t.Sub(now).Hours() / 24))
}
