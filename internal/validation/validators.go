package validation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/benvon/goal-insights/internal/analytics"
	"github.com/benvon/goal-insights/internal/insights"
	"github.com/go-playground/validator/v10"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators for query enums
	for tag, fn := range map[string]validator.Func{
		"timeframe":        validateTimeframe,
		"insight_priority": validateInsightPriority,
		"export_format":    validateExportFormat,
	} {
		if err := Validate.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("failed to register %s validator: %v", tag, err))
		}
	}
}

// InsightQuery holds the query parameters accepted by the insight routes
type InsightQuery struct {
	GoalID    int64  `validate:"gt=0"`
	Timeframe string `validate:"timeframe"`
	Priority  string `validate:"insight_priority"`
	Format    string `validate:"export_format"`
	Refresh   string `validate:"omitempty,boolean"`
}

// ForceRefresh reports whether refresh was set to a true value
func (q InsightQuery) ForceRefresh() bool {
	force, _ := strconv.ParseBool(q.Refresh)
	return force
}

func validateTimeframe(fl validator.FieldLevel) bool {
	_, err := analytics.ParseTimeframe(fl.Field().String())
	return err == nil
}

func validateInsightPriority(fl validator.FieldLevel) bool {
	_, err := insights.ParsePriorityFilter(fl.Field().String())
	return err == nil
}

func validateExportFormat(fl validator.FieldLevel) bool {
	_, err := analytics.ParseExportFormat(fl.Field().String())
	return err == nil
}

// Message turns a validation error into a client-facing sentence naming
// each offending parameter
func Message(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "timeframe":
			parts = append(parts, fmt.Sprintf("invalid timeframe %q (must be 'week', 'month', 'quarter', or 'year')", fe.Value()))
		case "insight_priority":
			parts = append(parts, fmt.Sprintf("invalid priority %q (must be 'all', 'high', 'medium', or 'low')", fe.Value()))
		case "export_format":
			parts = append(parts, fmt.Sprintf("invalid format %q (must be 'json' or 'csv')", fe.Value()))
		case "boolean":
			parts = append(parts, fmt.Sprintf("invalid %s %q (must be true or false)", strings.ToLower(fe.Field()), fe.Value()))
		case "gt":
			parts = append(parts, "goal id must be a positive integer")
		default:
			parts = append(parts, fmt.Sprintf("invalid %s", strings.ToLower(fe.Field())))
		}
	}
	return strings.Join(parts, "; ")
}
