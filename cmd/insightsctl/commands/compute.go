package commands

import (
	"fmt"

	"github.com/benvon/goal-insights/internal/analytics"
	"github.com/benvon/goal-insights/internal/insights"
	"github.com/spf13/cobra"
)

// NewComputeCmd creates the compute command
func NewComputeCmd() *cobra.Command {
	var (
		file      string
		timeframe string
		now       string
		output    string
		priority  string
	)

	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute insights for a record fixture",
		Long:  "Compute the metric bundle and insights for a YAML or JSON record fixture without touching the database or cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return fmt.Errorf("--file is required")
			}
			filter, err := insights.ParsePriorityFilter(priority)
			if err != nil {
				return err
			}
			if err := checkOutput(output); err != nil {
				return err
			}
			at, err := parseNow(now)
			if err != nil {
				return err
			}
			fixture, err := LoadFixture(file)
			if err != nil {
				return err
			}

			bundle, _, err := offlineEngine(at).Compute(cmd.Context(), fixture.request(timeframe))
			if err != nil {
				return fmt.Errorf("failed to compute insights: %w", err)
			}
			bundle.Insights = insights.FilterByPriority(bundle.Insights, filter)

			if output == "text" {
				tf, _ := analytics.ParseTimeframe(timeframe)
				_, err := fmt.Fprintln(cmd.OutOrStdout(), analytics.SummaryText(bundle.Metrics, tf, at))
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, bundle)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Record fixture, YAML or JSON (required)")
	cmd.Flags().StringVar(&timeframe, "timeframe", "month", "week, month, quarter or year")
	cmd.Flags().StringVar(&now, "now", "", "Evaluate as of this RFC3339 time (default: now)")
	cmd.Flags().StringVar(&output, "output", "json", "Output format: json, yaml or text")
	cmd.Flags().StringVar(&priority, "priority", "all", "Only show insights of this priority")

	return cmd
}
