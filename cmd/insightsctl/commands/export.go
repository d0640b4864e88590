package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/benvon/goal-insights/internal/analytics"
	"github.com/spf13/cobra"
)

// NewExportCmd creates the export command
func NewExportCmd() *cobra.Command {
	var (
		file      string
		timeframe string
		now       string
		format    string
		out       string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export analytics for a record fixture",
		Long:  "Write the records and headline metrics of a fixture as JSON or CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return fmt.Errorf("--file is required")
			}
			exportFormat, err := analytics.ParseExportFormat(format)
			if err != nil {
				return err
			}
			tf, err := analytics.ParseTimeframe(timeframe)
			if err != nil {
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
				return fmt.Errorf("failed to compute metrics: %w", err)
			}
			data := analytics.NewExport(at, tf, analytics.Input{
				Goal:     fixture.Goal,
				Goals:    fixture.Goals,
				Subgoals: fixture.Subgoals,
				Todos:    fixture.Todos,
			}, bundle.Metrics)

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", out, err)
				}
				defer func() {
					if err := f.Close(); err != nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to close %s: %v\n", out, err)
					}
				}()
				w = f
			}
			return data.Write(w, exportFormat)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Record fixture, YAML or JSON (required)")
	cmd.Flags().StringVar(&timeframe, "timeframe", "month", "week, month, quarter or year")
	cmd.Flags().StringVar(&now, "now", "", "Evaluate as of this RFC3339 time (default: now)")
	cmd.Flags().StringVar(&format, "format", "json", "Export format: json or csv")
	cmd.Flags().StringVar(&out, "out", "", "Write to this file instead of stdout")

	return cmd
}
