package commands

import (
	"fmt"

	"github.com/benvon/goal-insights/internal/analytics"
	"github.com/benvon/goal-insights/internal/config"
	"github.com/benvon/goal-insights/internal/queue"
	"github.com/spf13/cobra"
)

// NewEnqueueCmd creates the enqueue command
func NewEnqueueCmd() *cobra.Command {
	var (
		goalID    int64
		all       bool
		timeframe string
	)

	cmd := &cobra.Command{
		Use:   "enqueue",
		Short: "Queue a background insight recompute",
		Long:  "Publish a recompute job for one goal, or with --all a refresh of every active goal",
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := buildJob(goalID, all, timeframe)
			if err != nil {
				return err
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := cfg.RequireQueue(); err != nil {
				return err
			}

			q, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL, queue.RabbitMQConfig{}, nil)
			if err != nil {
				return err
			}
			defer func() { _ = q.Close() }()

			if err := q.Enqueue(cmd.Context(), job); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Enqueued %s job %s\n", job.Type, job.ID)
			return nil
		},
	}

	cmd.Flags().Int64Var(&goalID, "goal", 0, "Goal ID")
	cmd.Flags().BoolVar(&all, "all", false, "Refresh every active goal")
	cmd.Flags().StringVar(&timeframe, "timeframe", "", "week, month, quarter or year (default: the worker's INSIGHTS_DEFAULT_TIMEFRAME)")
	cmd.MarkFlagsMutuallyExclusive("goal", "all")

	return cmd
}

func buildJob(goalID int64, all bool, timeframe string) (*queue.Job, error) {
	if timeframe != "" {
		if _, err := analytics.ParseTimeframe(timeframe); err != nil {
			return nil, err
		}
	}
	if all {
		job := queue.NewJob(queue.JobTypeRefreshAll, nil)
		job.Timeframe = timeframe
		job.ForceRefresh = true
		return job, nil
	}
	if goalID <= 0 {
		return nil, fmt.Errorf("--goal or --all is required")
	}
	return queue.NewRecomputeJob(goalID, timeframe), nil
}
