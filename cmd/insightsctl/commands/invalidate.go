package commands

import (
	"fmt"

	"github.com/benvon/goal-insights/internal/cache"
	"github.com/benvon/goal-insights/internal/config"
	"github.com/benvon/goal-insights/internal/engine"
	"github.com/spf13/cobra"
)

// NewInvalidateCmd creates the invalidate command
func NewInvalidateCmd() *cobra.Command {
	var goalID int64

	cmd := &cobra.Command{
		Use:   "invalidate",
		Short: "Drop a goal's cached insights",
		Long:  "Delete the cached insight bundles of a goal, every timeframe, from Redis so the next request recomputes them",
		RunE: func(cmd *cobra.Command, args []string) error {
			if goalID <= 0 {
				return fmt.Errorf("--goal is required")
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cfg.CacheBackend != config.CacheBackendRedis {
				return fmt.Errorf("invalidate needs INSIGHTS_CACHE_BACKEND=redis; the memory cache lives inside each process")
			}

			client, err := cache.NewRedisClient(cmd.Context(), cfg.RedisURL)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			store := cache.NewRedisStore(client, cache.RedisOptions{EntryTTL: cfg.CacheTTL}, nil, nil)
			if err := engine.New(store, nil, nil).Invalidate(cmd.Context(), engine.GoalEntityID(goalID)); err != nil {
				return fmt.Errorf("failed to invalidate goal %d: %w", goalID, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Invalidated cached insights for goal %d\n", goalID)
			return nil
		},
	}

	cmd.Flags().Int64Var(&goalID, "goal", 0, "Goal ID (required)")

	return cmd
}
