package main

import (
	"fmt"
	"os"

	"github.com/benvon/goal-insights/cmd/insightsctl/commands"
	"github.com/spf13/cobra"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:          "insightsctl",
		Short:        "Operator tool for the goal insights engine",
		Long:         "CLI tool for computing insights offline, exporting analytics and managing the insight cache and job queue",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(commands.NewComputeCmd())
	rootCmd.AddCommand(commands.NewExportCmd())
	rootCmd.AddCommand(commands.NewInvalidateCmd())
	rootCmd.AddCommand(commands.NewEnqueueCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
