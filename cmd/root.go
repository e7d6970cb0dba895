package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "teamboard",
	Short: "Teamboard aggregates GitHub project data into a dashboard document",
	Long: `Teamboard is a CLI tool that aggregates GitHub issue and repository
metadata into a browser-renderable dashboard document. It discovers
repositories by wildcard pattern, extracts feature records from issue
titles, computes per-project statistics, and merges locally cached team
record edits over the remote baseline.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(collectCmd)
}
