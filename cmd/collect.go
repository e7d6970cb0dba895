package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teamboard/teamboard/internal/collector"
	"github.com/teamboard/teamboard/internal/config"
	"github.com/teamboard/teamboard/internal/github"
	"github.com/teamboard/teamboard/internal/logging"
)

// collectCmd runs one best-effort collection pass. It takes no flags:
// everything comes from environment variables, and the output lands at a
// fixed relative path unless COLLECT_OUTPUT overrides it.
var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect repository and issue data into the dashboard document",
	Long: `This command discovers repositories for the configured owners, fetches
their issues, extracts feature records and statistics, and writes the
dashboard JSON document. Per-repository failures are recorded inline and
do not fail the run; only a run that collects nothing exits non-zero,
and even then a minimal valid document is written first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		cfg, err := config.LoadConfig()
		if err != nil {
			return writeFallback(config.DefaultOutput, fmt.Errorf("failed to load configuration: %w", err))
		}

		client, err := github.NewClient(ctx, cfg)
		if err != nil {
			return writeFallback(cfg.Collect.Output, fmt.Errorf("failed to create github client: %w", err))
		}

		doc, runErr := collector.New(client, cfg).Run(ctx)
		if err := collector.WriteDocument(doc, cfg.Collect.Output); err != nil {
			logging.Error("failed to write dashboard document", "path", cfg.Collect.Output, "error", err)
			return err
		}

		logging.Info("dashboard document written", "path", cfg.Collect.Output)
		// runErr is non-nil only for a catastrophic run; the fallback
		// document above has already been written in that case.
		return runErr
	},
}

// writeFallback persists the minimal valid document so downstream
// consumers always find a well-formed file, then reports the failure.
func writeFallback(path string, cause error) error {
	if werr := collector.WriteDocument(collector.Fallback(cause), path); werr != nil {
		logging.Error("failed to write fallback document", "path", path, "error", werr)
	}
	return cause
}
