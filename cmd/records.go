package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/teamboard/teamboard/internal/logging"
	"github.com/teamboard/teamboard/internal/store"
)

// Default locations for the offline records backend and the overlay.
const (
	defaultRecordsDir  = "data/records"
	defaultOverlayPath = "data/records-overlay.json"
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Show the merged team/project records",
	Long: `This command loads the team/project records from the backing store,
applies any locally cached edits over the remote baseline, and prints the
merged result as JSON. With RECORDS_DRIVE_TOKEN set, the backing store is
Google Drive's application data folder; otherwise a local directory is
used, which suits offline work and testing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		backend, err := recordsBackend(ctx)
		if err != nil {
			return err
		}

		records := store.NewRecords(backend, defaultOverlayPath)
		projects, err := records.Load(ctx)
		if err != nil {
			return fmt.Errorf("failed to load team records: %w", err)
		}

		content, err := json.MarshalIndent(projects, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode team records: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(content))
		return nil
	},
}

// recordsBackend selects the file store: Drive when an access token is
// provided, a local directory otherwise. Obtaining the token is outside
// this tool; it consumes whatever the environment supplies.
func recordsBackend(ctx context.Context) (store.Store, error) {
	if token := os.Getenv("RECORDS_DRIVE_TOKEN"); token != "" {
		logging.Info("using drive records store", "token", logging.MaskSensitive(token))
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		return store.NewDriveStore(ctx, ts)
	}

	logging.Info("using local records store", "dir", defaultRecordsDir)
	return store.NewDirStore(defaultRecordsDir)
}

func init() {
	rootCmd.AddCommand(recordsCmd)
}
