package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Re-embed documents at the current model version",
	Long: `Walks the stored corpus and regenerates embeddings for every
document whose vector is missing or was produced by an older model.
Documents are processed in batches; already-migrated documents are
skipped, so interrupted runs can simply be restarted.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	if migrator == nil {
		return errors.New("migrator not configured")
	}

	progressCh, errCh := migrator.Migrate(context.Background())

	processed, failed := 0, 0
	saw := false
	for event := range progressCh {
		saw = true
		processed, failed = event.Processed, event.Failed
		if event.BatchCommitted {
			cmd.Printf("  batch committed (%d/%d, %d failed)\n",
				event.Processed, event.Total, event.Failed)
			continue
		}
		title := event.CurrentTitle
		if title == "" {
			title = event.CurrentID
		}
		cmd.Printf("  [%d/%d] %s\n", event.Processed, event.Total, title)
	}

	if err := <-errCh; err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if !saw {
		cmd.Println("Nothing to migrate.")
		return nil
	}
	cmd.Printf("Migration complete: %d processed, %d failed\n", processed, failed)
	return nil
}
