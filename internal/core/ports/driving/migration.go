package driving

import (
	"context"

	"github.com/shoebox-labs/shoebox-cli/internal/core/domain"
)

// Migrator brings the stored corpus to the current embedding model
// version in bounded batches.
type Migrator interface {
	// Migrate starts a re-embedding run. Progress events arrive on
	// the first channel; a run-fatal error, if any, on the second.
	// Both channels are closed when the run ends. At most one run is
	// active at a time; starting a second yields
	// domain.ErrMigrationRunning on the error channel. Cancelling the
	// context stops the run before the next batch; committed batches
	// stay committed, which is safe because migration is idempotent.
	Migrate(ctx context.Context) (<-chan domain.MigrationProgress, <-chan error)

	// IsMigrated reports whether the document has an embedding at the
	// current model version.
	IsMigrated(ctx context.Context, documentID string) (bool, error)
}
