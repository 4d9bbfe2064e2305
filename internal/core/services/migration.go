package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/shoebox-labs/shoebox-cli/internal/core/domain"
	"github.com/shoebox-labs/shoebox-cli/internal/core/ports/driven"
	"github.com/shoebox-labs/shoebox-cli/internal/core/ports/driving"
	"github.com/shoebox-labs/shoebox-cli/internal/logger"
)

// Ensure MigrationService implements the interface.
var _ driving.Migrator = (*MigrationService)(nil)

// DefaultBatchSize is how many documents are embedded per committed
// batch.
const DefaultBatchSize = 10

// MigrationService re-embeds the stored corpus at the current model
// version. Runs are idempotent: documents whose embedding already
// carries the current version are skipped, so an interrupted run can
// simply be started again.
type MigrationService struct {
	docStore  driven.DocumentStore
	embedder  driven.EmbeddingService
	batchSize int

	mu      sync.Mutex
	running bool
}

// NewMigrationService creates a new migration service. batchSize <= 0
// means DefaultBatchSize.
func NewMigrationService(
	docStore driven.DocumentStore,
	embedder driven.EmbeddingService,
	batchSize int,
) *MigrationService {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &MigrationService{
		docStore:  docStore,
		embedder:  embedder,
		batchSize: batchSize,
	}
}

// IsMigrated reports whether the document has an embedding at the
// current model version.
func (m *MigrationService) IsMigrated(ctx context.Context, documentID string) (bool, error) {
	if m.embedder == nil {
		return false, domain.ErrEmbeddingUnavailable
	}

	emb, err := m.docStore.GetEmbedding(ctx, documentID)
	if err != nil {
		return false, fmt.Errorf("get embedding: %w", err)
	}
	return emb != nil && emb.ModelVersion == m.embedder.ModelVersion(), nil
}

// Migrate starts a re-embedding run. Progress events arrive on the
// first channel, a run-fatal error (if any) on the second; both close
// when the run ends. Per-document embedding failures are counted and
// skipped, never fatal. Store failures are fatal: if the persistence
// layer is broken there is nothing useful to continue with.
func (m *MigrationService) Migrate(ctx context.Context) (<-chan domain.MigrationProgress, <-chan error) {
	progressCh := make(chan domain.MigrationProgress)
	errCh := make(chan error, 1)

	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		errCh <- domain.ErrMigrationRunning
		close(progressCh)
		close(errCh)
		return progressCh, errCh
	}
	m.running = true
	m.mu.Unlock()

	go func() {
		defer close(progressCh)
		defer close(errCh)
		defer func() {
			m.mu.Lock()
			m.running = false
			m.mu.Unlock()
		}()

		if err := m.run(ctx, progressCh); err != nil {
			errCh <- err
		}
	}()

	return progressCh, errCh
}

// run walks the corpus in creation order and embeds stale documents
// in batches. Batches are committed sequentially so progress stays
// monotonic.
func (m *MigrationService) run(ctx context.Context, progressCh chan<- domain.MigrationProgress) error {
	if m.embedder == nil {
		return domain.ErrEmbeddingUnavailable
	}

	logger.Section("Embedding Migration")
	version := m.embedder.ModelVersion()
	logger.Info("Target model version: %s", version)

	docs, err := m.docStore.ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}

	// Keep only documents that are missing or stale. An empty corpus
	// (or a fully migrated one) completes immediately - not an error.
	pending := make([]domain.Document, 0, len(docs))
	for _, doc := range docs {
		migrated, err := m.IsMigrated(ctx, doc.ID)
		if err != nil {
			return err
		}
		if !migrated {
			pending = append(pending, doc)
		}
	}
	if len(pending) == 0 {
		logger.Info("Nothing to migrate")
		return nil
	}

	total := len(pending)
	processed := 0
	failed := 0
	logger.Info("Migrating %d documents in batches of %d", total, m.batchSize)

	for start := 0; start < total; start += m.batchSize {
		// Cancellation stops before the next batch; batches already
		// committed stay committed, which idempotency makes safe.
		if err := ctx.Err(); err != nil {
			return err
		}

		end := start + m.batchSize
		if end > total {
			end = total
		}

		batch := make([]domain.Embedding, 0, end-start)
		for i := start; i < end; i++ {
			doc := &pending[i]
			processed++

			vec, err := m.embedder.Embed(ctx, doc.EmbeddingText())
			if err != nil {
				failed++
				logger.Warn("Embedding failed for %s: %v", doc.ID, err)
			} else {
				batch = append(batch, domain.Embedding{
					DocumentID:   doc.ID,
					Vector:       vec,
					ModelVersion: version,
					Dimension:    len(vec),
				})
			}

			m.emit(ctx, progressCh, domain.MigrationProgress{
				Total:        total,
				Processed:    processed,
				Failed:       failed,
				CurrentID:    doc.ID,
				CurrentTitle: doc.Title,
			})
		}

		if err := m.docStore.BatchUpsertEmbeddings(ctx, batch); err != nil {
			return fmt.Errorf("commit batch: %w", err)
		}

		m.emit(ctx, progressCh, domain.MigrationProgress{
			Total:          total,
			Processed:      processed,
			Failed:         failed,
			BatchCommitted: true,
		})
		logger.Debug("Committed batch of %d (processed %d/%d, failed %d)",
			len(batch), processed, total, failed)
	}

	logger.Info("Migration complete: %d processed, %d failed", processed, failed)
	return nil
}

// emit delivers a progress event unless the run was cancelled.
func (m *MigrationService) emit(
	ctx context.Context,
	progressCh chan<- domain.MigrationProgress,
	event domain.MigrationProgress,
) {
	select {
	case progressCh <- event:
	case <-ctx.Done():
	}
}
