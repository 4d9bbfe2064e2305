package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/shoebox-labs/shoebox-cli/internal/adapters/driven/storage/memory"
	"github.com/shoebox-labs/shoebox-cli/internal/core/domain"
	"github.com/shoebox-labs/shoebox-cli/internal/core/services"
)

// stubEmbedder is a deterministic embedding service for CLI tests.
type stubEmbedder struct {
	vec     []float64
	err     error
	version string
}

func (s *stubEmbedder) Embed(_ context.Context, _ string) ([]float64, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.vec, nil
}

func (s *stubEmbedder) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	return s.Embed(ctx, text)
}

func (s *stubEmbedder) Dimensions() int { return len(s.vec) }

func (s *stubEmbedder) ModelVersion() string { return s.version }

// setupTestServices wires the commands against an in-memory store and
// a stub embedder. Returns the store for seeding and a cleanup that
// unwires everything.
func setupTestServices(t *testing.T) (*memory.DocumentStore, func()) {
	t.Helper()

	store := memory.NewDocumentStore()
	emb := &stubEmbedder{vec: []float64{1, 0}, version: "test-model"}

	docStore = store
	embedder = emb
	searchService = services.NewSearchService(store, emb, domain.DefaultSearchConfig())
	migrator = services.NewMigrationService(store, emb, services.DefaultBatchSize)

	return store, func() {
		docStore = nil
		embedder = nil
		searchService = nil
		migrator = nil
	}
}

// execute runs the root command with args and captures its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}
