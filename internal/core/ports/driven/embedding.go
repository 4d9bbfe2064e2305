package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Implementations must be deterministic within one model version:
// the same input yields the same output, so migrations can be re-run
// and test fixtures stay stable. Empty input yields a zero vector of
// Dimensions() length, not an error.
type EmbeddingService interface {
	// Embed generates a vector embedding for document text.
	Embed(ctx context.Context, text string) ([]float64, error)

	// EmbedQuery generates a vector embedding for a search query.
	// May share the document code path.
	EmbedQuery(ctx context.Context, text string) ([]float64, error)

	// Dimensions returns the configured embedding vector size.
	Dimensions() int

	// ModelVersion returns the tag stored alongside vectors. A stored
	// embedding is current iff its tag equals this exactly.
	ModelVersion() string
}
