package driving

import (
	"context"

	"github.com/shoebox-labs/shoebox-cli/internal/core/domain"
)

// SearchService provides hybrid search over stored documents.
type SearchService interface {
	// Search returns documents ranked by fused keyword + semantic
	// score, descending. An empty query returns every document
	// ordered by creation time descending with a fixed score of 1.0.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)
}
