package driven

import (
	"context"

	"github.com/shoebox-labs/shoebox-cli/internal/core/domain"
)

// DocumentStore persists documents, embeddings, assets and the derived
// full-text index. It is the single source of truth for consistency
// between them: every write path updates the index row in the same
// transaction as the document row.
//
// Backed by SQLite.
type DocumentStore interface {
	// UpsertDocument inserts or replaces a document, its asset rows
	// (full replace), its full-text index row and, when emb is
	// non-nil, its embedding - as one atomic unit.
	UpsertDocument(ctx context.Context, doc *domain.Document, emb *domain.Embedding) error

	// DeleteDocument removes the document, its embedding, its assets
	// and its index row as one atomic unit.
	DeleteDocument(ctx context.Context, id string) error

	// GetDocument retrieves a document by ID with its assets.
	// Returns domain.ErrNotFound when it does not exist.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// ListDocuments returns all documents ordered by creation time
	// ascending, assets included.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// GetEmbedding returns the stored embedding for a document, or
	// (nil, nil) when none exists. Absence is not an error.
	GetEmbedding(ctx context.Context, documentID string) (*domain.Embedding, error)

	// BatchUpsertEmbeddings applies all upserts in one transaction.
	// On any failure none of them are committed.
	BatchUpsertEmbeddings(ctx context.Context, embs []domain.Embedding) error

	// FullTextQuery returns up to limit candidate document IDs ranked
	// by lexical relevance. It returns an empty slice - not an error -
	// when full-text capability is unavailable or nothing matches,
	// signalling the caller to fall back to scanning all documents.
	FullTextQuery(ctx context.Context, query string, limit int) ([]string, error)

	// FullTextAvailable reports whether the full-text index exists.
	FullTextAvailable() bool
}
