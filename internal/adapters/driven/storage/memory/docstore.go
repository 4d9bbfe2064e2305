// Package memory provides an in-memory implementation of the document
// store. It keeps everything in maps, implements the same contracts as
// the SQLite store (minus durability) and exists for tests and for
// trying the CLI without touching disk.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/shoebox-labs/shoebox-cli/internal/core/domain"
	"github.com/shoebox-labs/shoebox-cli/internal/core/ports/driven"
	"github.com/shoebox-labs/shoebox-cli/internal/vector"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
type DocumentStore struct {
	mu         sync.RWMutex
	documents  map[string]domain.Document
	embeddings map[string]domain.Embedding
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents:  make(map[string]domain.Document),
		embeddings: make(map[string]domain.Embedding),
	}
}

// UpsertDocument stores or updates a document and optionally its
// embedding. The creation timestamp of an existing document is
// preserved, matching the durable store.
func (s *DocumentStore) UpsertDocument(_ context.Context, doc *domain.Document, emb *domain.Embedding) error {
	if doc.ID == "" {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *doc
	if existing, ok := s.documents[doc.ID]; ok {
		stored.CreatedAt = existing.CreatedAt
	}
	s.documents[doc.ID] = stored

	if emb != nil {
		if err := validateEmbedding(emb); err != nil {
			return err
		}
		s.embeddings[doc.ID] = *emb
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *DocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// DeleteDocument removes a document and its embedding.
func (s *DocumentStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, id)
	delete(s.embeddings, id)
	return nil
}

// ListDocuments returns all documents ordered by creation time.
func (s *DocumentStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]domain.Document, 0, len(s.documents))
	for id := range s.documents {
		docs = append(docs, s.documents[id])
	}
	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].CreatedAt.Before(docs[j].CreatedAt)
		}
		return docs[i].ID < docs[j].ID
	})
	return docs, nil
}

// GetEmbedding retrieves a document's embedding; nil when absent.
func (s *DocumentStore) GetEmbedding(_ context.Context, documentID string) (*domain.Embedding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	emb, ok := s.embeddings[documentID]
	if !ok {
		return nil, nil
	}
	return &emb, nil
}

// BatchUpsertEmbeddings atomically stores a batch of embeddings.
func (s *DocumentStore) BatchUpsertEmbeddings(_ context.Context, embs []domain.Embedding) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate up front so a mid-batch failure cannot leave a partial
	// write behind.
	for i := range embs {
		if err := validateEmbedding(&embs[i]); err != nil {
			return err
		}
	}
	for i := range embs {
		s.embeddings[embs[i].DocumentID] = embs[i]
	}
	return nil
}

// FullTextQuery does a naive substring scan over the searchable text.
// Good enough to stand in for the FTS index in tests.
func (s *DocumentStore) FullTextQuery(_ context.Context, query string, limit int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil, nil
	}

	var ids []string
	for id := range s.documents {
		doc := s.documents[id]
		haystack := strings.ToLower(doc.SearchableText() + "\n" + doc.DocType.Label())
		if strings.Contains(haystack, needle) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

// FullTextAvailable is always true for the in-memory store.
func (s *DocumentStore) FullTextAvailable() bool {
	return true
}

func validateEmbedding(emb *domain.Embedding) error {
	if emb.DocumentID == "" {
		return domain.ErrInvalidInput
	}
	if emb.Dimension != len(emb.Vector) {
		return domain.ErrDimensionMismatch
	}
	// Round-trip through the codec to enforce the same byte contract
	// as the durable store.
	if _, err := vector.Decode(vector.Encode(emb.Vector), emb.Dimension); err != nil {
		return err
	}
	return nil
}
