package services

import (
	"context"
	"sort"
	"sync"

	"github.com/shoebox-labs/shoebox-cli/internal/core/domain"
	"github.com/shoebox-labs/shoebox-cli/internal/core/ports/driven"
)

// --- Mock implementations ---

// fakeDocStore is an in-memory driven.DocumentStore for testing.
type fakeDocStore struct {
	mu         sync.Mutex
	docs       map[string]domain.Document
	embeddings map[string]domain.Embedding

	ftsAvailable bool
	ftsHits      []string // returned by FullTextQuery when set

	listErr    error
	batchErr   error
	batchCalls int
	batchHook  func() // runs after each successful batch commit
}

var _ driven.DocumentStore = (*fakeDocStore)(nil)

func newFakeDocStore() *fakeDocStore {
	return &fakeDocStore{
		docs:         make(map[string]domain.Document),
		embeddings:   make(map[string]domain.Embedding),
		ftsAvailable: true,
	}
}

func (f *fakeDocStore) UpsertDocument(_ context.Context, doc *domain.Document, emb *domain.Embedding) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[doc.ID] = *doc
	if emb != nil {
		f.embeddings[doc.ID] = *emb
	}
	return nil
}

func (f *fakeDocStore) DeleteDocument(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.docs, id)
	delete(f.embeddings, id)
	return nil
}

func (f *fakeDocStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

func (f *fakeDocStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	docs := make([]domain.Document, 0, len(f.docs))
	for _, doc := range f.docs {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].CreatedAt.Before(docs[j].CreatedAt)
		}
		return docs[i].ID < docs[j].ID
	})
	return docs, nil
}

func (f *fakeDocStore) GetEmbedding(_ context.Context, documentID string) (*domain.Embedding, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	emb, ok := f.embeddings[documentID]
	if !ok {
		return nil, nil
	}
	return &emb, nil
}

func (f *fakeDocStore) BatchUpsertEmbeddings(_ context.Context, embs []domain.Embedding) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batchCalls++
	if f.batchErr != nil {
		return f.batchErr
	}
	for _, emb := range embs {
		f.embeddings[emb.DocumentID] = emb
	}
	if f.batchHook != nil {
		f.batchHook()
	}
	return nil
}

func (f *fakeDocStore) FullTextQuery(_ context.Context, _ string, limit int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.ftsAvailable || len(f.ftsHits) == 0 {
		return nil, nil
	}
	if limit > 0 && len(f.ftsHits) > limit {
		return f.ftsHits[:limit], nil
	}
	return f.ftsHits, nil
}

func (f *fakeDocStore) FullTextAvailable() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ftsAvailable
}

// fakeEmbedder is a deterministic driven.EmbeddingService for testing.
type fakeEmbedder struct {
	mu      sync.Mutex
	vectors map[string][]float64 // keyed by input text
	def     []float64            // returned for unknown inputs
	failOn  map[string]error     // keyed by input text
	version string
	calls   int
}

var _ driven.EmbeddingService = (*fakeEmbedder)(nil)

func newFakeEmbedder(version string, def []float64) *fakeEmbedder {
	return &fakeEmbedder{
		vectors: make(map[string][]float64),
		failOn:  make(map[string]error),
		def:     def,
		version: version,
	}
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err, ok := f.failOn[text]; ok {
		return nil, err
	}
	if vec, ok := f.vectors[text]; ok {
		return vec, nil
	}
	return f.def, nil
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	return f.Embed(ctx, text)
}

func (f *fakeEmbedder) Dimensions() int { return len(f.def) }

func (f *fakeEmbedder) ModelVersion() string { return f.version }
