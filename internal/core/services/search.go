package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/shoebox-labs/shoebox-cli/internal/core/domain"
	"github.com/shoebox-labs/shoebox-cli/internal/core/ports/driven"
	"github.com/shoebox-labs/shoebox-cli/internal/core/ports/driving"
	"github.com/shoebox-labs/shoebox-cli/internal/logger"
	"github.com/shoebox-labs/shoebox-cli/internal/vector"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService ranks stored documents by a fused keyword + semantic
// score. It holds no per-call state; every Search call is independent.
type SearchService struct {
	docStore driven.DocumentStore
	embedder driven.EmbeddingService
	cfg      domain.SearchConfig
}

// NewSearchService creates a new search service. The embedder is
// optional (can be nil); without it semantic scores are zero and
// ranking degrades to keyword-only.
func NewSearchService(
	docStore driven.DocumentStore,
	embedder driven.EmbeddingService,
	cfg domain.SearchConfig,
) *SearchService {
	if cfg.PrefilterLimit <= 0 {
		cfg.PrefilterLimit = domain.DefaultPrefilterLimit
	}
	return &SearchService{
		docStore: docStore,
		embedder: embedder,
		cfg:      cfg,
	}
}

// Search performs hybrid search across all stored documents.
func (s *SearchService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" {
		// Browse shortcut: everything, newest first, fixed score.
		logger.Debug("Empty query, returning all documents by recency")
		return s.browseAll(ctx, opts)
	}

	queryVec, err := s.queryEmbedding(ctx, query)
	if err != nil {
		return nil, err
	}

	candidates, err := s.candidates(ctx, query)
	if err != nil {
		return nil, err
	}
	logger.Debug("Scoring %d candidates", len(candidates))

	tokens := tokenize(query)
	results := make([]domain.SearchResult, 0, len(candidates))
	for i := range candidates {
		result, err := s.score(ctx, &candidates[i], tokens, queryVec)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	sortResults(results)

	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	logger.Info("Final results: %d", len(results))

	return results, nil
}

// browseAll returns the whole corpus ordered by creation time
// descending with a fixed score of 1.0. The fixed score is a
// sentinel for "unranked", not a relevance claim.
func (s *SearchService) browseAll(ctx context.Context, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	docs, err := s.docStore.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	results := make([]domain.SearchResult, len(docs))
	for i, doc := range docs {
		results[i] = domain.SearchResult{
			Document:     doc,
			KeywordScore: 1.0,
			FinalScore:   1.0,
		}
	}

	sortResults(results)

	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results, nil
}

// queryEmbedding computes the query vector. Embedding failures and a
// missing embedder degrade to a nil vector (semantic score 0) rather
// than failing the whole query.
func (s *SearchService) queryEmbedding(ctx context.Context, query string) ([]float64, error) {
	if s.embedder == nil {
		logger.Debug("No embedder configured, keyword scores only")
		return nil, nil
	}

	vec, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		logger.Warn("Query embedding failed: %v (keyword scores only)", err)
		return nil, nil
	}
	logger.Debug("Query embedding: %d dimensions", len(vec))
	return vec, nil
}

// candidates narrows the corpus via the full-text index. Zero hits or
// an unavailable index fall back to scanning every document so a cold
// index never silently returns nothing.
func (s *SearchService) candidates(ctx context.Context, query string) ([]domain.Document, error) {
	ids, err := s.docStore.FullTextQuery(ctx, query, s.cfg.PrefilterLimit)
	if err != nil {
		return nil, fmt.Errorf("full-text prefilter: %w", err)
	}

	if len(ids) == 0 {
		logger.Debug("Prefilter empty (available=%t), scanning all documents",
			s.docStore.FullTextAvailable())
		docs, err := s.docStore.ListDocuments(ctx)
		if err != nil {
			return nil, fmt.Errorf("list documents: %w", err)
		}
		return docs, nil
	}

	logger.Debug("Prefilter: %d candidates", len(ids))
	docs := make([]domain.Document, 0, len(ids))
	for _, id := range ids {
		doc, err := s.docStore.GetDocument(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get candidate %s: %w", id, err)
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}

// score computes the keyword, semantic and fused scores for one
// candidate. A document with no stored vector gets semantic score 0
// and stays in the results.
func (s *SearchService) score(
	ctx context.Context,
	doc *domain.Document,
	tokens []string,
	queryVec []float64,
) (domain.SearchResult, error) {
	keyword := keywordScore(doc, tokens)

	semantic := 0.0
	if len(queryVec) > 0 {
		emb, err := s.docStore.GetEmbedding(ctx, doc.ID)
		if err != nil {
			return domain.SearchResult{}, fmt.Errorf("get embedding %s: %w", doc.ID, err)
		}
		if emb != nil && s.currentVersion(emb.ModelVersion) {
			semantic = vector.Cosine(queryVec, emb.Vector)
		}
	}

	return domain.SearchResult{
		Document:      *doc,
		KeywordScore:  keyword,
		SemanticScore: semantic,
		FinalScore:    s.cfg.KeywordWeight*keyword + s.cfg.SemanticWeight*semantic,
	}, nil
}

// currentVersion reports whether a stored vector was produced by the
// active model. Stale vectors are treated exactly like missing ones.
func (s *SearchService) currentVersion(stored string) bool {
	if s.embedder == nil {
		return false
	}
	return stored == s.embedder.ModelVersion()
}

// keywordScore is the fraction of query tokens found as substrings in
// the document's searchable text. Zero tokens scores 1.0, matching
// the empty-query rule.
func keywordScore(doc *domain.Document, tokens []string) float64 {
	if len(tokens) == 0 {
		return 1.0
	}

	haystack := strings.ToLower(doc.SearchableText())
	matched := 0
	for _, token := range tokens {
		if strings.Contains(haystack, token) {
			matched++
		}
	}
	return float64(matched) / float64(len(tokens))
}

// tokenize lower-cases the query and splits on whitespace and
// punctuation.
func tokenize(query string) []string {
	return strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// sortResults orders by fused score descending; ties break by
// creation time descending, then ID ascending, so ordering is total
// and deterministic.
func sortResults(results []domain.SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].FinalScore != results[j].FinalScore {
			return results[i].FinalScore > results[j].FinalScore
		}
		ti, tj := results[i].Document.CreatedAt, results[j].Document.CreatedAt
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return results[i].Document.ID < results[j].Document.ID
	})
}
