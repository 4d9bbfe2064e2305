package domain

// Default search tuning values. The weights and the pre-filter limit
// are carried-over defaults with no documented derivation; they are
// configuration, not validated constants.
const (
	DefaultKeywordWeight  = 0.3
	DefaultSemanticWeight = 0.7
	DefaultPrefilterLimit = 100
)

// SearchConfig tunes the hybrid ranking.
type SearchConfig struct {
	// KeywordWeight scales the lexical match score.
	KeywordWeight float64

	// SemanticWeight scales the cosine similarity score.
	SemanticWeight float64

	// PrefilterLimit caps how many candidates the full-text index may
	// return before scoring. Zero or negative means the default.
	PrefilterLimit int
}

// DefaultSearchConfig returns the default fusion weights and
// pre-filter limit.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		KeywordWeight:  DefaultKeywordWeight,
		SemanticWeight: DefaultSemanticWeight,
		PrefilterLimit: DefaultPrefilterLimit,
	}
}

// SearchOptions configures a single search call.
type SearchOptions struct {
	// Limit is the maximum number of results. Zero or negative means
	// no limit.
	Limit int
}

// SearchResult is a single ranked hit. It carries the fused score and
// both of its components so callers can audit the breakdown.
type SearchResult struct {
	// Document is the matched document.
	Document Document

	// KeywordScore is the fraction of query tokens found in the
	// document's searchable text (0..1).
	KeywordScore float64

	// SemanticScore is the cosine similarity between the query vector
	// and the document's stored vector. Zero when no vector is stored.
	SemanticScore float64

	// FinalScore is the weighted fusion the results are ordered by.
	FinalScore float64
}
