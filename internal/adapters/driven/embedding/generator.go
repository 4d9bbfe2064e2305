// Package embedding combines a primary embedding strategy with a
// lexicon fallback and normalises every result to a fixed dimension.
package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/shoebox-labs/shoebox-cli/internal/core/domain"
	"github.com/shoebox-labs/shoebox-cli/internal/core/ports/driven"
	"github.com/shoebox-labs/shoebox-cli/internal/logger"
	"github.com/shoebox-labs/shoebox-cli/internal/vector"
)

// Ensure Generator implements the interface.
var _ driven.EmbeddingService = (*Generator)(nil)

// Config holds generator configuration.
type Config struct {
	// Dimensions is the target vector size. Results from the
	// underlying strategies are zero-padded or truncated to this
	// length. Zero means "use the primary strategy's native size".
	Dimensions int

	// ModelVersion overrides the derived version tag.
	ModelVersion string
}

// Generator produces fixed-dimension embeddings. It tries the primary
// strategy first and degrades to the fallback per call; a document
// that embeds through the fallback is still tagged with the
// generator's single version, so migration state stays coherent.
type Generator struct {
	primary    driven.EmbeddingService
	fallback   driven.EmbeddingService
	dimensions int
	version    string
}

// NewGenerator creates a generator from the available strategies.
// Either may be nil; with neither, embedding is unavailable and
// construction fails with a typed error rather than letting callers
// discover it per request.
func NewGenerator(primary, fallback driven.EmbeddingService, cfg Config) (*Generator, error) {
	if primary == nil && fallback == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	dimensions := cfg.Dimensions
	if dimensions <= 0 {
		if primary != nil {
			dimensions = primary.Dimensions()
		} else {
			dimensions = fallback.Dimensions()
		}
	}
	if dimensions <= 0 {
		return nil, fmt.Errorf("embedding generator: no usable dimension")
	}

	version := cfg.ModelVersion
	if version == "" {
		parts := make([]string, 0, 2)
		if primary != nil {
			parts = append(parts, primary.ModelVersion())
		}
		if fallback != nil {
			parts = append(parts, fallback.ModelVersion())
		}
		version = fmt.Sprintf("%s@%d", strings.Join(parts, "+"), dimensions)
	}

	return &Generator{
		primary:    primary,
		fallback:   fallback,
		dimensions: dimensions,
		version:    version,
	}, nil
}

// Embed generates a vector for document text. Empty input yields the
// zero vector, not an error.
func (g *Generator) Embed(ctx context.Context, text string) ([]float64, error) {
	return g.embed(ctx, text, driven.EmbeddingService.Embed)
}

// EmbedQuery generates a vector for a search query.
func (g *Generator) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	return g.embed(ctx, text, driven.EmbeddingService.EmbedQuery)
}

func (g *Generator) embed(
	ctx context.Context,
	text string,
	call func(driven.EmbeddingService, context.Context, string) ([]float64, error),
) ([]float64, error) {
	if strings.TrimSpace(text) == "" {
		return vector.Zero(g.dimensions), nil
	}

	var primaryErr error
	if g.primary != nil {
		vec, err := call(g.primary, ctx, text)
		if err == nil {
			return g.normalize(vec), nil
		}
		primaryErr = err
		logger.Warn("Primary embedding failed: %v", err)
	}

	if g.fallback != nil {
		vec, err := call(g.fallback, ctx, text)
		if err != nil {
			return nil, fmt.Errorf("fallback embedding: %w", err)
		}
		if primaryErr != nil {
			logger.Debug("Degraded to fallback embedding")
		}
		return g.normalize(vec), nil
	}

	return nil, fmt.Errorf("primary embedding: %w", primaryErr)
}

// normalize pads with zeros or truncates to the configured dimension.
// Truncation is lossy; the dimension is part of the version tag so a
// dimension change re-embeds the corpus.
func (g *Generator) normalize(vec []float64) []float64 {
	switch {
	case len(vec) == g.dimensions:
		return vec
	case len(vec) > g.dimensions:
		return vec[:g.dimensions]
	default:
		padded := vector.Zero(g.dimensions)
		copy(padded, vec)
		return padded
	}
}

// Dimensions returns the target vector size.
func (g *Generator) Dimensions() int {
	return g.dimensions
}

// ModelVersion returns the tag stored alongside vectors.
func (g *Generator) ModelVersion() string {
	return g.version
}
