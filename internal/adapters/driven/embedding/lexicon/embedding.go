// Package lexicon provides a fallback embedding service that averages
// per-token word vectors from a fixed lexicon. It needs no model
// server, is fully deterministic, and degrades gracefully: tokens the
// lexicon does not know are skipped, and a text with no known tokens
// embeds to the zero vector.
package lexicon

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/shoebox-labs/shoebox-cli/internal/core/ports/driven"
	"github.com/shoebox-labs/shoebox-cli/internal/vector"
)

// Ensure Embedder implements the interface.
var _ driven.EmbeddingService = (*Embedder)(nil)

// Embedder averages word vectors from an in-memory lexicon.
type Embedder struct {
	vectors    map[string][]float64
	dimensions int
	version    string
}

// New creates a lexicon embedder. All vectors must share the given
// dimension; shorter or longer entries are rejected.
func New(vectors map[string][]float64, dimensions int, version string) (*Embedder, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("lexicon: dimensions must be positive, got %d", dimensions)
	}
	if version == "" {
		version = "lexicon-v1"
	}
	for word, vec := range vectors {
		if len(vec) != dimensions {
			return nil, fmt.Errorf("lexicon: vector for %q has %d values, want %d",
				word, len(vec), dimensions)
		}
	}

	return &Embedder{
		vectors:    vectors,
		dimensions: dimensions,
		version:    version,
	}, nil
}

// LoadFile reads a lexicon from a text file where each line is a word
// followed by its vector values, whitespace-separated (the common
// plain-text word-vector format).
func LoadFile(path string, dimensions int, version string) (*Embedder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("lexicon: opening %s: %w", path, err)
	}
	defer f.Close()

	vectors, err := parse(f, dimensions)
	if err != nil {
		return nil, fmt.Errorf("lexicon: parsing %s: %w", path, err)
	}

	return New(vectors, dimensions, version)
}

// parse reads word-vector lines. Lines whose value count disagrees
// with the dimension are malformed input, not a degraded state.
func parse(r io.Reader, dimensions int) (map[string][]float64, error) {
	vectors := make(map[string][]float64)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != dimensions+1 {
			return nil, fmt.Errorf("line %d: got %d values, want %d", line, len(fields)-1, dimensions)
		}

		vec := make([]float64, dimensions)
		for i, field := range fields[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			vec[i] = v
		}
		vectors[strings.ToLower(fields[0])] = vec
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return vectors, nil
}

// Embed averages the vectors of all tokens the lexicon resolves.
// No resolved tokens yields the zero vector.
func (e *Embedder) Embed(_ context.Context, text string) ([]float64, error) {
	sum := vector.Zero(e.dimensions)
	resolved := 0

	for _, token := range Tokenize(text) {
		vec, ok := e.vectors[token]
		if !ok {
			continue
		}
		for i, v := range vec {
			sum[i] += v
		}
		resolved++
	}

	if resolved == 0 {
		return sum, nil
	}
	for i := range sum {
		sum[i] /= float64(resolved)
	}
	return sum, nil
}

// EmbedQuery shares the document code path.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	return e.Embed(ctx, text)
}

// Dimensions returns the embedding vector size.
func (e *Embedder) Dimensions() int {
	return e.dimensions
}

// ModelVersion returns the tag stored alongside vectors.
func (e *Embedder) ModelVersion() string {
	return e.version
}

// Tokenize lower-cases the text and splits it on anything that is not
// a letter or digit.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
