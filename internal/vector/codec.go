// Package vector encodes embedding vectors for storage and provides
// the similarity math used by hybrid ranking.
//
// The wire layout is fixed: each float64 is written as its IEEE-754
// bit pattern in little-endian order, with no header. The stored
// dimension column is authoritative for the element count. Any change
// to this layout requires a new model_version tag on the stored rows.
package vector

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Encode converts a float64 vector to its storage blob.
// An empty or nil vector encodes to nil.
func Encode(v []float64) []byte {
	if len(v) == 0 {
		return nil
	}
	buf := make([]byte, len(v)*8)
	for i, f := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf
}

// Decode converts a storage blob back to a float64 vector of the given
// dimension. It fails when the blob length disagrees with the
// dimension; a decoded vector is bit-for-bit identical to the encoded
// one.
func Decode(data []byte, dimension int) ([]float64, error) {
	if dimension < 0 {
		return nil, fmt.Errorf("decoding vector: negative dimension %d", dimension)
	}
	if len(data) != dimension*8 {
		return nil, fmt.Errorf("decoding vector: blob is %d bytes, want %d for dimension %d",
			len(data), dimension*8, dimension)
	}
	if dimension == 0 {
		return nil, nil
	}
	v := make([]float64, dimension)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
	}
	return v, nil
}

// Cosine returns the cosine similarity between two vectors.
// It is 0 when the lengths differ or either vector has zero
// magnitude; it never divides by zero and never returns NaN.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Zero returns a zero vector of the given dimension.
func Zero(dimension int) []float64 {
	if dimension <= 0 {
		return nil
	}
	return make([]float64, dimension)
}
