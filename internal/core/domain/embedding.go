package domain

import "time"

// Embedding is the stored vector representation of a document under a
// specific embedding model version. A document has at most one
// embedding row; re-embedding replaces it.
type Embedding struct {
	// DocumentID links to the owning Document (one-to-one).
	DocumentID string

	// Vector is the embedding itself. Its length must equal Dimension.
	Vector []float64

	// ModelVersion tags the model that produced the vector. Migration
	// treats any mismatch with the current version as stale.
	ModelVersion string

	// Dimension is the vector length. The store enforces that the
	// encoded blob is exactly Dimension*8 bytes.
	Dimension int

	// CreatedAt is when the vector was computed.
	CreatedAt time.Time
}
