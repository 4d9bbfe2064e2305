package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDimensionMismatch indicates a vector whose length disagrees
	// with its declared dimension or with the encoded blob size.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrEmbeddingUnavailable indicates that no embedding strategy is
	// configured at all. With neither a primary model nor a fallback
	// lexicon, semantic scoring cannot run.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrMigrationRunning indicates a re-embedding run is already in
	// progress.
	ErrMigrationRunning = errors.New("migration already running")
)
