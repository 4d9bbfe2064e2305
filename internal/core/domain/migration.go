package domain

// MigrationProgress is a single event emitted by a re-embedding run.
// One event is emitted per document attempted and one per batch
// committed.
type MigrationProgress struct {
	// Total is the number of documents the run will attempt.
	Total int

	// Processed is the number of documents attempted so far,
	// including failures.
	Processed int

	// Failed is the number of documents whose embedding failed.
	// Failures are isolated; the run continues.
	Failed int

	// CurrentID and CurrentTitle identify the document being
	// processed. Both are empty on batch-commit events.
	CurrentID    string
	CurrentTitle string

	// BatchCommitted is true for the event emitted after a batch of
	// embeddings is durably stored.
	BatchCommitted bool
}
