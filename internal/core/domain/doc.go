// Package domain defines the core business entities for Shoebox.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A captured document with its searchable text
//   - Embedding: The vector representation of a document
//   - Asset: A file (scan page, thumbnail) attached to a document
//   - SearchResult: A ranked hit with its score breakdown
//   - MigrationProgress: A progress event from a re-embedding run
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
