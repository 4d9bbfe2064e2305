// Package sqlite provides the SQLite-backed document store.
//
// One Store owns four pieces of on-disk state: the documents table,
// the embeddings table (one versioned vector per document), the assets
// table, and the documents_fts full-text index. The index is updated
// explicitly inside the same transaction as every document write, so
// it can never drift from the documents table.
//
// Schema changes are applied through embedded SQL migrations in the
// migrations subpackage. The FTS5 virtual table is created by a
// capability probe at open instead; when the fts5 module is missing
// the store degrades to returning no full-text candidates, which
// callers treat as "scan everything".
//
// Vector blobs are little-endian IEEE-754 float64, encoded by the
// internal/vector package. The dimension column must equal the blob
// length divided by 8; writes that violate this are rejected and
// reads that encounter it fail loudly.
package sqlite
