// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - DocumentStore: persistence for documents, embeddings, assets and
//     the full-text index (SQLite adapter)
//
// # Optional Interfaces
//
//   - EmbeddingService: vector generation. When degraded to a zero
//     vector, search still works on keyword scores alone.
package driven
