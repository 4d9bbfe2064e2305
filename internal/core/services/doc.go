// Package services implements the core business logic.
//
// Services implement the driving ports and depend only on domain
// types and driven ports. The two services are:
//
//   - SearchService: hybrid keyword + semantic ranking with graceful
//     degradation when the full-text index or embeddings are missing
//   - MigrationService: batched, idempotent re-embedding of the
//     stored corpus
package services
