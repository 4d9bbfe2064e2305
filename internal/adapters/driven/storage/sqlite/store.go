package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/shoebox-labs/shoebox-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/shoebox-labs/shoebox-cli/internal/core/domain"
	"github.com/shoebox-labs/shoebox-cli/internal/core/ports/driven"
	"github.com/shoebox-labs/shoebox-cli/internal/logger"
	"github.com/shoebox-labs/shoebox-cli/internal/vector"
)

// Ensure Store implements the interface.
var _ driven.DocumentStore = (*Store)(nil)

// Store is the SQLite-backed document store. It is the sole
// writer/reader of on-disk state and keeps the documents table, the
// embeddings table, the assets table and the full-text index in
// lock-step: every write path updates all of them inside one
// transaction.
type Store struct {
	db   *sql.DB
	path string
	fts  bool
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.shoebox/data/shoebox.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".shoebox", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "shoebox.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys (asset and embedding rows cascade on
	// document delete)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	// Probe for full-text capability. A build without the fts5 module
	// degrades to scanning all documents instead of failing open.
	s.fts = s.probeFullText()

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// FullTextAvailable reports whether the FTS5 index exists.
func (s *Store) FullTextAvailable() bool {
	return s.fts
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(
			"INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// probeFullText creates the FTS5 index if the module is available.
// The index is maintained explicitly by UpsertDocument/DeleteDocument
// rather than by triggers, so the sync invariant lives in one place.
func (s *Store) probeFullText() bool {
	_, err := s.db.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS documents_fts USING fts5(
			document_id UNINDEXED,
			title,
			raw_text,
			cleaned_text,
			location,
			label_text,
			tokenize='porter unicode61'
		)
	`)
	if err != nil {
		logger.Warn("Full-text index unavailable: %v", err)
		return false
	}
	return true
}

// ==================== Documents ====================

// UpsertDocument inserts or replaces a document, its assets, its
// full-text index row and optionally its embedding as one transaction.
func (s *Store) UpsertDocument(ctx context.Context, doc *domain.Document, emb *domain.Embedding) error {
	if doc == nil || doc.ID == "" {
		return domain.ErrInvalidInput
	}
	if doc.DocType == "" {
		doc.DocType = domain.DocTypeGeneric
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (id, title, doc_type, raw_text, cleaned_text, location, created_at, captured_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			doc_type = excluded.doc_type,
			raw_text = excluded.raw_text,
			cleaned_text = excluded.cleaned_text,
			location = excluded.location,
			captured_at = excluded.captured_at
	`, doc.ID, doc.Title, string(doc.DocType), doc.RawText,
		nullString(doc.CleanedText), nullString(doc.Location),
		timeToEpoch(doc.CreatedAt), nullEpoch(doc.CapturedAt))
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}

	// Assets are a full replace: previous rows go first.
	if _, err := tx.ExecContext(ctx, "DELETE FROM assets WHERE document_id = ?", doc.ID); err != nil {
		return fmt.Errorf("clearing assets: %w", err)
	}
	for i := range doc.Assets {
		asset := &doc.Assets[i]
		if asset.DocumentID == "" {
			asset.DocumentID = doc.ID
		}
		if asset.AddedAt.IsZero() {
			asset.AddedAt = time.Now().UTC()
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO assets (id, document_id, file_url, asset_type, page_number, added_at, thumbnail_url)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, asset.ID, asset.DocumentID, asset.FileURL, asset.AssetType,
			asset.PageNumber, timeToEpoch(asset.AddedAt), nullString(asset.ThumbnailURL))
		if err != nil {
			return fmt.Errorf("saving asset: %w", err)
		}
	}

	if err := s.updateIndexTx(ctx, tx, doc); err != nil {
		return err
	}

	if emb != nil {
		if emb.DocumentID == "" {
			emb.DocumentID = doc.ID
		}
		if err := upsertEmbeddingTx(ctx, tx, emb); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// DeleteDocument removes the document and everything joined to it.
// Embedding and asset rows go via foreign-key cascade; the index row
// is removed explicitly in the same transaction.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrInvalidInput
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if s.fts {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM documents_fts WHERE document_id = ?", id); err != nil {
			return fmt.Errorf("deleting index row: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by ID with its assets.
func (s *Store) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, doc_type, raw_text, cleaned_text, location, created_at, captured_at
		FROM documents WHERE id = ?
	`, id)

	doc, err := scanDocument(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	assets, err := s.assetsFor(ctx, id)
	if err != nil {
		return nil, err
	}
	doc.Assets = assets

	return doc, nil
}

// ListDocuments returns all documents ordered by creation time
// ascending, with assets hydrated.
func (s *Store) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, doc_type, raw_text, cleaned_text, location, created_at, captured_at
		FROM documents ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	if err := s.attachAssets(ctx, docs); err != nil {
		return nil, err
	}

	return docs, nil
}

// ==================== Embeddings ====================

// GetEmbedding returns the stored embedding for a document, or
// (nil, nil) when none exists.
func (s *Store) GetEmbedding(ctx context.Context, documentID string) (*domain.Embedding, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT document_id, vector, model_version, dimension, created_at
		FROM embeddings WHERE document_id = ?
	`, documentID)

	var emb domain.Embedding
	var blob []byte
	var createdAt float64
	if err := row.Scan(&emb.DocumentID, &blob, &emb.ModelVersion, &emb.Dimension, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Missing embedding is a degraded state, not an error
		}
		return nil, fmt.Errorf("scanning embedding: %w", err)
	}

	vec, err := vector.Decode(blob, emb.Dimension)
	if err != nil {
		return nil, fmt.Errorf("embedding for %s: %w", documentID, err)
	}
	emb.Vector = vec
	emb.CreatedAt = epochToTime(createdAt)

	return &emb, nil
}

// BatchUpsertEmbeddings applies all upserts in one transaction.
// On any failure none of them are committed.
func (s *Store) BatchUpsertEmbeddings(ctx context.Context, embs []domain.Embedding) error {
	if len(embs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for i := range embs {
		if err := upsertEmbeddingTx(ctx, tx, &embs[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// upsertEmbeddingTx validates and writes one embedding row.
func upsertEmbeddingTx(ctx context.Context, tx *sql.Tx, emb *domain.Embedding) error {
	if emb.DocumentID == "" {
		return domain.ErrInvalidInput
	}
	if emb.Dimension == 0 {
		emb.Dimension = len(emb.Vector)
	}
	if emb.Dimension != len(emb.Vector) {
		return fmt.Errorf("embedding for %s: %w: vector has %d values, dimension says %d",
			emb.DocumentID, domain.ErrDimensionMismatch, len(emb.Vector), emb.Dimension)
	}
	if emb.CreatedAt.IsZero() {
		emb.CreatedAt = time.Now().UTC()
	}

	blob := vector.Encode(emb.Vector)

	_, err := tx.ExecContext(ctx, `
		INSERT INTO embeddings (document_id, vector, model_version, dimension, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(document_id) DO UPDATE SET
			vector = excluded.vector,
			model_version = excluded.model_version,
			dimension = excluded.dimension,
			created_at = excluded.created_at
	`, emb.DocumentID, blob, emb.ModelVersion, emb.Dimension, timeToEpoch(emb.CreatedAt))
	if err != nil {
		return fmt.Errorf("saving embedding: %w", err)
	}
	return nil
}

// ==================== Full-text index ====================

// updateIndexTx replaces the document's full-text index row inside the
// caller's transaction. No-op when the index is unavailable.
func (s *Store) updateIndexTx(ctx context.Context, tx *sql.Tx, doc *domain.Document) error {
	if !s.fts {
		return nil
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM documents_fts WHERE document_id = ?", doc.ID); err != nil {
		return fmt.Errorf("clearing index row: %w", err)
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO documents_fts (document_id, title, raw_text, cleaned_text, location, label_text)
		VALUES (?, ?, ?, ?, ?, ?)
	`, doc.ID, doc.Title, doc.RawText, doc.CleanedText, doc.Location, doc.DocType.Label())
	if err != nil {
		return fmt.Errorf("saving index row: %w", err)
	}
	return nil
}

// FullTextQuery returns up to limit candidate document IDs ranked by
// lexical relevance. An unavailable index or a query with no usable
// tokens yields an empty result, never an error.
func (s *Store) FullTextQuery(ctx context.Context, query string, limit int) ([]string, error) {
	if !s.fts {
		return nil, nil
	}
	if limit <= 0 {
		limit = domain.DefaultPrefilterLimit
	}

	match := ftsMatchExpr(query)
	if match == "" {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT document_id FROM documents_fts
		WHERE documents_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, match, limit)
	if err != nil {
		return nil, fmt.Errorf("full-text query: %w", err)
	}
	defer rows.Close()

	var ids []string //nolint:prealloc // size unknown from query
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning candidate id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating candidates: %w", err)
	}

	return ids, nil
}

// ftsMatchExpr builds a safe FTS5 MATCH expression: each token is
// double-quoted so user input cannot inject FTS5 operators, and tokens
// are OR-ed because this is a candidate pre-filter, not the ranker.
func ftsMatchExpr(query string) string {
	tokens := strings.FieldsFunc(query, func(r rune) bool {
		return !isWordRune(r)
	})
	if len(tokens) == 0 {
		return ""
	}

	quoted := make([]string, len(tokens))
	for i, tok := range tokens {
		quoted[i] = `"` + strings.ReplaceAll(tok, `"`, `""`) + `"`
	}
	return strings.Join(quoted, " OR ")
}

func isWordRune(r rune) bool {
	return r == '_' ||
		('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') ||
		('0' <= r && r <= '9') || r > 127
}

// ==================== Helper Functions ====================

// timeToEpoch converts a time to epoch seconds with sub-second
// precision, the on-disk timestamp representation.
func timeToEpoch(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

// epochToTime converts epoch seconds back to a time.
func epochToTime(sec float64) time.Time {
	whole, frac := math.Modf(sec)
	return time.Unix(int64(whole), int64(frac*float64(time.Second))).UTC()
}

// nullString converts an empty string to NULL for optional columns.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// nullEpoch converts an optional time to epoch seconds or NULL.
func nullEpoch(t *time.Time) any {
	if t == nil {
		return nil
	}
	return timeToEpoch(*t)
}

// scanDocument scans a document row via the given scan function, which
// lets it serve both *sql.Row and *sql.Rows.
func scanDocument(scan func(dest ...any) error) (*domain.Document, error) {
	var doc domain.Document
	var docType string
	var cleanedText, location sql.NullString
	var createdAt float64
	var capturedAt sql.NullFloat64

	if err := scan(&doc.ID, &doc.Title, &docType, &doc.RawText,
		&cleanedText, &location, &createdAt, &capturedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	doc.DocType = domain.DocType(docType)
	doc.CleanedText = cleanedText.String
	doc.Location = location.String
	doc.CreatedAt = epochToTime(createdAt)
	if capturedAt.Valid {
		captured := epochToTime(capturedAt.Float64)
		doc.CapturedAt = &captured
	}

	return &doc, nil
}

// assetsFor loads the assets of a single document in page order.
func (s *Store) assetsFor(ctx context.Context, documentID string) ([]domain.Asset, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, file_url, asset_type, page_number, added_at, thumbnail_url
		FROM assets WHERE document_id = ?
		ORDER BY page_number ASC
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying assets: %w", err)
	}
	defer rows.Close()

	return scanAssets(rows)
}

// attachAssets hydrates assets for a list of documents in one query.
func (s *Store) attachAssets(ctx context.Context, docs []domain.Document) error {
	if len(docs) == 0 {
		return nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, file_url, asset_type, page_number, added_at, thumbnail_url
		FROM assets ORDER BY document_id, page_number ASC
	`)
	if err != nil {
		return fmt.Errorf("querying assets: %w", err)
	}
	defer rows.Close()

	assets, err := scanAssets(rows)
	if err != nil {
		return err
	}

	byDoc := make(map[string][]domain.Asset)
	for _, a := range assets {
		byDoc[a.DocumentID] = append(byDoc[a.DocumentID], a)
	}
	for i := range docs {
		docs[i].Assets = byDoc[docs[i].ID]
	}
	return nil
}

// scanAssets scans multiple asset rows.
func scanAssets(rows *sql.Rows) ([]domain.Asset, error) {
	var assets []domain.Asset //nolint:prealloc // size unknown from query
	for rows.Next() {
		var a domain.Asset
		var addedAt float64
		var thumbnail sql.NullString
		if err := rows.Scan(&a.ID, &a.DocumentID, &a.FileURL, &a.AssetType,
			&a.PageNumber, &addedAt, &thumbnail); err != nil {
			return nil, fmt.Errorf("scanning asset: %w", err)
		}
		a.AddedAt = epochToTime(addedAt)
		a.ThumbnailURL = thumbnail.String
		assets = append(assets, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating assets: %w", err)
	}

	return assets, nil
}
