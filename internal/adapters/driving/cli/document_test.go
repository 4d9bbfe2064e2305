package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoebox-labs/shoebox-cli/internal/core/domain"
)

func resetDocAddFlags() {
	docAddText = ""
	docAddTextFile = ""
	docAddType = ""
	docAddLocation = ""
}

func TestDocAddCmd_StoresAndEmbeds(t *testing.T) {
	store, cleanup := setupTestServices(t)
	defer cleanup()
	defer resetDocAddFlags()

	out, err := execute(t, "doc", "add", "Water Bill",
		"--text", "amount due 42.17",
		"--type", "billStatement",
		"--location", "file cabinet")
	require.NoError(t, err)
	assert.Contains(t, out, "Stored")
	assert.Contains(t, out, "Bill Statement")

	docs, err := store.ListDocuments(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Water Bill", docs[0].Title)
	assert.Equal(t, domain.DocTypeBillStatement, docs[0].DocType)
	assert.Equal(t, "file cabinet", docs[0].Location)
	assert.NotEmpty(t, docs[0].ID)

	emb, err := store.GetEmbedding(context.Background(), docs[0].ID)
	require.NoError(t, err)
	require.NotNil(t, emb, "ingest embeds when a strategy exists")
	assert.Equal(t, "test-model", emb.ModelVersion)
}

func TestDocAddCmd_TextFromFile(t *testing.T) {
	store, cleanup := setupTestServices(t)
	defer cleanup()
	defer resetDocAddFlags()

	path := filepath.Join(t.TempDir(), "scan.txt")
	require.NoError(t, os.WriteFile(path, []byte("dear sir or madam"), 0600))

	_, err := execute(t, "doc", "add", "Letter", "--text-file", path)
	require.NoError(t, err)

	docs, err := store.ListDocuments(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "dear sir or madam", docs[0].RawText)
}

func TestDocAddCmd_CleansOCRText(t *testing.T) {
	store, cleanup := setupTestServices(t)
	defer cleanup()
	defer resetDocAddFlags()

	_, err := execute(t, "doc", "add", "Policy", "--text", "your insur-\nance  policy")
	require.NoError(t, err)

	docs, err := store.ListDocuments(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "your insur-\nance  policy", docs[0].RawText, "raw text is kept verbatim")
	assert.Equal(t, "your insurance policy", docs[0].CleanedText)
}

func TestDocAddCmd_UnknownTypeRejected(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()
	defer resetDocAddFlags()

	_, err := execute(t, "doc", "add", "Mystery", "--type", "hologram")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDocAddCmd_EmbeddingFailureStillStores(t *testing.T) {
	store, cleanup := setupTestServices(t)
	defer cleanup()
	defer resetDocAddFlags()

	embedder.(*stubEmbedder).err = assert.AnError

	_, err := execute(t, "doc", "add", "Receipt", "--text", "coffee")
	require.NoError(t, err)

	docs, err := store.ListDocuments(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)

	emb, err := store.GetEmbedding(context.Background(), docs[0].ID)
	require.NoError(t, err)
	assert.Nil(t, emb, "document stored without vector")
}

func TestDocListCmd_Empty(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	out, err := execute(t, "doc", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No documents stored.")
}

func TestDocListCmd_ShowsDocuments(t *testing.T) {
	store, cleanup := setupTestServices(t)
	defer cleanup()

	doc := &domain.Document{ID: "doc-1", Title: "Receipt", DocType: domain.DocTypeReceipt, CreatedAt: time.Now()}
	require.NoError(t, store.UpsertDocument(context.Background(), doc, nil))

	out, err := execute(t, "doc", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "doc-1")
	assert.Contains(t, out, "Title: Receipt")
	assert.Contains(t, out, "Total: 1 documents")
}

func TestDocShowCmd_AllFields(t *testing.T) {
	store, cleanup := setupTestServices(t)
	defer cleanup()

	captured := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	doc := &domain.Document{
		ID:          "doc-1",
		Title:       "Aetna Card",
		DocType:     domain.DocTypeInsuranceCard,
		RawText:     "member id 123",
		Location:    "wallet",
		CreatedAt:   time.Now(),
		CapturedAt:  &captured,
		Assets:      []domain.Asset{{ID: "a1", DocumentID: "doc-1", FileURL: "file:///scan1.png", AssetType: "scan", PageNumber: 1}},
	}
	emb := &domain.Embedding{DocumentID: "doc-1", Vector: []float64{1, 0}, ModelVersion: "test-model", Dimension: 2}
	require.NoError(t, store.UpsertDocument(context.Background(), doc, emb))

	out, err := execute(t, "doc", "show", "doc-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Aetna Card")
	assert.Contains(t, out, "Insurance Card")
	assert.Contains(t, out, "wallet")
	assert.Contains(t, out, "Captured: 2026-01-15")
	assert.Contains(t, out, "file:///scan1.png")
	assert.Contains(t, out, "2 dimensions (test-model)")
	assert.Contains(t, out, "member id 123")
}

func TestDocShowCmd_NotFound(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	_, err := execute(t, "doc", "show", "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocRmCmd_Removes(t *testing.T) {
	store, cleanup := setupTestServices(t)
	defer cleanup()

	doc := &domain.Document{ID: "doc-1", Title: "old", CreatedAt: time.Now()}
	require.NoError(t, store.UpsertDocument(context.Background(), doc, nil))

	out, err := execute(t, "doc", "rm", "doc-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed doc-1")

	_, err = store.GetDocument(context.Background(), "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
