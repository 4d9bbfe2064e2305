package cli

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoebox-labs/shoebox-cli/internal/core/domain"
)

func TestSearchCmd_Use(t *testing.T) {
	assert.Equal(t, "search [query]", searchCmd.Use)
}

func TestSearchCmd_HasLimitFlag(t *testing.T) {
	flag := searchCmd.Flags().Lookup("limit")
	require.NotNil(t, flag, "limit flag should exist")
	assert.Equal(t, "n", flag.Shorthand)
	assert.Equal(t, "10", flag.DefValue)
}

func TestSearchCmd_NoResults(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	out, err := execute(t, "search", "nothing matches this")
	require.NoError(t, err)
	assert.Contains(t, out, "No results found.")
}

func TestSearchCmd_ShowsScoreBreakdown(t *testing.T) {
	store, cleanup := setupTestServices(t)
	defer cleanup()

	doc := &domain.Document{
		ID:        "doc-1",
		Title:     "Grocery Receipt",
		DocType:   domain.DocTypeReceipt,
		RawText:   "milk eggs",
		Location:  "kitchen drawer",
		CreatedAt: time.Now(),
	}
	require.NoError(t, store.UpsertDocument(context.Background(), doc, nil))

	out, err := execute(t, "search", "milk")
	require.NoError(t, err)
	assert.Contains(t, out, "Grocery Receipt")
	assert.Contains(t, out, "Type: Receipt")
	assert.Contains(t, out, "Keyword:")
	assert.Contains(t, out, "Semantic:")
	assert.Contains(t, out, "Location: kitchen drawer")
}

func TestSearchCmd_EmptyQueryListsEverything(t *testing.T) {
	store, cleanup := setupTestServices(t)
	defer cleanup()

	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	for i, title := range []string{"first", "second"} {
		doc := &domain.Document{
			ID:        title,
			Title:     title,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, store.UpsertDocument(context.Background(), doc, nil))
	}

	out, err := execute(t, "search")
	require.NoError(t, err)
	assert.Contains(t, out, "first")
	assert.Contains(t, out, "second")
}

func TestSearchCmd_JSONOutput(t *testing.T) {
	store, cleanup := setupTestServices(t)
	defer cleanup()
	defer func() { searchJSON = false }()

	doc := &domain.Document{ID: "doc-1", Title: "note", RawText: "milk", CreatedAt: time.Now()}
	require.NoError(t, store.UpsertDocument(context.Background(), doc, nil))

	out, err := execute(t, "search", "--json", "milk")
	require.NoError(t, err)
	assert.Contains(t, out, `"FinalScore"`)
	assert.Contains(t, out, `"KeywordScore"`)
}

func TestSearchCmd_NotConfigured(t *testing.T) {
	// No services wired, but docStore etc. must stay nil after the
	// run, so stub out just enough to skip real wiring.
	_, cleanup := setupTestServices(t)
	searchService = nil
	defer cleanup()

	_, err := execute(t, "search", "anything")
	assert.Error(t, err)
}
