package lexicon

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLexicon(t *testing.T) *Embedder {
	t.Helper()

	emb, err := New(map[string][]float64{
		"insurance": {1, 0},
		"card":      {0, 1},
		"receipt":   {-1, 0},
	}, 2, "lexicon-test")
	require.NoError(t, err)
	return emb
}

func TestNew_RejectsMismatchedVectors(t *testing.T) {
	_, err := New(map[string][]float64{"word": {1, 2, 3}}, 2, "")
	assert.Error(t, err)

	_, err = New(nil, 0, "")
	assert.Error(t, err)
}

func TestEmbed_AveragesResolvedTokens(t *testing.T) {
	emb := testLexicon(t)

	vec, err := emb.Embed(context.Background(), "Insurance card")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.5}, vec)
}

func TestEmbed_SkipsUnknownTokens(t *testing.T) {
	emb := testLexicon(t)

	// "blue" does not resolve; only "insurance" contributes.
	vec, err := emb.Embed(context.Background(), "blue insurance")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0}, vec)
}

func TestEmbed_NoResolvedTokensIsZeroVector(t *testing.T) {
	emb := testLexicon(t)

	vec, err := emb.Embed(context.Background(), "zanzibar unmapped words")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, vec)
}

func TestEmbed_Deterministic(t *testing.T) {
	emb := testLexicon(t)
	ctx := context.Background()

	first, err := emb.Embed(ctx, "insurance card receipt")
	require.NoError(t, err)
	second, err := emb.Embed(ctx, "insurance card receipt")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestTokenize(t *testing.T) {
	tokens := Tokenize("Blue-Cross PPO, policy #123456!")
	assert.Equal(t, []string{"blue", "cross", "ppo", "policy", "123456"}, tokens)

	assert.Empty(t, Tokenize("  ...  "))
	assert.Empty(t, Tokenize(""))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.txt")
	content := "Insurance 1.0 0.0\ncard 0.0 1.0\n\nreceipt -1.0 0.0\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	emb, err := LoadFile(path, 2, "lexicon-file")
	require.NoError(t, err)
	assert.Equal(t, 2, emb.Dimensions())
	assert.Equal(t, "lexicon-file", emb.ModelVersion())

	// Words are lower-cased on load.
	vec, err := emb.Embed(context.Background(), "INSURANCE")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0}, vec)
}

func TestLoadFile_MalformedLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.txt")
	require.NoError(t, os.WriteFile(path, []byte("word 1.0\n"), 0600))

	_, err := LoadFile(path, 2, "")
	assert.Error(t, err)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.txt"), 2, "")
	assert.Error(t, err)
}
