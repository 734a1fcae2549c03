package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	n, err := New()
	require.NoError(t, err)
	return n
}

func TestNormalize_LowercasesAndSplits(t *testing.T) {
	n := newNormalizer(t)

	got := n.Normalize("Python, SQL/Postgres!")
	assert.Equal(t, []string{"python", "sql", "postgres"}, got.Tokens)
	assert.Equal(t, "python sql postgres", got.Joined)
}

func TestNormalize_RemovesStopwords(t *testing.T) {
	n := newNormalizer(t)

	got := n.Normalize("experience with the python and some sql")
	assert.NotContains(t, got.Tokens, "with")
	assert.NotContains(t, got.Tokens, "the")
	assert.NotContains(t, got.Tokens, "and")
	assert.NotContains(t, got.Tokens, "some")
	assert.Contains(t, got.Tokens, "python")
	assert.Contains(t, got.Tokens, "sql")
}

func TestNormalize_DropsTokensWithDigits(t *testing.T) {
	n := newNormalizer(t)

	got := n.Normalize("python3 sql 2024 kubernetes")
	assert.Equal(t, []string{"sql", "kubernetes"}, got.Tokens)
}

func TestNormalize_Lemmatizes(t *testing.T) {
	n := newNormalizer(t)

	got := n.Normalize("databases pipelines testing")
	assert.Contains(t, got.Tokens, "database")
	assert.Contains(t, got.Tokens, "pipeline")
}

func TestNormalize_EmptyInput(t *testing.T) {
	n := newNormalizer(t)

	assert.True(t, n.Normalize("").Empty())
	assert.True(t, n.Normalize("   \t\n ").Empty())
	assert.True(t, n.Normalize("... 123 !!!").Empty())
}

func TestNormalize_Deterministic(t *testing.T) {
	n := newNormalizer(t)

	text := "Senior engineer building data pipelines in Python and SQL."
	first := n.Normalize(text)
	second := n.Normalize(text)
	assert.Equal(t, first, second)
}
