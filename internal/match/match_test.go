package match

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-matcher/internal/catalog"
	"github.com/jonathan/resume-matcher/internal/textnorm"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	skills := "skill\npython\nsql\nr\nmachine learning\n"
	synonyms := "skill,synonyms\npython,py\nmachine learning,ml\n"
	cat, err := catalog.Load(strings.NewReader(skills), strings.NewReader(synonyms), nil)
	require.NoError(t, err)
	return cat
}

func normalized(tokens ...string) textnorm.Normalized {
	return textnorm.Normalized{Tokens: tokens, Joined: strings.Join(tokens, " ")}
}

func TestPhrase_DetectsCanonicalAndSynonym(t *testing.T) {
	cat := testCatalog(t)

	text := normalized("build", "py", "service", "sql", "database")
	got := Phrase(text, cat.Names(), cat)
	assert.Equal(t, []string{"python", "sql"}, got)
}

func TestPhrase_MultiWordSkill(t *testing.T) {
	cat := testCatalog(t)

	got := Phrase(normalized("applied", "machine", "learning", "model"), cat.Names(), cat)
	assert.Equal(t, []string{"machine learning"}, got)

	got = Phrase(normalized("machine", "operator", "learning", "fast"), cat.Names(), cat)
	assert.NotContains(t, got, "machine learning")
}

func TestPhrase_SingleLetterBoundary(t *testing.T) {
	cat := testCatalog(t)

	assert.Contains(t, Phrase(normalized("statistic", "r", "python"), cat.Names(), cat), "r")
	assert.NotContains(t, Phrase(normalized("char", "array"), cat.Names(), cat), "r")
}

func TestPhrase_RestrictedPool(t *testing.T) {
	cat := testCatalog(t)

	text := normalized("python", "sql")
	got := Phrase(text, []string{"sql"}, cat)
	assert.Equal(t, []string{"sql"}, got)
}

func TestPhrase_EmptyInputs(t *testing.T) {
	cat := testCatalog(t)

	assert.Nil(t, Phrase(textnorm.Normalized{}, cat.Names(), cat))
	assert.Nil(t, Phrase(normalized("python"), nil, cat))
}

func TestFuzzy_CatchesNearMiss(t *testing.T) {
	cat := testCatalog(t)

	// "pythn" is one edit away from "python"; exact phrase matching
	// misses it, the partial ratio does not.
	text := normalized("expert", "pythn", "developer")
	assert.NotContains(t, Phrase(text, cat.Names(), cat), "python")
	assert.Contains(t, Fuzzy(text, cat.Names(), cat, 80), "python")
}

func TestFuzzy_ThresholdMonotonic(t *testing.T) {
	cat := testCatalog(t)
	text := normalized("pythn", "develop", "databse", "sql")

	loose := Fuzzy(text, cat.Names(), cat, 60)
	strict := Fuzzy(text, cat.Names(), cat, 95)
	for _, s := range strict {
		assert.Contains(t, loose, s, "raising the threshold must never add skills")
	}
}

func TestFuzzy_ThresholdClamped(t *testing.T) {
	cat := testCatalog(t)
	text := normalized("python")

	assert.Equal(t, Fuzzy(text, cat.Names(), cat, 0), Fuzzy(text, cat.Names(), cat, -10))
	assert.Equal(t, Fuzzy(text, cat.Names(), cat, 100), Fuzzy(text, cat.Names(), cat, 250))
}

func TestUnion_SortedAndDeduplicated(t *testing.T) {
	got := Union([]string{"sql", "python"}, []string{"python", "go"})
	assert.Equal(t, []string{"go", "python", "sql"}, got)
	assert.Nil(t, Union(nil, nil))
}

func TestDifference(t *testing.T) {
	got := Difference([]string{"python", "sql", "go"}, []string{"sql"})
	assert.Equal(t, []string{"go", "python"}, got)
	assert.Nil(t, Difference([]string{"sql"}, []string{"sql"}))
}
