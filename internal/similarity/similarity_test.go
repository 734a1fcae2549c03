package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosine_IdenticalDocuments(t *testing.T) {
	text := "senior python engineer building data pipelines"
	assert.InDelta(t, 1.0, Cosine(text, text), 1e-9)
}

func TestCosine_DisjointVocabulary(t *testing.T) {
	assert.Equal(t, 0.0, Cosine("python sql postgres", "marketing sales outreach"))
}

func TestCosine_EmptyInput(t *testing.T) {
	assert.Equal(t, 0.0, Cosine("", "python developer"))
	assert.Equal(t, 0.0, Cosine("python developer", ""))
	assert.Equal(t, 0.0, Cosine("", ""))
	assert.Equal(t, 0.0, Cosine("!!! ...", "python"))
}

func TestCosine_PartialOverlapBetweenBounds(t *testing.T) {
	sim := Cosine("python sql developer", "python marketing analyst")
	assert.Greater(t, sim, 0.0)
	assert.Less(t, sim, 1.0)
}

func TestCosine_MoreOverlapScoresHigher(t *testing.T) {
	job := "python sql data engineer"
	near := Cosine(job, "python sql data scientist")
	far := Cosine(job, "python marketing writer editor")
	assert.Greater(t, near, far)
}

func TestCosine_CaseAndPunctuationInsensitive(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine("Python, SQL!", "python sql"), 1e-9)
}

func TestCosine_Symmetric(t *testing.T) {
	a := "python sql developer"
	b := "sql analyst reporting"
	assert.InDelta(t, Cosine(a, b), Cosine(b, a), 1e-12)
}
