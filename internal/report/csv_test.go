package report

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-matcher/internal/pipeline"
	"github.com/jonathan/resume-matcher/internal/store"
)

func TestWriteCSV_RankedRows(t *testing.T) {
	session := &store.Session{
		ID:        uuid.New(),
		CreatedAt: time.Now(),
		Relevant:  []string{"python", "sql"},
		Results: []pipeline.Result{
			{Name: "a.txt", Matched: []string{"python", "sql"}, Coverage: 100.0, Similarity: 0.731},
			{Name: "b.txt", Matched: []string{"sql"}, Missing: []string{"python"}, Coverage: 42.86, Similarity: 0.25},
			{Name: "broken.pdf", Missing: []string{"python", "sql"}, Err: "candidate processing failed: bad page"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, session))

	cr := csv.NewReader(&buf)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5)

	assert.Equal(t, []string{"# relevant skills", "python; sql"}, rows[0])
	assert.Equal(t, []string{"rank", "filename", "coverage_score", "similarity_score", "matched_skills", "missing_skills", "error"}, rows[1])
	assert.Equal(t, []string{"1", "a.txt", "100.00", "0.731", "python; sql", "", ""}, rows[2])
	assert.Equal(t, []string{"2", "b.txt", "42.86", "0.250", "sql", "python", ""}, rows[3])
	assert.Equal(t, []string{"3", "broken.pdf", "0.00", "0.000", "", "python; sql", "candidate processing failed: bad page"}, rows[4])
}

func TestWriteCSV_EmptyResults(t *testing.T) {
	session := &store.Session{ID: uuid.New(), Relevant: []string{"python"}}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, session))

	cr := csv.NewReader(&buf)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestFilename_CarriesSessionID(t *testing.T) {
	id := uuid.New()
	session := &store.Session{ID: id}
	assert.Equal(t, "match-report-"+id.String()+".csv", Filename(session))
}
