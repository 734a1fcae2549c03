package pipeline

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-matcher/internal/catalog"
	"github.com/jonathan/resume-matcher/internal/textnorm"
)

func newMatcher(t *testing.T, opts Options) *Matcher {
	t.Helper()

	skills := "skill\npython\nsql\ndocker\nmachine learning\n"
	synonyms := "skill,synonyms\npython,py\nmachine learning,ml\n"
	weights := "skill,weight\npython,2.0\nsql,1.5\n"
	cat, err := catalog.Load(
		strings.NewReader(skills),
		strings.NewReader(synonyms),
		strings.NewReader(weights),
	)
	require.NoError(t, err)

	norm, err := textnorm.New()
	require.NoError(t, err)

	return New(cat, norm, opts)
}

const jobDescription = "Looking for a backend engineer with Python, SQL and Docker experience."

func TestRelevantSkills_FromRequirementText(t *testing.T) {
	m := newMatcher(t, Options{})

	got := m.RelevantSkills(jobDescription)
	assert.Equal(t, []string{"docker", "python", "sql"}, got)
}

func TestRelevantSkills_SynonymDetection(t *testing.T) {
	m := newMatcher(t, Options{})

	got := m.RelevantSkills("Strong py and ml background required")
	assert.Contains(t, got, "python")
	assert.Contains(t, got, "machine learning")
}

func TestRun_RanksByWeightedCoverage(t *testing.T) {
	m := newMatcher(t, Options{})

	// Relevant: python 2.0, sql 1.5, docker 1.0 (total 4.5).
	// A matches python+docker: 3.0/4.5 = 66.67.
	// B matches sql+docker: 2.5/4.5 = 55.56.
	batch, err := m.Run(context.Background(), jobDescription, []Candidate{
		{Name: "b.txt", Text: "Administered SQL databases and Docker clusters"},
		{Name: "a.txt", Text: "Python services deployed with Docker"},
	})
	require.NoError(t, err)
	require.Len(t, batch.Results, 2)

	assert.Equal(t, "a.txt", batch.Results[0].Name)
	assert.Equal(t, 66.67, batch.Results[0].Coverage)
	assert.Equal(t, "b.txt", batch.Results[1].Name)
	assert.Equal(t, 55.56, batch.Results[1].Coverage)
}

func TestRun_TwoSkillScenario(t *testing.T) {
	skills := "skill\npython\nsql\n"
	weights := "skill,weight\npython,2.0\nsql,1.5\n"
	cat, err := catalog.Load(strings.NewReader(skills), nil, strings.NewReader(weights))
	require.NoError(t, err)
	norm, err := textnorm.New()
	require.NoError(t, err)
	m := New(cat, norm, Options{})

	batch, err := m.Run(context.Background(), "Looking for a Python and SQL engineer", []Candidate{
		{Name: "a.txt", Text: "I am skilled in Python and databases"},
		{Name: "b.txt", Text: "Expert in SQL only"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"python", "sql"}, batch.Relevant)
	require.Len(t, batch.Results, 2)

	// python carries 2.0 of the 3.5 total weight, sql 1.5.
	assert.Equal(t, "a.txt", batch.Results[0].Name)
	assert.Equal(t, []string{"python"}, batch.Results[0].Matched)
	assert.Equal(t, []string{"sql"}, batch.Results[0].Missing)
	assert.Equal(t, 57.14, batch.Results[0].Coverage)

	assert.Equal(t, "b.txt", batch.Results[1].Name)
	assert.Equal(t, []string{"sql"}, batch.Results[1].Matched)
	assert.Equal(t, []string{"python"}, batch.Results[1].Missing)
	assert.Equal(t, 42.86, batch.Results[1].Coverage)
}

func TestRun_MatchedAndMissingPartitionRelevant(t *testing.T) {
	m := newMatcher(t, Options{})

	batch, err := m.Run(context.Background(), jobDescription, []Candidate{
		{Name: "a.txt", Text: "Python and unrelated woodworking"},
	})
	require.NoError(t, err)

	res := batch.Results[0]
	union := append(append([]string(nil), res.Matched...), res.Missing...)
	assert.ElementsMatch(t, batch.Relevant, union)
	for _, s := range res.Matched {
		assert.NotContains(t, res.Missing, s)
	}
}

func TestRun_TieBreakPreservesSubmissionOrder(t *testing.T) {
	m := newMatcher(t, Options{MaxWorkers: 8})

	text := "Python and SQL and Docker everywhere"
	candidates := []Candidate{
		{Name: "first.txt", Text: text},
		{Name: "second.txt", Text: text},
		{Name: "third.txt", Text: text},
	}

	for range 5 {
		batch, err := m.Run(context.Background(), jobDescription, candidates)
		require.NoError(t, err)
		require.Len(t, batch.Results, 3)
		assert.Equal(t, "first.txt", batch.Results[0].Name)
		assert.Equal(t, "second.txt", batch.Results[1].Name)
		assert.Equal(t, "third.txt", batch.Results[2].Name)
	}
}

func TestRun_EmptyRequirementRejected(t *testing.T) {
	m := newMatcher(t, Options{})

	_, err := m.Run(context.Background(), "   ", []Candidate{{Name: "a.txt", Text: "python"}})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "job_description", verr.Field)
}

func TestRun_NoCandidatesRejected(t *testing.T) {
	m := newMatcher(t, Options{})

	_, err := m.Run(context.Background(), jobDescription, nil)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "resumes", verr.Field)
}

func TestRun_EmptyCandidateScoresZeroButStays(t *testing.T) {
	m := newMatcher(t, Options{})

	batch, err := m.Run(context.Background(), jobDescription, []Candidate{
		{Name: "good.txt", Text: "Python everywhere"},
		{Name: "empty.txt", Text: ""},
	})
	require.NoError(t, err)
	require.Len(t, batch.Results, 2)

	last := batch.Results[1]
	assert.Equal(t, "empty.txt", last.Name)
	assert.Empty(t, last.Matched)
	assert.ElementsMatch(t, batch.Relevant, last.Missing)
	assert.Equal(t, 0.0, last.Coverage)
	assert.Equal(t, 0.0, last.Similarity)
}

func TestRun_CancelledContextAborts(t *testing.T) {
	m := newMatcher(t, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Run(ctx, jobDescription, []Candidate{{Name: "a.txt", Text: "python"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_ProgressEvents(t *testing.T) {
	var mu sync.Mutex
	var events []ProgressEvent

	m := newMatcher(t, Options{
		OnProgress: func(e ProgressEvent) {
			mu.Lock()
			events = append(events, e)
			mu.Unlock()
		},
	})

	_, err := m.Run(context.Background(), jobDescription, []Candidate{
		{Name: "a.txt", Text: "python"},
		{Name: "b.txt", Text: "sql"},
	})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, events, 3)
	assert.Equal(t, "relevant_skills", events[0].Step)

	var scored []string
	for _, e := range events[1:] {
		assert.Equal(t, "candidate_scored", e.Step)
		scored = append(scored, e.Candidate)
	}
	assert.ElementsMatch(t, []string{"a.txt", "b.txt"}, scored)
}

func TestRun_SimilarityWithinBounds(t *testing.T) {
	m := newMatcher(t, Options{})

	batch, err := m.Run(context.Background(), jobDescription, []Candidate{
		{Name: "a.txt", Text: jobDescription},
		{Name: "b.txt", Text: "completely unrelated marketing copy"},
	})
	require.NoError(t, err)

	for _, res := range batch.Results {
		assert.GreaterOrEqual(t, res.Similarity, 0.0)
		assert.LessOrEqual(t, res.Similarity, 1.0)
	}
	assert.Equal(t, 1.0, batch.Results[0].Similarity)
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Field: "resumes", Message: "at least one candidate document is required"}
	assert.Contains(t, err.Error(), "resumes")
	assert.Contains(t, err.Error(), "at least one")
}
