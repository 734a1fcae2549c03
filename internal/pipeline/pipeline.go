// Package pipeline orchestrates a matching batch: one requirement text
// scored against N candidate documents concurrently, producing a ranked
// result list with per-candidate failure isolation.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-matcher/internal/catalog"
	"github.com/jonathan/resume-matcher/internal/match"
	"github.com/jonathan/resume-matcher/internal/scoring"
	"github.com/jonathan/resume-matcher/internal/similarity"
	"github.com/jonathan/resume-matcher/internal/textnorm"
)

// Defaults for the tunable thresholds. The requirement side is stricter
// than the candidate side on purpose: a false positive when deciding
// which skills are relevant only raises the bar every candidate must
// meet, while the candidate side is tuned to be lenient about whether a
// relevant skill is present.
const (
	DefaultRequirementThreshold = 85
	DefaultCandidateThreshold   = 80
	DefaultMaxWorkers           = 4
)

// ValidationError rejects a request before the pipeline runs: empty
// requirement text or zero candidate documents.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s: %s", e.Field, e.Message)
}

// ProgressEvent reports pipeline progress to an optional callback.
type ProgressEvent struct {
	Step      string `json:"step"`
	Candidate string `json:"candidate,omitempty"`
	Message   string `json:"message"`
}

// ProgressCallback is invoked as the batch advances. Callbacks may be
// called from worker goroutines and must be safe for concurrent use.
type ProgressCallback func(event ProgressEvent)

// Candidate is one document to score: an identifier (usually the
// uploaded filename) and its already-extracted raw text. Extraction
// failures upstream are represented as empty text, never as errors.
type Candidate struct {
	Name string
	Text string
}

// Result is the scored outcome for one candidate. Matched and Missing
// partition the batch's relevant skill set; both are sorted ascending.
// A non-empty Err marks a candidate whose processing faulted; it stays
// in the batch with zeroed scores so every submitted document is
// accounted for.
type Result struct {
	Name       string   `json:"filename"`
	Matched    []string `json:"matched_skills"`
	Missing    []string `json:"missing_skills"`
	Coverage   float64  `json:"coverage_score"`
	Similarity float64  `json:"similarity_score"`
	Err        string   `json:"error,omitempty"`
}

// Batch is a completed, ranked run: results sorted by coverage score
// descending, ties broken by original submission order.
type Batch struct {
	ID       uuid.UUID `json:"batch_id"`
	Relevant []string  `json:"relevant_skills"`
	Results  []Result  `json:"results"`
}

// Options tunes a Matcher. Zero values fall back to the defaults.
type Options struct {
	RequirementThreshold int
	CandidateThreshold   int
	MaxWorkers           int
	OnProgress           ProgressCallback
}

// Matcher drives the scoring pipeline. The catalog and normalizer are
// shared read-only across all workers; a Matcher is safe for concurrent
// Run calls.
type Matcher struct {
	catalog       *catalog.Catalog
	norm          *textnorm.Normalizer
	reqThreshold  int
	candThreshold int
	maxWorkers    int
	onProgress    ProgressCallback
}

// New creates a Matcher over an immutable catalog.
func New(cat *catalog.Catalog, norm *textnorm.Normalizer, opts Options) *Matcher {
	m := &Matcher{
		catalog:       cat,
		norm:          norm,
		reqThreshold:  opts.RequirementThreshold,
		candThreshold: opts.CandidateThreshold,
		maxWorkers:    opts.MaxWorkers,
		onProgress:    opts.OnProgress,
	}
	if m.reqThreshold == 0 {
		m.reqThreshold = DefaultRequirementThreshold
	}
	if m.candThreshold == 0 {
		m.candThreshold = DefaultCandidateThreshold
	}
	if m.maxWorkers <= 0 {
		m.maxWorkers = DefaultMaxWorkers
	}
	return m
}

// RelevantSkills normalizes the requirement text once and detects which
// catalog skills it mentions, combining exact phrase hits with fuzzy
// hits at the stricter requirement-side threshold.
func (m *Matcher) RelevantSkills(requirement string) []string {
	normalized := m.norm.Normalize(requirement)
	pool := m.catalog.Names()
	return match.Union(
		match.Phrase(normalized, pool, m.catalog),
		match.Fuzzy(normalized, pool, m.catalog, m.reqThreshold),
	)
}

// Run executes one batch. The requirement-side relevant skill set is
// computed synchronously before fan-out and shared read-only by all
// workers. One worker per candidate runs over a pool bounded by
// MaxWorkers; a fault in one candidate never aborts the batch. Result
// order depends only on scores, never on completion order.
func (m *Matcher) Run(ctx context.Context, requirement string, candidates []Candidate) (*Batch, error) {
	if strings.TrimSpace(requirement) == "" {
		return nil, &ValidationError{Field: "job_description", Message: "must not be empty"}
	}
	if len(candidates) == 0 {
		return nil, &ValidationError{Field: "resumes", Message: "at least one candidate document is required"}
	}

	relevant := m.RelevantSkills(requirement)
	m.emit(ProgressEvent{
		Step:    "relevant_skills",
		Message: fmt.Sprintf("detected %d relevant skills", len(relevant)),
	})

	results := make([]Result, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.maxWorkers)
	for i, cand := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = m.scoreCandidate(requirement, relevant, cand)
			m.emit(ProgressEvent{
				Step:      "candidate_scored",
				Candidate: cand.Name,
				Message:   fmt.Sprintf("coverage %.2f", results[i].Coverage),
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// Only caller cancellation reaches here; per-candidate faults
		// are already captured inside the results.
		return nil, fmt.Errorf("batch aborted: %w", err)
	}

	// Stable sort keeps equal coverage scores in submission order, the
	// documented tie-break.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Coverage > results[j].Coverage
	})

	return &Batch{ID: uuid.New(), Relevant: relevant, Results: results}, nil
}

// scoreCandidate processes a single candidate. Panics are recovered
// into a flagged zero-score result so one bad document cannot unwind
// the batch.
func (m *Matcher) scoreCandidate(requirement string, relevant []string, cand Candidate) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{
				Name:    cand.Name,
				Missing: append([]string(nil), relevant...),
				Err:     fmt.Sprintf("candidate processing failed: %v", r),
			}
		}
	}()

	normalized := m.norm.Normalize(cand.Text)
	matched := match.Union(
		match.Phrase(normalized, relevant, m.catalog),
		match.Fuzzy(normalized, relevant, m.catalog, m.candThreshold),
	)
	missing := match.Difference(relevant, matched)

	return Result{
		Name:       cand.Name,
		Matched:    matched,
		Missing:    missing,
		Coverage:   scoring.Coverage(relevant, matched, m.catalog.Weight),
		Similarity: scoring.Round3(similarity.Cosine(requirement, cand.Text)),
	}
}

func (m *Matcher) emit(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}
