// Package report renders a completed matching session as a downloadable
// document. It consumes already-computed results read-only and performs
// no scoring of its own.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jonathan/resume-matcher/internal/store"
)

// csvHeader is the column layout of the exported report.
var csvHeader = []string{"rank", "filename", "coverage_score", "similarity_score", "matched_skills", "missing_skills", "error"}

// WriteCSV renders the session's ranked results as CSV. The relevant
// skill set the batch was scored against is written as a leading
// comment row so the report is self-describing.
func WriteCSV(w io.Writer, s *store.Session) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"# relevant skills", strings.Join(s.Relevant, "; ")}); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}

	for i, res := range s.Results {
		row := []string{
			strconv.Itoa(i + 1),
			res.Name,
			strconv.FormatFloat(res.Coverage, 'f', 2, 64),
			strconv.FormatFloat(res.Similarity, 'f', 3, 64),
			strings.Join(res.Matched, "; "),
			strings.Join(res.Missing, "; "),
			res.Err,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write report row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Filename returns the download name for a session's report.
func Filename(s *store.Session) string {
	return fmt.Sprintf("match-report-%s.csv", s.ID)
}
