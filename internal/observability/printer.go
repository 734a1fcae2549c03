package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-matcher/internal/pipeline"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 8
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintRelevantSkills outputs the skill set the batch will be scored against.
func (p *Printer) PrintRelevantSkills(skills []string) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Relevant skills: %d\n", len(skills)))
	sb.WriteString("\n")
	shown := skills
	if len(shown) > maxItemsToShow {
		shown = shown[:maxItemsToShow]
	}
	for _, s := range shown {
		sb.WriteString(fmt.Sprintf("  - %s\n", s))
	}
	if len(skills) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(skills)-maxItemsToShow))
	}
	p.printBox("RELEVANT SKILLS", sb.String())
}

// PrintBatch outputs a human-readable summary of a ranked batch.
func (p *Printer) PrintBatch(batch *pipeline.Batch) {
	if batch == nil {
		return
	}

	var sb strings.Builder
	for i, res := range batch.Results {
		if res.Err != "" {
			sb.WriteString(fmt.Sprintf("%2d. %s  FAILED: %s\n", i+1, res.Name, res.Err))
			continue
		}
		sb.WriteString(fmt.Sprintf("%2d. %s  coverage=%.2f similarity=%.3f\n", i+1, res.Name, res.Coverage, res.Similarity))
		sb.WriteString(fmt.Sprintf("    matched: %s\n", joinOrDash(res.Matched)))
		sb.WriteString(fmt.Sprintf("    missing: %s\n", joinOrDash(res.Missing)))
	}
	p.printBox(fmt.Sprintf("RANKED RESULTS (%d)", len(batch.Results)), sb.String())
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
