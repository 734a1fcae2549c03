package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-matcher/internal/catalog"
	"github.com/jonathan/resume-matcher/internal/config"
	"github.com/jonathan/resume-matcher/internal/extraction"
	"github.com/jonathan/resume-matcher/internal/observability"
	"github.com/jonathan/resume-matcher/internal/pipeline"
	"github.com/jonathan/resume-matcher/internal/report"
	"github.com/jonathan/resume-matcher/internal/store"
	"github.com/jonathan/resume-matcher/internal/textnorm"
)

var (
	matchJobFile    string
	matchCandidates string
	matchOutput     string
	matchJSON       bool
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Score candidate documents against a job description",
	Long:  "Runs a one-shot batch without the server: reads the job description from a text file, extracts text from every supported document in the candidates directory, and prints the ranked results.",
	RunE:  runMatch,
}

func init() {
	matchCmd.Flags().StringVarP(&matchJobFile, "job", "j", "", "Path to job description text file (required)")
	matchCmd.Flags().StringVarP(&matchCandidates, "candidates", "c", "", "Directory of candidate documents (required)")
	matchCmd.Flags().StringVarP(&matchOutput, "output", "o", "", "Write a CSV report to this path")
	matchCmd.Flags().BoolVar(&matchJSON, "json", false, "Print results as JSON instead of formatted output")
	_ = matchCmd.MarkFlagRequired("job")
	_ = matchCmd.MarkFlagRequired("candidates")
	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	cat, err := loadCatalog(cfg)
	if err != nil {
		return fmt.Errorf("failed to load skill catalog: %w", err)
	}
	for _, w := range cat.Warnings() {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}

	jobText, err := os.ReadFile(matchJobFile)
	if err != nil {
		return fmt.Errorf("failed to read job description: %w", err)
	}

	candidates, err := readCandidates(matchCandidates)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		return fmt.Errorf("no supported documents found in %s", matchCandidates)
	}

	norm, err := textnorm.New()
	if err != nil {
		return fmt.Errorf("failed to create normalizer: %w", err)
	}

	matcher := pipeline.New(cat, norm, pipeline.Options{
		RequirementThreshold: cfg.RequirementThreshold,
		CandidateThreshold:   cfg.CandidateThreshold,
		MaxWorkers:           cfg.MaxWorkers,
	})

	batch, err := matcher.Run(cmd.Context(), string(jobText), candidates)
	if err != nil {
		return fmt.Errorf("batch failed: %w", err)
	}

	if matchJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(batch); err != nil {
			return fmt.Errorf("failed to encode results: %w", err)
		}
	} else {
		printer := observability.NewPrinter(os.Stdout)
		printer.PrintRelevantSkills(batch.Relevant)
		printer.PrintBatch(batch)
	}

	if matchOutput != "" {
		if err := writeReport(matchOutput, string(jobText), batch); err != nil {
			return err
		}
		fmt.Printf("Report written to %s\n", matchOutput)
	}
	return nil
}

// readCandidates collects every supported document in dir, in sorted
// filename order so ties in the ranked output are deterministic.
func readCandidates(dir string) ([]pipeline.Candidate, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read candidates directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !extraction.Supported(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	candidates := make([]pipeline.Candidate, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		candidates = append(candidates, pipeline.Candidate{
			Name: name,
			Text: extraction.Text(name, data),
		})
	}
	return candidates, nil
}

func writeReport(path, requirement string, batch *pipeline.Batch) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	session := &store.Session{
		ID:          batch.ID,
		CreatedAt:   time.Now(),
		Requirement: strings.TrimSpace(requirement),
		Relevant:    batch.Relevant,
		Results:     batch.Results,
	}
	if err := report.WriteCSV(f, session); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// loadCatalog mirrors the server's source selection: an explicit JSON
// catalog wins over the CSV directory.
func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.CatalogJSON != "" {
		return catalog.LoadJSONFile(cfg.CatalogJSON)
	}
	return catalog.LoadDir(cfg.CatalogDir)
}
