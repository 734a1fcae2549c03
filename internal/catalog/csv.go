package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// File names expected by LoadDir. Only SkillsFile is mandatory.
const (
	SkillsFile   = "skills.csv"
	SynonymsFile = "synonyms.csv"
	WeightsFile  = "weights.csv"
)

// Load builds a catalog from the three CSV tables. The skill list is
// mandatory; synonyms and weights may be nil and degrade to defaults
// with a warning.
func Load(skills, synonyms, weights io.Reader) (*Catalog, error) {
	if skills == nil {
		return nil, &LoadError{Source: "skills", Cause: fmt.Errorf("skill list reader is nil")}
	}

	var warnings []string

	skillList, err := readSkillColumn(skills)
	if err != nil {
		return nil, &LoadError{Source: "skills", Cause: err}
	}

	synMap := map[string][]string{}
	if synonyms == nil {
		warnings = append(warnings, "synonym table missing, skills get no synonyms")
	} else {
		var synWarnings []string
		synMap, synWarnings, err = readSynonyms(synonyms)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("synonym table unreadable (%v), skills get no synonyms", err))
			synMap = map[string][]string{}
		}
		warnings = append(warnings, synWarnings...)
	}

	weightMap := map[string]float64{}
	if weights == nil {
		warnings = append(warnings, "weight table missing, all skills weighted 1.0")
	} else {
		var wWarnings []string
		weightMap, wWarnings, err = readWeights(weights)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("weight table unreadable (%v), all skills weighted 1.0", err))
			weightMap = map[string]float64{}
		}
		warnings = append(warnings, wWarnings...)
	}

	return build(skillList, synMap, weightMap, warnings)
}

// LoadDir loads the catalog from a directory containing skills.csv and,
// optionally, synonyms.csv and weights.csv.
func LoadDir(dir string) (*Catalog, error) {
	skillsF, err := os.Open(filepath.Join(dir, SkillsFile))
	if err != nil {
		return nil, &LoadError{Source: SkillsFile, Cause: err}
	}
	defer func() { _ = skillsF.Close() }()

	var synonyms, weights io.Reader
	if f, err := os.Open(filepath.Join(dir, SynonymsFile)); err == nil {
		defer func() { _ = f.Close() }()
		synonyms = f
	}
	if f, err := os.Open(filepath.Join(dir, WeightsFile)); err == nil {
		defer func() { _ = f.Close() }()
		weights = f
	}

	return Load(skillsF, synonyms, weights)
}

// readSkillColumn reads the "skill" column of a headed CSV.
func readSkillColumn(r io.Reader) ([]string, error) {
	rows, idx, err := readTable(r, "skill")
	if err != nil {
		return nil, err
	}
	skills := make([]string, 0, len(rows))
	for _, row := range rows {
		skills = append(skills, row[idx["skill"]])
	}
	return skills, nil
}

// readSynonyms reads skill,synonyms rows; the synonyms column is a
// semicolon-separated list.
func readSynonyms(r io.Reader) (map[string][]string, []string, error) {
	rows, idx, err := readTable(r, "skill", "synonyms")
	if err != nil {
		return nil, nil, err
	}
	out := make(map[string][]string, len(rows))
	var warnings []string
	for _, row := range rows {
		skill := strings.ToLower(strings.TrimSpace(row[idx["skill"]]))
		if skill == "" {
			continue
		}
		raw := strings.TrimSpace(row[idx["synonyms"]])
		if raw == "" {
			out[skill] = nil
			continue
		}
		for _, syn := range strings.Split(raw, ";") {
			syn = strings.ToLower(strings.TrimSpace(syn))
			if syn != "" {
				out[skill] = append(out[skill], syn)
			}
		}
	}
	return out, warnings, nil
}

// readWeights reads skill,weight rows. Unparsable weights fall back to
// the default with a warning rather than failing the load.
func readWeights(r io.Reader) (map[string]float64, []string, error) {
	rows, idx, err := readTable(r, "skill", "weight")
	if err != nil {
		return nil, nil, err
	}
	out := make(map[string]float64, len(rows))
	var warnings []string
	for _, row := range rows {
		skill := strings.ToLower(strings.TrimSpace(row[idx["skill"]]))
		if skill == "" {
			continue
		}
		w, err := strconv.ParseFloat(strings.TrimSpace(row[idx["weight"]]), 64)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("skill %q: unparsable weight %q, using default", skill, row[idx["weight"]]))
			continue
		}
		out[skill] = w
	}
	return out, warnings, nil
}

// readTable reads a headed CSV and returns its rows plus a column index
// for the required columns.
func readTable(r io.Reader, columns ...string) ([][]string, map[string]int, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil, fmt.Errorf("table is empty")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}

	idx := make(map[string]int, len(columns))
	for i, col := range header {
		idx[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, col := range columns {
		if _, ok := idx[col]; !ok {
			return nil, nil, fmt.Errorf("missing column %q", col)
		}
	}

	var rows [][]string
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read row: %w", err)
		}
		if len(row) < len(header) {
			continue
		}
		rows = append(rows, row)
	}
	return rows, idx, nil
}
