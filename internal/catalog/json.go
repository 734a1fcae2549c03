package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	_ "embed"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed catalog.schema.json
var catalogSchema string

// jsonCatalog is the document shape accepted by LoadJSON.
type jsonCatalog struct {
	Skills []struct {
		Name     string   `json:"name"`
		Synonyms []string `json:"synonyms,omitempty"`
		Weight   *float64 `json:"weight,omitempty"`
	} `json:"skills"`
}

// LoadJSON builds a catalog from a single JSON document. The document is
// validated against the embedded schema before parsing; schema violations
// are fatal because a JSON catalog is a single authored artifact, unlike
// the CSV tables where partial data degrades row by row.
func LoadJSON(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &LoadError{Source: "json", Cause: err}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(catalogSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, &LoadError{Source: "json", Cause: fmt.Errorf("schema validation: %w", err)}
	}
	if !result.Valid() {
		var msg string
		for _, desc := range result.Errors() {
			if msg != "" {
				msg += "; "
			}
			msg += desc.String()
		}
		return nil, &LoadError{Source: "json", Cause: fmt.Errorf("invalid catalog document: %s", msg)}
	}

	var doc jsonCatalog
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &LoadError{Source: "json", Cause: err}
	}

	skills := make([]string, 0, len(doc.Skills))
	synonyms := make(map[string][]string, len(doc.Skills))
	weights := make(map[string]float64, len(doc.Skills))
	for _, s := range doc.Skills {
		// build keys the synonym and weight tables by the lowercased name.
		name := strings.ToLower(strings.TrimSpace(s.Name))
		skills = append(skills, name)
		if len(s.Synonyms) > 0 {
			synonyms[name] = s.Synonyms
		}
		if s.Weight != nil {
			weights[name] = *s.Weight
		}
	}

	return build(skills, synonyms, weights, nil)
}

// LoadJSONFile is LoadJSON over a file path.
func LoadJSONFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Source: path, Cause: err}
	}
	defer func() { _ = f.Close() }()
	return LoadJSON(f)
}
