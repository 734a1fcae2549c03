// Package catalog loads and holds the immutable skill catalog: canonical
// skill names, synonym lists, numeric weights and precompiled phrase
// matchers. A catalog is built once at startup and never mutated; reload
// means building a new one and swapping the pointer at the call site.
package catalog

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// DefaultWeight is applied to any skill absent from the weight table.
const DefaultWeight = 1.0

// Entry describes one skill: its canonical lowercase name, the synonyms
// it can be detected under, and its scoring weight.
type Entry struct {
	Name     string
	Synonyms []string
	Weight   float64
}

// Variants returns the detectable surface forms: the canonical name
// followed by the synonyms.
func (e Entry) Variants() []string {
	out := make([]string, 0, len(e.Synonyms)+1)
	out = append(out, e.Name)
	out = append(out, e.Synonyms...)
	return out
}

// Catalog is the immutable skill universe. All lookup methods are safe
// for concurrent use because nothing is written after construction.
type Catalog struct {
	entries  map[string]Entry
	matchers map[string][]*regexp.Regexp
	names    []string
	warnings []string
}

// LoadError is the fatal catalog error: without a skill list the service
// cannot operate.
type LoadError struct {
	Source string
	Cause  error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("catalog load failed (%s): %v", e.Source, e.Cause)
	}
	return fmt.Sprintf("catalog load failed (%s)", e.Source)
}

func (e *LoadError) Unwrap() error { return e.Cause }

// build assembles a Catalog from already-parsed tables. Synonym and
// weight entries keyed by skills that are not in the skill list are
// ignored with a warning, matching the shared-key-space contract.
func build(skills []string, synonyms map[string][]string, weights map[string]float64, warnings []string) (*Catalog, error) {
	c := &Catalog{
		entries:  make(map[string]Entry, len(skills)),
		matchers: make(map[string][]*regexp.Regexp, len(skills)),
	}

	for _, raw := range skills {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		if _, dup := c.entries[name]; dup {
			continue
		}

		entry := Entry{Name: name, Weight: DefaultWeight}
		if w, ok := weights[name]; ok {
			entry.Weight = w
		}
		for _, syn := range synonyms[name] {
			syn = strings.ToLower(strings.TrimSpace(syn))
			if syn != "" && syn != name {
				entry.Synonyms = append(entry.Synonyms, syn)
			}
		}

		compiled := make([]*regexp.Regexp, 0, len(entry.Synonyms)+1)
		for _, variant := range entry.Variants() {
			re, err := compileVariant(variant)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("skill %q: cannot compile matcher for variant %q: %v", name, variant, err))
				continue
			}
			compiled = append(compiled, re)
		}

		c.entries[name] = entry
		c.matchers[name] = compiled
		c.names = append(c.names, name)
	}

	if len(c.entries) == 0 {
		return nil, &LoadError{Source: "skills", Cause: fmt.Errorf("skill list is empty")}
	}

	for skill := range synonyms {
		if _, ok := c.entries[skill]; !ok {
			warnings = append(warnings, fmt.Sprintf("synonym table references unknown skill %q", skill))
		}
	}
	for skill := range weights {
		if _, ok := c.entries[skill]; !ok {
			warnings = append(warnings, fmt.Sprintf("weight table references unknown skill %q", skill))
		}
	}

	sort.Strings(c.names)
	c.warnings = warnings
	return c, nil
}

// compileVariant builds a case-insensitive matcher that hits the variant
// only as a standalone token or phrase. The normalized text is a
// space-joined token sequence, so anchoring on start/end-of-text or
// whitespace is a full word-boundary check ("r" never matches inside
// "car"). Internal whitespace in multi-word variants is collapsed.
func compileVariant(variant string) (*regexp.Regexp, error) {
	words := strings.Fields(strings.ToLower(variant))
	if len(words) == 0 {
		return nil, fmt.Errorf("empty variant")
	}
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	pattern := `(?i)(?:^|\s)` + strings.Join(quoted, `\s+`) + `(?:\s|$)`
	return regexp.Compile(pattern)
}

// Len returns the number of skills in the catalog.
func (c *Catalog) Len() int { return len(c.entries) }

// Names returns all canonical skill names in sorted order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Has reports whether the canonical name is part of the catalog.
func (c *Catalog) Has(name string) bool {
	_, ok := c.entries[strings.ToLower(name)]
	return ok
}

// Entry returns the catalog entry for a canonical name.
func (c *Catalog) Entry(name string) (Entry, bool) {
	e, ok := c.entries[strings.ToLower(name)]
	return e, ok
}

// Weight returns the scoring weight for a skill, DefaultWeight when the
// skill carries none or is unknown.
func (c *Catalog) Weight(name string) float64 {
	if e, ok := c.entries[strings.ToLower(name)]; ok {
		return e.Weight
	}
	return DefaultWeight
}

// Variants returns the detectable surface forms for a skill.
func (c *Catalog) Variants(name string) []string {
	e, ok := c.entries[strings.ToLower(name)]
	if !ok {
		return nil
	}
	return e.Variants()
}

// Matchers returns the precompiled phrase matchers for a skill, one per
// variant.
func (c *Catalog) Matchers(name string) []*regexp.Regexp {
	return c.matchers[strings.ToLower(name)]
}

// Warnings returns the non-fatal issues collected during load: missing
// or unparsable synonym/weight data that fell back to defaults.
func (c *Catalog) Warnings() []string {
	out := make([]string, len(c.warnings))
	copy(out, c.warnings)
	return out
}
