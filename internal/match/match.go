// Package match detects catalog skills inside normalized text using two
// strategies: exact boundary-respecting phrase matching and approximate
// matching with a fuzzywuzzy partial ratio.
package match

import (
	"sort"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/jonathan/resume-matcher/internal/catalog"
	"github.com/jonathan/resume-matcher/internal/textnorm"
)

// Phrase returns the skills from pool whose canonical name or any
// synonym occurs in the text as a standalone token or phrase. The
// matchers are precompiled on the catalog; matching is deterministic
// and threshold-free. Result is sorted.
func Phrase(text textnorm.Normalized, pool []string, cat *catalog.Catalog) []string {
	if text.Empty() || len(pool) == 0 {
		return nil
	}

	found := make(map[string]struct{})
	for _, skill := range pool {
		for _, re := range cat.Matchers(skill) {
			if re.MatchString(text.Joined) {
				found[skill] = struct{}{}
				break
			}
		}
	}
	return sortedSet(found)
}

// Fuzzy returns the skills from pool with at least one variant scoring
// threshold or higher against the text under a partial ratio: the best
// alignment of the variant as a (possibly imperfect) substring of the
// longer text, scored 0-100. Raising the threshold never grows the
// result. The whole-text partial-ratio scheme is used rather than
// per-token best-match so that multi-word variants are compared as a
// unit. Result is sorted.
func Fuzzy(text textnorm.Normalized, pool []string, cat *catalog.Catalog, threshold int) []string {
	if text.Empty() || len(pool) == 0 {
		return nil
	}
	if threshold < 0 {
		threshold = 0
	}
	if threshold > 100 {
		threshold = 100
	}

	found := make(map[string]struct{})
	for _, skill := range pool {
		for _, variant := range cat.Variants(skill) {
			if fuzzy.PartialRatio(variant, text.Joined) >= threshold {
				found[skill] = struct{}{}
				break
			}
		}
	}
	return sortedSet(found)
}

// Union merges detected skill sets into one sorted, deduplicated slice.
func Union(sets ...[]string) []string {
	merged := make(map[string]struct{})
	for _, set := range sets {
		for _, s := range set {
			merged[s] = struct{}{}
		}
	}
	return sortedSet(merged)
}

// Difference returns the members of a not present in b, sorted.
func Difference(a, b []string) []string {
	exclude := make(map[string]struct{}, len(b))
	for _, s := range b {
		exclude[s] = struct{}{}
	}
	out := make(map[string]struct{})
	for _, s := range a {
		if _, ok := exclude[s]; !ok {
			out[s] = struct{}{}
		}
	}
	return sortedSet(out)
}

func sortedSet(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
