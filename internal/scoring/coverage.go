// Package scoring computes the weighted coverage score: the fraction of
// required skill weight a candidate actually matched, scaled to 0-100.
package scoring

import "math"

// WeightFunc resolves the weight of a canonical skill name. Skills
// without an explicit weight must resolve to 1.0.
type WeightFunc func(skill string) float64

// Coverage returns round(earned/total*100, 2) where total sums the
// weights of all required skills and earned sums the weights of the
// required skills that were matched. Matched skills outside the
// required set contribute nothing. An empty required set scores 0.0.
func Coverage(required, matched []string, weight WeightFunc) float64 {
	if len(required) == 0 {
		return 0.0
	}

	matchedSet := make(map[string]struct{}, len(matched))
	for _, s := range matched {
		matchedSet[s] = struct{}{}
	}

	var total, earned float64
	for _, skill := range required {
		w := weight(skill)
		total += w
		if _, ok := matchedSet[skill]; ok {
			earned += w
		}
	}

	if total == 0 {
		return 0.0
	}
	return Round2(earned / total * 100)
}

// Round2 rounds to 2 decimal places (coverage scores).
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round3 rounds to 3 decimal places (similarity scores).
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
