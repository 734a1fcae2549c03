// Package similarity scores the lexical overlap of two raw documents
// with a term-frequency-inverse-document-frequency cosine. The corpus
// is exactly the two inputs, so IDF terms are computed fresh per call;
// nothing is learned or persisted across calls.
package similarity

import (
	"math"
	"strings"
	"unicode"
)

// Cosine returns the cosine of the angle between the TF-IDF vectors of
// the two documents, in [0,1]. It operates on raw (non-normalized)
// text and returns 0.0 when either document is empty or the two share
// no vocabulary.
func Cosine(a, b string) float64 {
	ta := tokenize(a)
	tb := tokenize(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0.0
	}

	ca := counts(ta)
	cb := counts(tb)

	// Smoothed IDF over the two-document corpus:
	// idf(t) = ln((1+n)/(1+df)) + 1 with n = 2.
	idf := func(term string) float64 {
		df := 0
		if ca[term] > 0 {
			df++
		}
		if cb[term] > 0 {
			df++
		}
		return math.Log(3.0/(1.0+float64(df))) + 1.0
	}

	var dot, na, nb float64
	for term, n := range ca {
		w := float64(n) * idf(term)
		na += w * w
		if m, ok := cb[term]; ok {
			dot += w * float64(m) * idf(term)
		}
	}
	for term, m := range cb {
		w := float64(m) * idf(term)
		nb += w * w
	}

	den := math.Sqrt(na) * math.Sqrt(nb)
	if den == 0 {
		return 0.0
	}

	sim := dot / den
	// Clamp accumulated float error so callers can rely on [0,1].
	if sim < 0 {
		return 0.0
	}
	if sim > 1 {
		return 1.0
	}
	return sim
}

// tokenize lowercases and splits on any rune that is not a letter or
// digit. Raw text keeps numerals here, unlike the matcher-side
// normalizer: "python3" and "python3" should still overlap.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func counts(tokens []string) map[string]int {
	out := make(map[string]int, len(tokens))
	for _, t := range tokens {
		out[t]++
	}
	return out
}
