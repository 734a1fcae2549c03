// Package textnorm converts raw document text into the canonical token
// form the matchers operate on: lowercase, alphabetic tokens only,
// stop-words removed, each token reduced to its dictionary lemma.
package textnorm

import (
	"bufio"
	"fmt"
	"strings"
	"unicode"

	_ "embed"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
)

//go:embed stopwords_en.txt
var stopwordsEN string

// Normalized is the canonical form of a document. Tokens holds the
// ordered lemma sequence; Joined is the same sequence space-joined for
// phrase and fuzzy matching.
type Normalized struct {
	Tokens []string
	Joined string
}

// Empty reports whether normalization produced no tokens.
func (n Normalized) Empty() bool { return len(n.Tokens) == 0 }

// Normalizer holds the stop-word set and the lemmatizer dictionary.
// Safe for concurrent use; it carries no per-call state.
type Normalizer struct {
	stopwords  map[string]struct{}
	lemmatizer *golem.Lemmatizer
}

// New builds an English normalizer. The only failure mode is the lemma
// dictionary failing to load.
func New() (*Normalizer, error) {
	lemmatizer, err := golem.New(en.New())
	if err != nil {
		return nil, fmt.Errorf("failed to load lemma dictionary: %w", err)
	}

	stopwords := make(map[string]struct{}, 192)
	scanner := bufio.NewScanner(strings.NewReader(stopwordsEN))
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word != "" {
			stopwords[word] = struct{}{}
		}
	}

	return &Normalizer{stopwords: stopwords, lemmatizer: lemmatizer}, nil
}

// Normalize lowercases the text, splits it into word tokens, keeps only
// purely alphabetic tokens, drops stop-words and lemmatizes the rest.
// Deterministic for a given input; empty input yields an empty result.
func (n *Normalizer) Normalize(text string) Normalized {
	if text == "" {
		return Normalized{}
	}

	raw := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make([]string, 0, len(raw))
	for _, tok := range raw {
		if !alphabetic(tok) {
			continue
		}
		if _, stop := n.stopwords[tok]; stop {
			continue
		}
		tokens = append(tokens, n.lemmatizer.Lemma(tok))
	}

	if len(tokens) == 0 {
		return Normalized{}
	}
	return Normalized{Tokens: tokens, Joined: strings.Join(tokens, " ")}
}

// alphabetic reports whether the token consists solely of letters.
// Tokens with digits ("abc123") are dropped entirely, not trimmed.
func alphabetic(tok string) bool {
	for _, r := range tok {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return tok != ""
}
