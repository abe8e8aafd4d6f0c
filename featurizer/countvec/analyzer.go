// Package countvec implements the count-vectorizer featurizer: a fitted
// vocabulary over which input text is tokenized and counted into a sparse
// uint32 vector. The estimator half builds and serializes the vocabulary;
// the transformer half is the stateless-at-inference piece operator kernels
// load from an archive.
package countvec

import (
	"fmt"
	"strings"
	"unicode"
)

// Analyzer splits raw input into the terms counted against the vocabulary.
type Analyzer interface {
	// Name identifies the analyzer in serialized state.
	Name() string
	// Tokens returns the terms of one input string.
	Tokens(text string) []string
}

// WordAnalyzer lowercases and splits on any non-letter, non-digit rune.
type WordAnalyzer struct {
	Lowercase bool
}

// NewWordAnalyzer returns the default lowercasing word analyzer.
func NewWordAnalyzer() *WordAnalyzer { return &WordAnalyzer{Lowercase: true} }

func (a *WordAnalyzer) Name() string { return "word" }

func (a *WordAnalyzer) Tokens(text string) []string {
	if a.Lowercase {
		text = strings.ToLower(text)
	}
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// CharNgramAnalyzer emits all character n-grams with MinN <= n <= MaxN over
// the lowercased input, whitespace collapsed to single spaces.
type CharNgramAnalyzer struct {
	MinN int
	MaxN int
}

// NewCharNgramAnalyzer returns a character n-gram analyzer for the range
// [minN, maxN].
func NewCharNgramAnalyzer(minN, maxN int) (*CharNgramAnalyzer, error) {
	if minN < 1 || maxN < minN {
		return nil, fmt.Errorf("countvec: invalid n-gram range [%d, %d]", minN, maxN)
	}
	return &CharNgramAnalyzer{MinN: minN, MaxN: maxN}, nil
}

func (a *CharNgramAnalyzer) Name() string { return "char" }

func (a *CharNgramAnalyzer) Tokens(text string) []string {
	text = strings.Join(strings.Fields(strings.ToLower(text)), " ")
	runes := []rune(text)
	var grams []string
	for n := a.MinN; n <= a.MaxN; n++ {
		for i := 0; i+n <= len(runes); i++ {
			grams = append(grams, string(runes[i:i+n]))
		}
	}
	return grams
}
