package countvec

import (
	"fmt"
	"sort"

	roaring "github.com/RoaringBitmap/roaring"
)

// FitOptions controls vocabulary construction.
type FitOptions struct {
	// Analyzer used for both fitting and inference. Defaults to the word
	// analyzer.
	Analyzer Analyzer
	// Binary clips inference counts to presence.
	Binary bool
	// MaxFeatures caps the vocabulary, keeping the most frequent terms.
	// Zero means unbounded.
	MaxFeatures int
	// MinDocFreq drops terms appearing in fewer documents. Zero or one
	// keeps everything.
	MinDocFreq int
	// MaxDocFraction drops terms appearing in more than this fraction of
	// documents. Zero disables the cap.
	MaxDocFraction float64
}

// Fit builds a count-vectorizer vocabulary over the corpus and returns the
// fitted transformer. Vocabulary indices are assigned in lexical term order
// so fitting is deterministic.
func Fit(docs []string, opts FitOptions) (*Transformer, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("countvec: cannot fit on an empty corpus")
	}
	analyzer := opts.Analyzer
	if analyzer == nil {
		analyzer = NewWordAnalyzer()
	}
	if opts.MaxDocFraction < 0 || opts.MaxDocFraction > 1 {
		return nil, fmt.Errorf("countvec: max document fraction %v outside [0, 1]", opts.MaxDocFraction)
	}

	// Provisional ids let document-frequency tracking run on bitmaps
	// instead of per-document string sets.
	ids := make(map[string]uint32)
	terms := make([]string, 0, 1024)
	corpusFreq := make([]uint64, 0, 1024)
	docFreq := make([]int, 0, 1024)

	for _, doc := range docs {
		seen := roaring.New()
		for _, term := range analyzer.Tokens(doc) {
			id, ok := ids[term]
			if !ok {
				id = uint32(len(terms))
				ids[term] = id
				terms = append(terms, term)
				corpusFreq = append(corpusFreq, 0)
				docFreq = append(docFreq, 0)
			}
			corpusFreq[id]++
			seen.Add(id)
		}
		it := seen.Iterator()
		for it.HasNext() {
			docFreq[it.Next()]++
		}
	}

	maxDocs := len(docs)
	candidates := make([]uint32, 0, len(terms))
	for id := range terms {
		df := docFreq[id]
		if opts.MinDocFreq > 1 && df < opts.MinDocFreq {
			continue
		}
		if opts.MaxDocFraction > 0 && float64(df) > opts.MaxDocFraction*float64(maxDocs) {
			continue
		}
		candidates = append(candidates, uint32(id))
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("countvec: document-frequency bounds removed every term")
	}

	if opts.MaxFeatures > 0 && len(candidates) > opts.MaxFeatures {
		sort.Slice(candidates, func(i, j int) bool {
			fi, fj := corpusFreq[candidates[i]], corpusFreq[candidates[j]]
			if fi != fj {
				return fi > fj
			}
			return terms[candidates[i]] < terms[candidates[j]]
		})
		candidates = candidates[:opts.MaxFeatures]
	}

	selected := make([]string, len(candidates))
	for i, id := range candidates {
		selected[i] = terms[id]
	}
	sort.Strings(selected)

	vocab := make(map[string]uint32, len(selected))
	for i, term := range selected {
		vocab[term] = uint32(i)
	}
	return &Transformer{
		vocab:       vocab,
		numFeatures: uint64(len(selected)),
		binary:      opts.Binary,
		analyzer:    analyzer,
	}, nil
}
