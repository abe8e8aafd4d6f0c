// Package tfidf implements the tf-idf vectorizer featurizer, the weighted
// sibling of countvec: term counts are scaled by fitted inverse document
// frequencies and optionally normalized, emitting a sparse float32 vector.
package tfidf

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"featops/featurizer"
	"featops/featurizer/countvec"
)

const archiveVersion = 1

// Norm selects the vector normalization applied after tf-idf weighting.
type Norm string

const (
	NormNone Norm = "none"
	NormL1   Norm = "l1"
	NormL2   Norm = "l2"
)

func (n Norm) valid() bool {
	switch n {
	case NormNone, NormL1, NormL2:
		return true
	}
	return false
}

// Transformer is the inference side of the tf-idf vectorizer. Like its
// count sibling it is single-invocation and stateless across Execute calls.
type Transformer struct {
	vocab       map[string]uint32
	idf         []float64
	numFeatures uint64
	norm        Norm
	analyzer    countvec.Analyzer
}

// Option adjusts transformer construction.
type Option func(*Transformer)

// WithAnalyzer overrides the analyzer reconstructed from state.
func WithAnalyzer(a countvec.Analyzer) Option {
	return func(t *Transformer) { t.analyzer = a }
}

// Load reconstructs a transformer from serialized state.
func Load(a *featurizer.Archive, opts ...Option) (*Transformer, error) {
	version, err := a.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("tfidf: read state version: %w", err)
	}
	if version != archiveVersion {
		return nil, fmt.Errorf("tfidf: unsupported state version %d", version)
	}
	analyzerName, err := a.ReadString()
	if err != nil {
		return nil, fmt.Errorf("tfidf: read analyzer name: %w", err)
	}
	minN, err := a.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("tfidf: read ngram min: %w", err)
	}
	maxN, err := a.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("tfidf: read ngram max: %w", err)
	}
	normName, err := a.ReadString()
	if err != nil {
		return nil, fmt.Errorf("tfidf: read norm: %w", err)
	}
	norm := Norm(normName)
	if !norm.valid() {
		return nil, fmt.Errorf("tfidf: unknown norm %q in state", normName)
	}
	numFeatures, err := a.ReadUint64()
	if err != nil {
		return nil, fmt.Errorf("tfidf: read feature count: %w", err)
	}
	vocabLen, err := a.ReadUint64()
	if err != nil {
		return nil, fmt.Errorf("tfidf: read vocabulary length: %w", err)
	}
	vocab := make(map[string]uint32, vocabLen)
	idf := make([]float64, numFeatures)
	for i := uint64(0); i < vocabLen; i++ {
		term, err := a.ReadString()
		if err != nil {
			return nil, fmt.Errorf("tfidf: read vocabulary term %d: %w", i, err)
		}
		idx, err := a.ReadUint32()
		if err != nil {
			return nil, fmt.Errorf("tfidf: read vocabulary index %d: %w", i, err)
		}
		weight, err := a.ReadFloat64()
		if err != nil {
			return nil, fmt.Errorf("tfidf: read idf weight %d: %w", i, err)
		}
		if uint64(idx) >= numFeatures {
			return nil, fmt.Errorf("tfidf: vocabulary index %d out of range, NumElements=%d", idx, numFeatures)
		}
		if _, dup := vocab[term]; dup {
			return nil, fmt.Errorf("tfidf: duplicate vocabulary term %q", term)
		}
		vocab[term] = idx
		idf[idx] = weight
	}

	t := &Transformer{
		vocab:       vocab,
		idf:         idf,
		numFeatures: numFeatures,
		norm:        norm,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.analyzer == nil {
		switch analyzerName {
		case "word", "":
			t.analyzer = countvec.NewWordAnalyzer()
		case "char":
			ca, err := countvec.NewCharNgramAnalyzer(int(minN), int(maxN))
			if err != nil {
				return nil, err
			}
			t.analyzer = ca
		default:
			return nil, fmt.Errorf("tfidf: state fitted with analyzer %q, supply it via WithAnalyzer", analyzerName)
		}
	}
	return t, nil
}

// Save serializes the transformer state into the archive.
func (t *Transformer) Save(a *featurizer.Archive) {
	a.WriteUint8(archiveVersion)
	a.WriteString(t.analyzer.Name())
	minN, maxN := uint8(0), uint8(0)
	if ca, ok := t.analyzer.(*countvec.CharNgramAnalyzer); ok {
		minN, maxN = uint8(ca.MinN), uint8(ca.MaxN)
	}
	a.WriteUint8(minN)
	a.WriteUint8(maxN)
	a.WriteString(string(t.norm))
	a.WriteUint64(t.numFeatures)
	a.WriteUint64(uint64(len(t.vocab)))
	terms := make([]string, 0, len(t.vocab))
	for term := range t.vocab {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	for _, term := range terms {
		idx := t.vocab[term]
		a.WriteString(term)
		a.WriteUint32(idx)
		a.WriteFloat64(t.idf[idx])
	}
}

// NumFeatures returns the dense output length this transformer declares.
func (t *Transformer) NumFeatures() uint64 { return t.numFeatures }

// Vocabulary returns the fitted term -> index mapping.
func (t *Transformer) Vocabulary() map[string]uint32 { return t.vocab }

// Execute tokenizes one input, weights vocabulary hits by idf, applies the
// configured norm and delivers a single sparse float32 encoding to cb.
func (t *Transformer) Execute(input string, cb featurizer.Callback[float32]) error {
	counts := make(map[uint32]float64)
	for _, term := range t.analyzer.Tokens(input) {
		if idx, ok := t.vocab[term]; ok {
			counts[idx]++
		}
	}
	indices := make([]uint64, 0, len(counts))
	for idx := range counts {
		indices = append(indices, uint64(idx))
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })

	weights := make([]float64, len(indices))
	for i, idx := range indices {
		weights[i] = counts[uint32(idx)] * t.idf[idx]
	}
	switch t.norm {
	case NormL1:
		if n := floats.Norm(weights, 1); n > 0 {
			floats.Scale(1/n, weights)
		}
	case NormL2:
		if n := floats.Norm(weights, 2); n > 0 {
			floats.Scale(1/n, weights)
		}
	}

	enc := featurizer.SparseVectorEncoding[float32]{
		NumElements: t.numFeatures,
		Values:      make([]featurizer.ValueEncoding[float32], 0, len(indices)),
	}
	for i, idx := range indices {
		enc.Values = append(enc.Values, featurizer.ValueEncoding[float32]{
			Index: idx,
			Value: float32(weights[i]),
		})
	}
	return cb(enc)
}

// Flush completes the invocation without emitting; nothing buffers across
// Execute calls.
func (t *Transformer) Flush(cb featurizer.Callback[float32]) error {
	return nil
}

// FitOptions controls tf-idf fitting. The embedded count options fit the
// vocabulary; Norm selects output normalization.
type FitOptions struct {
	countvec.FitOptions
	Norm Norm
}

// Fit builds the vocabulary with the count estimator, then computes
// smoothed inverse document frequencies over the same corpus:
// idf(t) = ln((1+n)/(1+df(t))) + 1.
func Fit(docs []string, opts FitOptions) (*Transformer, error) {
	norm := opts.Norm
	if norm == "" {
		norm = NormL2
	}
	if !norm.valid() {
		return nil, fmt.Errorf("tfidf: unknown norm %q", norm)
	}
	counter, err := countvec.Fit(docs, opts.FitOptions)
	if err != nil {
		return nil, err
	}
	analyzer := opts.Analyzer
	if analyzer == nil {
		analyzer = countvec.NewWordAnalyzer()
	}
	vocab := counter.Vocabulary()
	numFeatures := counter.NumFeatures()

	docFreq := make([]int, numFeatures)
	for _, doc := range docs {
		seen := make(map[uint32]struct{})
		for _, term := range analyzer.Tokens(doc) {
			if idx, ok := vocab[term]; ok {
				seen[idx] = struct{}{}
			}
		}
		for idx := range seen {
			docFreq[idx]++
		}
	}
	idf := make([]float64, numFeatures)
	n := float64(len(docs))
	for i, df := range docFreq {
		idf[i] = math.Log((1+n)/(1+float64(df))) + 1
	}
	return &Transformer{
		vocab:       vocab,
		idf:         idf,
		numFeatures: numFeatures,
		norm:        norm,
		analyzer:    analyzer,
	}, nil
}
