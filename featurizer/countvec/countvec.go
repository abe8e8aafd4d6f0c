package countvec

import (
	"fmt"
	"sort"

	"featops/featurizer"
)

// archiveVersion tags the serialized state layout.
const archiveVersion = 1

// Transformer is the inference side of the count vectorizer. It is
// constructed from serialized state, owned by a single invocation and
// stateless across Execute calls.
type Transformer struct {
	vocab       map[string]uint32
	numFeatures uint64
	binary      bool
	analyzer    Analyzer
}

// Option adjusts transformer construction.
type Option func(*Transformer)

// WithAnalyzer overrides the analyzer reconstructed from state. Required
// when the state was fitted with an analyzer that carries external
// resources (e.g. a wordpiece vocabulary file).
func WithAnalyzer(a Analyzer) Option {
	return func(t *Transformer) { t.analyzer = a }
}

// Load reconstructs a transformer from serialized state. The buffer layout
// is owned by this package; callers hand in the opaque blob via Archive.
func Load(a *featurizer.Archive, opts ...Option) (*Transformer, error) {
	version, err := a.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("countvec: read state version: %w", err)
	}
	if version != archiveVersion {
		return nil, fmt.Errorf("countvec: unsupported state version %d", version)
	}
	binaryFlag, err := a.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("countvec: read binary flag: %w", err)
	}
	analyzerName, err := a.ReadString()
	if err != nil {
		return nil, fmt.Errorf("countvec: read analyzer name: %w", err)
	}
	minN, err := a.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("countvec: read ngram min: %w", err)
	}
	maxN, err := a.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("countvec: read ngram max: %w", err)
	}
	numFeatures, err := a.ReadUint64()
	if err != nil {
		return nil, fmt.Errorf("countvec: read feature count: %w", err)
	}
	vocabLen, err := a.ReadUint64()
	if err != nil {
		return nil, fmt.Errorf("countvec: read vocabulary length: %w", err)
	}
	vocab := make(map[string]uint32, vocabLen)
	for i := uint64(0); i < vocabLen; i++ {
		term, err := a.ReadString()
		if err != nil {
			return nil, fmt.Errorf("countvec: read vocabulary term %d: %w", i, err)
		}
		idx, err := a.ReadUint32()
		if err != nil {
			return nil, fmt.Errorf("countvec: read vocabulary index %d: %w", i, err)
		}
		if uint64(idx) >= numFeatures {
			return nil, fmt.Errorf("countvec: vocabulary index %d out of range, NumElements=%d", idx, numFeatures)
		}
		if _, dup := vocab[term]; dup {
			return nil, fmt.Errorf("countvec: duplicate vocabulary term %q", term)
		}
		vocab[term] = idx
	}

	t := &Transformer{
		vocab:       vocab,
		numFeatures: numFeatures,
		binary:      binaryFlag != 0,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.analyzer == nil {
		switch analyzerName {
		case "word", "":
			t.analyzer = NewWordAnalyzer()
		case "char":
			ca, err := NewCharNgramAnalyzer(int(minN), int(maxN))
			if err != nil {
				return nil, err
			}
			t.analyzer = ca
		default:
			return nil, fmt.Errorf("countvec: state fitted with analyzer %q, supply it via WithAnalyzer", analyzerName)
		}
	}
	return t, nil
}

// Save serializes the transformer state into the archive.
func (t *Transformer) Save(a *featurizer.Archive) {
	a.WriteUint8(archiveVersion)
	if t.binary {
		a.WriteUint8(1)
	} else {
		a.WriteUint8(0)
	}
	a.WriteString(t.analyzer.Name())
	minN, maxN := uint8(0), uint8(0)
	if ca, ok := t.analyzer.(*CharNgramAnalyzer); ok {
		minN, maxN = uint8(ca.MinN), uint8(ca.MaxN)
	}
	a.WriteUint8(minN)
	a.WriteUint8(maxN)
	a.WriteUint64(t.numFeatures)
	a.WriteUint64(uint64(len(t.vocab)))
	terms := make([]string, 0, len(t.vocab))
	for term := range t.vocab {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	for _, term := range terms {
		a.WriteString(term)
		a.WriteUint32(t.vocab[term])
	}
}

// NumFeatures returns the dense output length this transformer declares.
func (t *Transformer) NumFeatures() uint64 { return t.numFeatures }

// Binary reports whether counts are clipped to presence (0/1).
func (t *Transformer) Binary() bool { return t.binary }

// Vocabulary returns the fitted term -> index mapping.
func (t *Transformer) Vocabulary() map[string]uint32 { return t.vocab }

// Execute tokenizes one input, counts vocabulary hits and delivers a single
// sparse encoding to cb. Terms outside the vocabulary are ignored.
func (t *Transformer) Execute(input string, cb featurizer.Callback[uint32]) error {
	counts := make(map[uint32]uint32)
	for _, term := range t.analyzer.Tokens(input) {
		idx, ok := t.vocab[term]
		if !ok {
			continue
		}
		if t.binary {
			counts[idx] = 1
		} else {
			counts[idx]++
		}
	}
	indices := make([]uint64, 0, len(counts))
	for idx := range counts {
		indices = append(indices, uint64(idx))
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })
	enc := featurizer.SparseVectorEncoding[uint32]{
		NumElements: t.numFeatures,
		Values:      make([]featurizer.ValueEncoding[uint32], 0, len(indices)),
	}
	for _, idx := range indices {
		enc.Values = append(enc.Values, featurizer.ValueEncoding[uint32]{
			Index: idx,
			Value: counts[uint32(idx)],
		})
	}
	return cb(enc)
}

// Flush completes the invocation. The count vectorizer buffers nothing
// across Execute calls, so no result is emitted; the call exists to satisfy
// the family contract.
func (t *Transformer) Flush(cb featurizer.Callback[uint32]) error {
	return nil
}
