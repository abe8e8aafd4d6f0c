package featurizer

import (
	"fmt"
	"math"

	roaring "github.com/RoaringBitmap/roaring"
)

// Value constrains the element types sparse encodings carry. Count-style
// transformers emit uint32, weighted ones float32/float64.
type Value interface {
	~uint32 | ~float32 | ~float64
}

// ValueEncoding is one non-zero slot of a sparse vector.
type ValueEncoding[T Value] struct {
	Value T
	Index uint64
}

// SparseVectorEncoding represents a vector by its non-zero (index, value)
// pairs plus the declared dense length. Values are ordered by ascending
// index and every index is below NumElements.
type SparseVectorEncoding[T Value] struct {
	NumElements uint64
	Values      []ValueEncoding[T]
}

// Validate checks the encoding invariants: indices ascending, unique and
// within the declared dense length. Uniqueness is checked on the occupied
// index bitmap.
func (e SparseVectorEncoding[T]) Validate() error {
	var prev uint64
	for i, v := range e.Values {
		if v.Index >= e.NumElements {
			return fmt.Errorf("featurizer: sparse index %d out of range, NumElements=%d", v.Index, e.NumElements)
		}
		if i > 0 && v.Index < prev {
			return fmt.Errorf("featurizer: sparse indices not ascending at %d", v.Index)
		}
		prev = v.Index
	}
	bm, err := e.IndexBitmap()
	if err != nil {
		// Indices beyond 32 bits cannot go through the bitmap; order is
		// already known, so a duplicate must be adjacent.
		for i := 1; i < len(e.Values); i++ {
			if e.Values[i].Index == e.Values[i-1].Index {
				return fmt.Errorf("featurizer: duplicate sparse index %d", e.Values[i].Index)
			}
		}
		return nil
	}
	if bm.GetCardinality() != uint64(len(e.Values)) {
		return fmt.Errorf("featurizer: duplicate sparse index in encoding")
	}
	return nil
}

// IndexBitmap returns the set of occupied indices as a roaring bitmap.
// Indices must fit in 32 bits, which holds for every vocabulary this
// family produces.
func (e SparseVectorEncoding[T]) IndexBitmap() (*roaring.Bitmap, error) {
	bm := roaring.New()
	for _, v := range e.Values {
		if v.Index > math.MaxUint32 {
			return nil, fmt.Errorf("featurizer: sparse index %d exceeds 32-bit bitmap range", v.Index)
		}
		bm.Add(uint32(v.Index))
	}
	return bm, nil
}

// Callback consumes one sparse result during Execute or Flush. The execution
// protocol is callback-based so featurizers that buffer across calls can
// emit several results at flush time.
type Callback[T Value] func(SparseVectorEncoding[T]) error

// Transformer is the inference-side contract every featurizer in the family
// shares. An instance belongs to a single invocation: Execute once per
// input, then Flush exactly once to drain anything buffered. Flush must be
// called even for transformers known to buffer nothing.
type Transformer[T Value] interface {
	Execute(input string, cb Callback[T]) error
	Flush(cb Callback[T]) error
}
