package tensor

import (
	"fmt"
	"math"
)

// ElementType identifies the element type carried by a Tensor.
type ElementType int

const (
	Undefined ElementType = iota
	Uint8
	Uint32
	Int64
	Float32
	Float64
	String
)

func (t ElementType) String() string {
	switch t {
	case Uint8:
		return "uint8"
	case Uint32:
		return "uint32"
	case Int64:
		return "int64"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case String:
		return "string"
	default:
		return "undefined"
	}
}

// Shape is the dimension list of a dense tensor. Scalars use an empty shape.
type Shape []int64

// NewShape builds a shape from dimensions.
func NewShape(dims ...int64) Shape { return Shape(dims) }

// Size returns the total element count, or an error when a dimension is
// negative or the product overflows int64.
func (s Shape) Size() (int64, error) {
	size := int64(1)
	for _, d := range s {
		if d < 0 {
			return 0, fmt.Errorf("tensor: negative dimension %d in shape %v", d, s)
		}
		if d != 0 && size > math.MaxInt64/d {
			return 0, fmt.Errorf("tensor: shape %v overflows int64 element count", s)
		}
		size *= d
	}
	return size, nil
}

// Tensor is a dense, host-memory tensor. The backing slice is the buffer;
// there is no separate allocator. A Tensor is owned by a single kernel
// invocation and must not be shared across invocations.
type Tensor struct {
	dtype ElementType
	shape Shape

	uint8s   []uint8
	uint32s  []uint32
	int64s   []int64
	float32s []float32
	float64s []float64
	strings  []string
}

// DType returns the element type.
func (t *Tensor) DType() ElementType { return t.dtype }

// Shape returns the tensor shape.
func (t *Tensor) Shape() Shape { return t.shape }

// NumElements returns the total element count.
func (t *Tensor) NumElements() int64 {
	n, _ := t.shape.Size()
	return n
}

func checkLen(shape Shape, n int) error {
	size, err := shape.Size()
	if err != nil {
		return err
	}
	if size != int64(n) {
		return fmt.Errorf("tensor: shape %v wants %d elements, data has %d", shape, size, n)
	}
	return nil
}

// NewUint8 wraps data as a uint8 tensor with the given shape.
func NewUint8(shape Shape, data []uint8) (*Tensor, error) {
	if err := checkLen(shape, len(data)); err != nil {
		return nil, err
	}
	return &Tensor{dtype: Uint8, shape: shape, uint8s: data}, nil
}

// NewUint32 wraps data as a uint32 tensor with the given shape.
func NewUint32(shape Shape, data []uint32) (*Tensor, error) {
	if err := checkLen(shape, len(data)); err != nil {
		return nil, err
	}
	return &Tensor{dtype: Uint32, shape: shape, uint32s: data}, nil
}

// NewInt64 wraps data as an int64 tensor with the given shape.
func NewInt64(shape Shape, data []int64) (*Tensor, error) {
	if err := checkLen(shape, len(data)); err != nil {
		return nil, err
	}
	return &Tensor{dtype: Int64, shape: shape, int64s: data}, nil
}

// NewFloat32 wraps data as a float32 tensor with the given shape.
func NewFloat32(shape Shape, data []float32) (*Tensor, error) {
	if err := checkLen(shape, len(data)); err != nil {
		return nil, err
	}
	return &Tensor{dtype: Float32, shape: shape, float32s: data}, nil
}

// NewFloat64 wraps data as a float64 tensor with the given shape.
func NewFloat64(shape Shape, data []float64) (*Tensor, error) {
	if err := checkLen(shape, len(data)); err != nil {
		return nil, err
	}
	return &Tensor{dtype: Float64, shape: shape, float64s: data}, nil
}

// NewString wraps data as a string tensor with the given shape.
func NewString(shape Shape, data []string) (*Tensor, error) {
	if err := checkLen(shape, len(data)); err != nil {
		return nil, err
	}
	return &Tensor{dtype: String, shape: shape, strings: data}, nil
}

// Zeros allocates a zero-initialized tensor of the given type and shape.
func Zeros(dtype ElementType, shape Shape) (*Tensor, error) {
	size, err := shape.Size()
	if err != nil {
		return nil, err
	}
	t := &Tensor{dtype: dtype, shape: shape}
	switch dtype {
	case Uint8:
		t.uint8s = make([]uint8, size)
	case Uint32:
		t.uint32s = make([]uint32, size)
	case Int64:
		t.int64s = make([]int64, size)
	case Float32:
		t.float32s = make([]float32, size)
	case Float64:
		t.float64s = make([]float64, size)
	case String:
		t.strings = make([]string, size)
	default:
		return nil, fmt.Errorf("tensor: cannot allocate %s tensor", dtype)
	}
	return t, nil
}

func (t *Tensor) typeErr(want ElementType) error {
	return fmt.Errorf("tensor: want %s data, tensor holds %s", want, t.dtype)
}

// Uint8s returns the backing uint8 slice, erroring on type mismatch.
func (t *Tensor) Uint8s() ([]uint8, error) {
	if t.dtype != Uint8 {
		return nil, t.typeErr(Uint8)
	}
	return t.uint8s, nil
}

// Uint32s returns the backing uint32 slice, erroring on type mismatch.
func (t *Tensor) Uint32s() ([]uint32, error) {
	if t.dtype != Uint32 {
		return nil, t.typeErr(Uint32)
	}
	return t.uint32s, nil
}

// Int64s returns the backing int64 slice, erroring on type mismatch.
func (t *Tensor) Int64s() ([]int64, error) {
	if t.dtype != Int64 {
		return nil, t.typeErr(Int64)
	}
	return t.int64s, nil
}

// Float32s returns the backing float32 slice, erroring on type mismatch.
func (t *Tensor) Float32s() ([]float32, error) {
	if t.dtype != Float32 {
		return nil, t.typeErr(Float32)
	}
	return t.float32s, nil
}

// Float64s returns the backing float64 slice, erroring on type mismatch.
func (t *Tensor) Float64s() ([]float64, error) {
	if t.dtype != Float64 {
		return nil, t.typeErr(Float64)
	}
	return t.float64s, nil
}

// Strings returns the backing string slice, erroring on type mismatch.
func (t *Tensor) Strings() ([]string, error) {
	if t.dtype != String {
		return nil, t.typeErr(String)
	}
	return t.strings, nil
}
