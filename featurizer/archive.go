// Package featurizer holds the shared contracts of the featurizer family:
// the Archive byte format fitted transformer state travels in, the sparse
// vector encoding transformers emit, and the Execute/Flush protocol every
// transformer implements.
package featurizer

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Archive is a little-endian cursor over an opaque state buffer. Fitted
// transformers serialize into an Archive and deserialize from one; callers
// outside this package treat the buffer as an unstructured blob.
type Archive struct {
	buf []byte
	pos int
}

// NewArchive wraps an existing state buffer for reading.
func NewArchive(data []byte) *Archive {
	return &Archive{buf: data}
}

// NewWritableArchive returns an empty archive for serialization.
func NewWritableArchive() *Archive {
	return &Archive{buf: make([]byte, 0, 256)}
}

// Bytes returns the serialized buffer.
func (a *Archive) Bytes() []byte { return a.buf }

// Remaining reports how many unread bytes are left.
func (a *Archive) Remaining() int { return len(a.buf) - a.pos }

func (a *Archive) need(n int) error {
	if a.Remaining() < n {
		return fmt.Errorf("featurizer: archive truncated, want %d bytes at offset %d, have %d", n, a.pos, a.Remaining())
	}
	return nil
}

// ReadUint8 reads one byte.
func (a *Archive) ReadUint8() (uint8, error) {
	if err := a.need(1); err != nil {
		return 0, err
	}
	v := a.buf[a.pos]
	a.pos++
	return v, nil
}

// ReadUint32 reads a little-endian uint32.
func (a *Archive) ReadUint32() (uint32, error) {
	if err := a.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(a.buf[a.pos:])
	a.pos += 4
	return v, nil
}

// ReadUint64 reads a little-endian uint64.
func (a *Archive) ReadUint64() (uint64, error) {
	if err := a.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(a.buf[a.pos:])
	a.pos += 8
	return v, nil
}

// ReadFloat64 reads a little-endian IEEE 754 float64.
func (a *Archive) ReadFloat64() (float64, error) {
	bits, err := a.ReadUint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}

// ReadString reads a uint32 length prefix followed by UTF-8 bytes.
func (a *Archive) ReadString() (string, error) {
	n, err := a.ReadUint32()
	if err != nil {
		return "", err
	}
	if err := a.need(int(n)); err != nil {
		return "", err
	}
	s := string(a.buf[a.pos : a.pos+int(n)])
	a.pos += int(n)
	return s, nil
}

// WriteUint8 appends one byte.
func (a *Archive) WriteUint8(v uint8) {
	a.buf = append(a.buf, v)
}

// WriteUint32 appends a little-endian uint32.
func (a *Archive) WriteUint32(v uint32) {
	a.buf = binary.LittleEndian.AppendUint32(a.buf, v)
}

// WriteUint64 appends a little-endian uint64.
func (a *Archive) WriteUint64(v uint64) {
	a.buf = binary.LittleEndian.AppendUint64(a.buf, v)
}

// WriteFloat64 appends a little-endian IEEE 754 float64.
func (a *Archive) WriteFloat64(v float64) {
	a.WriteUint64(math.Float64bits(v))
}

// WriteString appends a uint32 length prefix and the UTF-8 bytes.
func (a *Archive) WriteString(s string) {
	a.WriteUint32(uint32(len(s)))
	a.buf = append(a.buf, s...)
}
