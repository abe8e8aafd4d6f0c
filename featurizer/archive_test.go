package featurizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchiveRoundTrip(t *testing.T) {
	w := NewWritableArchive()
	w.WriteUint8(7)
	w.WriteUint32(42)
	w.WriteUint64(1 << 40)
	w.WriteFloat64(3.5)
	w.WriteString("count")

	r := NewArchive(w.Bytes())
	b, err := r.ReadUint8()
	require.NoError(t, err)
	assert.Equal(t, uint8(7), b)
	u32, err := r.ReadUint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(42), u32)
	u64, err := r.ReadUint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(1<<40), u64)
	f, err := r.ReadFloat64()
	require.NoError(t, err)
	assert.Equal(t, 3.5, f)
	s, err := r.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "count", s)
	assert.Equal(t, 0, r.Remaining())
}

func TestArchiveTruncated(t *testing.T) {
	w := NewWritableArchive()
	w.WriteUint32(9)
	r := NewArchive(w.Bytes()[:2])
	_, err := r.ReadUint32()
	assert.Error(t, err)
}

func TestArchiveStringLengthBeyondBuffer(t *testing.T) {
	w := NewWritableArchive()
	w.WriteUint32(100) // length prefix with no payload
	r := NewArchive(w.Bytes())
	_, err := r.ReadString()
	assert.Error(t, err)
}
