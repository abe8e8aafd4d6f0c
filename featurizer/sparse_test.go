package featurizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSparseValidate(t *testing.T) {
	tests := []struct {
		name    string
		enc     SparseVectorEncoding[uint32]
		wantErr bool
	}{
		{
			name: "valid",
			enc: SparseVectorEncoding[uint32]{NumElements: 3, Values: []ValueEncoding[uint32]{
				{Index: 0, Value: 2}, {Index: 2, Value: 1},
			}},
		},
		{
			name: "empty",
			enc:  SparseVectorEncoding[uint32]{NumElements: 5},
		},
		{
			name: "index out of range",
			enc: SparseVectorEncoding[uint32]{NumElements: 2, Values: []ValueEncoding[uint32]{
				{Index: 2, Value: 1},
			}},
			wantErr: true,
		},
		{
			name: "duplicate index",
			enc: SparseVectorEncoding[uint32]{NumElements: 3, Values: []ValueEncoding[uint32]{
				{Index: 1, Value: 1}, {Index: 1, Value: 2},
			}},
			wantErr: true,
		},
		{
			name: "descending order",
			enc: SparseVectorEncoding[uint32]{NumElements: 3, Values: []ValueEncoding[uint32]{
				{Index: 2, Value: 1}, {Index: 0, Value: 2},
			}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.enc.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIndexBitmap(t *testing.T) {
	enc := SparseVectorEncoding[uint32]{NumElements: 10, Values: []ValueEncoding[uint32]{
		{Index: 1, Value: 4}, {Index: 7, Value: 2},
	}}
	bm, err := enc.IndexBitmap()
	require.NoError(t, err)
	assert.True(t, bm.Contains(1))
	assert.True(t, bm.Contains(7))
	assert.False(t, bm.Contains(0))
	assert.Equal(t, uint64(2), bm.GetCardinality())
}
