package quantize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/embbag/quantize"
)

func TestFusedNBitRowwise_RowWidth(t *testing.T) {
	tests := []struct {
		bitRate   int
		blockSize int
		want      int
	}{
		{4, 4, 6},   // 2 payload bytes + 4
		{4, 3, 6},   // odd tail still needs 2 payload bytes
		{2, 8, 6},   // 2 bytes of quads + 4
		{2, 9, 7},
	}
	for _, tt := range tests {
		q, err := quantize.NewFusedNBitRowwise(tt.bitRate, tt.blockSize, false)
		require.NoError(t, err)
		assert.Equal(t, tt.want, q.RowWidth(), "bitRate=%d blockSize=%d", tt.bitRate, tt.blockSize)
	}
}

func TestFusedNBitRowwise_ExactGrid(t *testing.T) {
	// Values already on the code grid survive encode/decode unchanged.
	q, err := quantize.NewFusedNBitRowwise(2, 4, false)
	require.NoError(t, err)

	row := []float32{0, 1, 2, 3}
	fused, err := q.Encode(row)
	require.NoError(t, err)

	got, err := q.Decode(fused)
	require.NoError(t, err)
	assert.Equal(t, row, got)
}

func TestFusedNBitRowwise_Layout(t *testing.T) {
	q, err := quantize.NewFusedNBitRowwise(4, 4, false)
	require.NoError(t, err)

	// scale 1, bias 0: the codes are the values. Low bits first, so
	// {0,1,2,15} packs as 0x10, 0xF2.
	fused, err := q.Encode([]float32{0, 1, 2, 15})
	require.NoError(t, err)

	assert.Equal(t, []byte{
		0x10, 0xF2,
		0x00, 0x3C, // scale 1.0 as little-endian binary16
		0x00, 0x00, // bias 0
	}, fused)
}

func TestFusedNBitRowwise_ScaleBiasFirst(t *testing.T) {
	trailing, err := quantize.NewFusedNBitRowwise(4, 4, false)
	require.NoError(t, err)
	leading, err := quantize.NewFusedNBitRowwise(4, 4, true)
	require.NoError(t, err)

	row := []float32{-1, 0, 1, 2}
	a, err := trailing.Encode(row)
	require.NoError(t, err)
	b, err := leading.Encode(row)
	require.NoError(t, err)

	// Same content, swapped halves.
	assert.Equal(t, a[:2], b[4:])
	assert.Equal(t, a[2:], b[:4])

	got, err := leading.Decode(b)
	require.NoError(t, err)
	want, err := trailing.Decode(a)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFusedNBitRowwise_ConstantRow(t *testing.T) {
	q, err := quantize.NewFusedNBitRowwise(4, 3, false)
	require.NoError(t, err)

	fused, err := q.Encode([]float32{2.5, 2.5, 2.5})
	require.NoError(t, err)
	got, err := q.Decode(fused)
	require.NoError(t, err)
	assert.Equal(t, []float32{2.5, 2.5, 2.5}, got)
}

func TestFusedNBitRowwise_QuantizationError(t *testing.T) {
	q, err := quantize.NewFusedNBitRowwise(4, 8, false)
	require.NoError(t, err)

	row := []float32{-0.9, -0.5, -0.1, 0.05, 0.3, 0.55, 0.8, 1.1}
	fused, err := q.Encode(row)
	require.NoError(t, err)
	got, err := q.Decode(fused)
	require.NoError(t, err)

	// Error is bounded by half a quantization step.
	step := (1.1 - (-0.9)) / 15
	for i := range row {
		assert.InDelta(t, row[i], got[i], float64(step)/2+1e-3, "element %d", i)
	}
}

func TestFusedNBitRowwise_Errors(t *testing.T) {
	_, err := quantize.NewFusedNBitRowwise(3, 8, false)
	assert.Error(t, err)
	_, err = quantize.NewFusedNBitRowwise(4, 0, false)
	assert.Error(t, err)

	q, err := quantize.NewFusedNBitRowwise(4, 8, false)
	require.NoError(t, err)
	_, err = q.Encode(make([]float32, 7))
	assert.Error(t, err)
	_, err = q.Decode(make([]byte, q.RowWidth()-1))
	assert.Error(t, err)
}

func TestFusedNBitRowwise_EncodeRows(t *testing.T) {
	q, err := quantize.NewFusedNBitRowwise(2, 4, false)
	require.NoError(t, err)

	rows := [][]float32{
		{0, 1, 2, 3},
		{3, 2, 1, 0},
	}
	table, err := q.EncodeRows(rows)
	require.NoError(t, err)
	require.Len(t, table, 2*q.RowWidth())

	for i, row := range rows {
		got, err := q.Decode(table[i*q.RowWidth() : (i+1)*q.RowWidth()])
		require.NoError(t, err)
		assert.Equal(t, row, got, "row %d", i)
	}
}
