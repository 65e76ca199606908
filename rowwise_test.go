package embbag_test

import (
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/embbag"
	"github.com/hupe1980/embbag/internal/floatx"
	"github.com/hupe1980/embbag/internal/math32"
	"github.com/hupe1980/embbag/quantize"
	"github.com/hupe1980/embbag/rowremap"
	"github.com/hupe1980/embbag/testutil"
)

func TestSumRowWiseSparse8Bit_MatchesReference(t *testing.T) {
	rng := testutil.NewRNG(19)

	const (
		blockSize        = 14
		uncompressedRows = 60
		outputSize       = 8
	)

	pruned := roaring.New()
	pruned.AddMany([]uint32{3, 4, 10, 31, 59})
	remap, err := rowremap.FromPruned(uncompressedRows, pruned)
	require.NoError(t, err)

	q, err := quantize.NewFused8BitRowwise(blockSize, false)
	require.NoError(t, err)
	input, err := q.EncodeRows(rng.UniformVectors(remap.Rows(), blockSize, -2, 2))
	require.NoError(t, err)

	lengths := rng.Lengths(outputSize, 6)
	indexSize := testutil.SumLengths(lengths)
	indices := rng.Indices(indexSize, uncompressedRows)
	offsets := testutil.OffsetsFromLengths(lengths)
	weights := rng.Weights(indexSize)

	p := embbag.Params{
		BlockSize:            blockSize,
		OutputSize:           outputSize,
		IndexSize:            indexSize,
		UncompressedDataSize: uncompressedRows,
		NormalizeByLengths:   true,
	}

	want, ok := testutil.ReferenceSumRowWiseSparse8Bit(p, input, indices, remap.Slice(), offsets, weights)
	require.True(t, ok)

	out := make([]float32, outputSize*blockSize)
	require.True(t, embbag.SumRowWiseSparse8Bit(p, input, indices, remap.Slice(), offsets, weights, out))
	assert.Equal(t, want, out)
}

func TestSumRowWiseSparseFloat32(t *testing.T) {
	// Two rows, second external id pruned.
	input := []float32{
		1, 2, 3,
		10, 20, 30,
	}
	remap := []int32{0, -1, 1}
	indices := []int64{0, 1, 2}
	lengths := []int32{3}

	p := embbag.Params{
		BlockSize:            3,
		OutputSize:           1,
		IndexSize:            3,
		UncompressedDataSize: 3,
		UseLengths:           true,
	}

	out := make([]float32, 3)
	require.True(t, embbag.SumRowWiseSparseFloat32(p, input, indices, remap, lengths, nil, out))
	assert.Equal(t, []float32{11, 22, 33}, out)

	// The pruned slot still counts against the bag length for the mean.
	p.NormalizeByLengths = true
	require.True(t, embbag.SumRowWiseSparseFloat32(p, input, indices, remap, lengths, nil, out))
	want := []float32{11, 22, 33}
	math32.ScaleInPlace(want, 1.0/3)
	assert.Equal(t, want, out)
}

func TestSumRowWiseSparseFloat16(t *testing.T) {
	rows := [][]float32{
		{0.5, -1.5, 2},
		{4, 0.25, -8},
	}
	input := make([]uint16, 0, 6)
	for _, row := range rows {
		for _, v := range row {
			input = append(input, uint16(floatx.F16FromFloat32(v)))
		}
	}

	remap := []int32{0, 1}
	indices := []int32{0, 1}
	offsets := []int32{0, 2}

	p := embbag.Params{
		BlockSize:            3,
		OutputSize:           1,
		IndexSize:            2,
		UncompressedDataSize: 2,
	}

	out := make([]float32, 3)
	require.True(t, embbag.SumRowWiseSparseFloat16(p, input, indices, remap, offsets, nil, out))
	// All values above are exactly representable in binary16.
	assert.Equal(t, []float32{4.5, -1.25, -6}, out)
}

func TestSumRowWiseSparse_AllPruned(t *testing.T) {
	remap := []int32{-1, -1}
	indices := []int32{0, 1, 0}
	offsets := []int32{0, 2, 3}

	p := embbag.Params{
		BlockSize:            4,
		OutputSize:           2,
		IndexSize:            3,
		UncompressedDataSize: 2,
		NormalizeByLengths:   true,
	}

	out := make([]float32, 8)
	for i := range out {
		out[i] = 7
	}
	require.True(t, embbag.SumRowWiseSparseFloat32(p, nil, indices, remap, offsets, nil, out))
	assert.Equal(t, make([]float32, 8), out)
}

func TestSumRowWiseSparse_Failures(t *testing.T) {
	input := []float32{1, 2}
	remap := []int32{0}

	p := embbag.Params{
		BlockSize:            2,
		OutputSize:           1,
		IndexSize:            1,
		UncompressedDataSize: 1,
	}
	out := make([]float32, 2)

	// External id out of the uncompressed range, before any remap.
	assert.False(t, embbag.SumRowWiseSparseFloat32(p, input, []int32{1}, remap, []int32{0, 1}, nil, out))
	assert.False(t, embbag.SumRowWiseSparseFloat32(p, input, []int32{-1}, remap, []int32{0, 1}, nil, out))

	// Segmentation overrun.
	assert.False(t, embbag.SumRowWiseSparseFloat32(p, input, []int32{0}, remap, []int32{0, 2}, nil, out))
}
