package embbag

import (
	"github.com/hupe1980/embbag/internal/floatx"
	"github.com/hupe1980/embbag/internal/math32"
)

// The row-wise-sparse family pools tables with pruned rows. Raw indices are
// external ids bounded by Params.UncompressedDataSize; each is remapped
// through compressedIndexTable to a compact row id, where -1 means the row
// was pruned: the slot is still consumed but contributes nothing. Output is
// always float32, one BlockSize row per bag; stride overrides do not apply.
//
// All three drivers return false on a segmentation overrun or a raw index
// outside [0, UncompressedDataSize); remapped ids are trusted by contract.
// On failure the output buffer contents are unspecified.

// SumRowWiseSparse8Bit pools fused 8-bit rows: BlockSize payload bytes
// followed by a trailing float32 scale/bias pair.
func SumRowWiseSparse8Bit[I Integer, O Integer](
	p Params,
	input []byte,
	indices []I,
	compressedIndexTable []int32,
	offsetsOrLengths []O,
	weights []float32,
	out []float32,
) bool {
	fused := p.BlockSize + 2*4
	return sumRowWiseSparse(&p, indices, compressedIndexTable, offsetsOrLengths, weights, out,
		func(acc []float32, idx int32, w float32) {
			row := input[int(idx)*fused : int(idx)*fused+fused]
			scale, bias := f32Pair(row[p.BlockSize:])
			math32.AxpyBytes(acc, row[:p.BlockSize], w*scale, w*bias)
		})
}

// SumRowWiseSparseFloat32 pools uncompressed float32 rows of BlockSize
// elements.
func SumRowWiseSparseFloat32[I Integer, O Integer](
	p Params,
	input []float32,
	indices []I,
	compressedIndexTable []int32,
	offsetsOrLengths []O,
	weights []float32,
	out []float32,
) bool {
	return sumRowWiseSparse(&p, indices, compressedIndexTable, offsetsOrLengths, weights, out,
		func(acc []float32, idx int32, w float32) {
			row := input[int(idx)*p.BlockSize : int(idx)*p.BlockSize+p.BlockSize]
			math32.AxpyFloats(acc, row, w)
		})
}

// SumRowWiseSparseFloat16 pools uncompressed float16 rows of BlockSize
// elements, passed as raw binary16 bit-patterns.
func SumRowWiseSparseFloat16[I Integer, O Integer](
	p Params,
	input []uint16,
	indices []I,
	compressedIndexTable []int32,
	offsetsOrLengths []O,
	weights []float32,
	out []float32,
) bool {
	return sumRowWiseSparse(&p, indices, compressedIndexTable, offsetsOrLengths, weights, out,
		func(acc []float32, idx int32, w float32) {
			row := input[int(idx)*p.BlockSize : int(idx)*p.BlockSize+p.BlockSize]
			for j, h := range row {
				acc[j] = math32.FMA(w, floatx.F16ToFloat32(floatx.F16(h)), acc[j])
			}
		})
}

// sumRowWiseSparse sequences bags for the row-wise-sparse drivers. fold is
// the per-variant row codec + accumulator step, selected once per call; it
// accumulates one decoded, weighted row into acc.
func sumRowWiseSparse[I Integer, O Integer](
	p *Params,
	indices []I,
	compressedIndexTable []int32,
	offsetsOrLengths []O,
	weights []float32,
	out []float32,
	fold func(acc []float32, idx int32, w float32),
) bool {
	current := 0
	for m := 0; m < p.OutputSize; m++ {
		acc := out[m*p.BlockSize : (m+1)*p.BlockSize]
		math32.Zero(acc)
		length := bagLength(p, offsetsOrLengths, m)
		if current+length > p.IndexSize {
			return false
		}
		for i := 0; i < length; i++ {
			raw := int64(indices[current])
			if raw < 0 || raw >= int64(p.UncompressedDataSize) {
				return false
			}
			idx := compressedIndexTable[raw]
			if idx == -1 {
				current++
				continue
			}
			fold(acc, idx, contribWeight(p, weights, i, current))
			current++
		}
		if p.NormalizeByLengths && length > 0 {
			math32.ScaleInPlace(acc, 1/float32(length))
		}
	}
	return current == p.IndexSize
}
