package testutil

import (
	"encoding/binary"
	"math"

	"github.com/hupe1980/embbag"
	"github.com/hupe1980/embbag/internal/floatx"
	"github.com/hupe1980/embbag/internal/math32"
)

// Naive reference pooling implementations. They mirror the kernels'
// arithmetic step by step (same fused-multiply-add order, same
// normalization), so a kernel under test must match them bit for bit. The
// pooled result is always float32; tests encode it themselves when
// comparing 16-bit outputs.

func bagLength[O embbag.Integer](p embbag.Params, offsetsOrLengths []O, m int) int {
	if p.UseLengths {
		return int(offsetsOrLengths[m])
	}
	return int(offsetsOrLengths[m+1] - offsetsOrLengths[m])
}

func weightAt(p embbag.Params, weights []float32, i, cursor int) float32 {
	if weights == nil {
		return 1
	}
	if p.IsWeightPositional {
		return weights[i]
	}
	return weights[cursor]
}

// ReferenceSumNBit pools packed n-bit rows the slow way.
func ReferenceSumNBit[I embbag.Integer, O embbag.Integer](
	p embbag.Params,
	input []byte,
	indices []I,
	offsetsOrLengths []O,
	weights []float32,
) ([]float32, bool) {
	elemsPerByte := 8 / p.BitRate
	payloadBytes := (p.BlockSize + elemsPerByte - 1) / elemsPerByte
	inputStride := p.InputStride
	if inputStride == 0 {
		inputStride = payloadBytes + 4
	}

	out := make([]float32, p.OutputSize*p.BlockSize)
	current := 0
	for m := 0; m < p.OutputSize; m++ {
		acc := out[m*p.BlockSize : (m+1)*p.BlockSize]
		length := bagLength(p, offsetsOrLengths, m)
		if current+length > p.IndexSize {
			return nil, false
		}
		for i := 0; i < length; i++ {
			idx := int(indices[current])
			if p.ScaleBiasFirst && idx == -1 {
				current++
				continue
			}
			if idx < 0 || idx >= p.DataSize {
				return nil, false
			}
			row := input[idx*inputStride:]
			sb := row[payloadBytes:]
			payload := row
			if p.ScaleBiasFirst {
				sb = row
				payload = row[4:]
			}
			scale := floatx.F16ToFloat32(floatx.F16(uint16(sb[0]) | uint16(sb[1])<<8))
			bias := floatx.F16ToFloat32(floatx.F16(uint16(sb[2]) | uint16(sb[3])<<8))
			if weights != nil {
				w := weightAt(p, weights, i, current)
				scale *= w
				bias *= w
			}
			mask := byte(1<<p.BitRate - 1)
			for j := 0; j < p.BlockSize; j++ {
				shift := (j % elemsPerByte) * p.BitRate
				code := (payload[j/elemsPerByte] >> shift) & mask
				acc[j] = math32.FMA(scale, float32(code), acc[j]+bias)
			}
			current++
		}
		if p.NormalizeByLengths && length > 0 {
			math32.ScaleInPlace(acc, 1/float32(length))
		}
	}
	return out, current == p.IndexSize
}

// ReferenceSum8Bit pools fused 8-bit rows the slow way.
func ReferenceSum8Bit[I embbag.Integer, O embbag.Integer](
	p embbag.Params,
	input []byte,
	indices []I,
	offsetsOrLengths []O,
	weights []float32,
) ([]float32, bool) {
	scaleBiasBytes := 8
	if p.ScaleBiasFirst {
		scaleBiasBytes = 4
	}
	inputStride := p.InputStride
	if inputStride == 0 {
		inputStride = p.BlockSize + scaleBiasBytes
	}

	out := make([]float32, p.OutputSize*p.BlockSize)
	current := 0
	for m := 0; m < p.OutputSize; m++ {
		acc := out[m*p.BlockSize : (m+1)*p.BlockSize]
		length := bagLength(p, offsetsOrLengths, m)
		if current+length > p.IndexSize {
			return nil, false
		}
		for i := 0; i < length; i++ {
			idx := int(indices[current])
			if p.ScaleBiasFirst && idx == -1 {
				current++
				continue
			}
			if idx < 0 || idx >= p.DataSize {
				return nil, false
			}
			row := input[idx*inputStride:]
			var scale, bias float32
			payload := row
			if p.ScaleBiasFirst {
				scale = floatx.F16ToFloat32(floatx.F16(uint16(row[0]) | uint16(row[1])<<8))
				bias = floatx.F16ToFloat32(floatx.F16(uint16(row[2]) | uint16(row[3])<<8))
				payload = row[4:]
			} else {
				scale = f32At(row[p.BlockSize:])
				bias = f32At(row[p.BlockSize+4:])
			}
			if weights != nil {
				w := weightAt(p, weights, i, current)
				scale *= w
				bias *= w
			}
			for j := 0; j < p.BlockSize; j++ {
				acc[j] = math32.FMA(scale, float32(payload[j]), acc[j]+bias)
			}
			current++
		}
		if p.NormalizeByLengths && length > 0 {
			math32.ScaleInPlace(acc, 1/float32(length))
		}
	}
	return out, current == p.IndexSize
}

// ReferenceSumFP8 pools 8-bit floating rows the slow way.
func ReferenceSumFP8[I embbag.Integer, O embbag.Integer](
	p embbag.Params,
	input []byte,
	indices []I,
	offsetsOrLengths []O,
	weights []float32,
) ([]float32, bool) {
	inputStride := p.InputStride
	if inputStride == 0 {
		inputStride = p.BlockSize
	}

	out := make([]float32, p.OutputSize*p.BlockSize)
	current := 0
	for m := 0; m < p.OutputSize; m++ {
		acc := out[m*p.BlockSize : (m+1)*p.BlockSize]
		length := bagLength(p, offsetsOrLengths, m)
		if current+length > p.IndexSize {
			return nil, false
		}
		for i := 0; i < length; i++ {
			idx := int(indices[current])
			if p.ScaleBiasFirst && idx == -1 {
				current++
				continue
			}
			if idx < 0 || idx >= p.DataSize {
				return nil, false
			}
			row := input[idx*inputStride:]
			w := weightAt(p, weights, i, current)
			for j := 0; j < p.BlockSize; j++ {
				v := floatx.FP8ToFloat32(row[j], p.ExponentBits, p.ExponentBias)
				acc[j] = math32.FMA(w, v, acc[j])
			}
			current++
		}
		if p.NormalizeByLengths && length > 0 {
			math32.ScaleInPlace(acc, 1/float32(length))
		}
	}
	return out, current == p.IndexSize
}

// ReferenceSumRowWiseSparse8Bit pools pruned fused 8-bit rows the slow way.
func ReferenceSumRowWiseSparse8Bit[I embbag.Integer, O embbag.Integer](
	p embbag.Params,
	input []byte,
	indices []I,
	compressedIndexTable []int32,
	offsetsOrLengths []O,
	weights []float32,
) ([]float32, bool) {
	fused := p.BlockSize + 8

	out := make([]float32, p.OutputSize*p.BlockSize)
	current := 0
	for m := 0; m < p.OutputSize; m++ {
		acc := out[m*p.BlockSize : (m+1)*p.BlockSize]
		length := bagLength(p, offsetsOrLengths, m)
		if current+length > p.IndexSize {
			return nil, false
		}
		for i := 0; i < length; i++ {
			raw := int(indices[current])
			if raw < 0 || raw >= p.UncompressedDataSize {
				return nil, false
			}
			idx := compressedIndexTable[raw]
			if idx == -1 {
				current++
				continue
			}
			row := input[int(idx)*fused:]
			scale := f32At(row[p.BlockSize:])
			bias := f32At(row[p.BlockSize+4:])
			w := weightAt(p, weights, i, current)
			scale *= w
			bias *= w
			for j := 0; j < p.BlockSize; j++ {
				acc[j] = math32.FMA(scale, float32(row[j]), acc[j]+bias)
			}
			current++
		}
		if p.NormalizeByLengths && length > 0 {
			math32.ScaleInPlace(acc, 1/float32(length))
		}
	}
	return out, current == p.IndexSize
}

func f32At(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}
