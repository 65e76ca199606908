package embbag

import (
	"github.com/hupe1980/embbag/internal/math32"
)

// Sum8Bit pools bags of fused 8-bit quantized rows.
//
// A table row is BlockSize payload bytes plus a fused scale/bias pair:
// trailing 2x float32 by default, or a leading 2x float16 pair in the
// table-batched layout (p.ScaleBiasFirst). Dequantization is
// value = scale*byte + bias.
//
// With p.NoBag set, every index is its own singleton bag: OutputSize must
// equal IndexSize, offsetsOrLengths and weights are ignored, and each output
// row is the decoded table row (a plain gather). T = uint8 selects the
// raw passthrough sub-mode, legal only in no-bag mode: the full fused row is
// copied without decoding, so the output is itself a quantized table of
// identical row width.
//
// Returns false on a segmentation overrun or an out-of-range row id; in the
// ScaleBiasFirst layout a -1 index is a pruned row that consumes its slot
// (in no-bag mode its output row stays zero). On failure the output buffer
// contents are unspecified.
func Sum8Bit[I Integer, O Integer, T Out8](
	p Params,
	input []byte,
	indices []I,
	offsetsOrLengths []O,
	weights []float32,
	out []T,
) bool {
	// Trailing pairs are float32, the leading table-batched pair is float16.
	scaleBiasBytes := 2 * 4
	if p.ScaleBiasFirst {
		scaleBiasBytes = 2 * 2
	}
	inputStride := p.InputStride
	if inputStride == 0 {
		inputStride = p.BlockSize + scaleBiasBytes
	}

	if _, isRaw := any(out).([]uint8); isRaw && !p.NoBag {
		// Raw passthrough pools nothing; it is defined only for no-bag.
		return false
	}
	if p.NoBag {
		return gather8Bit(&p, input, indices, out, inputStride)
	}

	outputStride := p.OutputStride
	if outputStride == 0 {
		outputStride = p.BlockSize
	}

	buf := make([]float32, p.BlockSize)

	current := 0
	for m := 0; m < p.OutputSize; m++ {
		math32.Zero(buf)
		length := bagLength(&p, offsetsOrLengths, m)
		if current+length > p.IndexSize {
			return false
		}
		for i := 0; i < length; i++ {
			idx := int64(indices[current])
			if p.ScaleBiasFirst && idx == -1 {
				current++
				continue
			}
			if idx < 0 || idx >= int64(p.DataSize) {
				return false
			}
			row := input[int(idx)*inputStride : int(idx)*inputStride+inputStride]

			var payload []byte
			var scale, bias float32
			if p.ScaleBiasFirst {
				scale, bias = f16Pair(row)
				payload = row[scaleBiasBytes:]
			} else {
				scale, bias = f32Pair(row[p.BlockSize:])
				payload = row
			}
			if weights != nil {
				w := contribWeight(&p, weights, i, current)
				scale *= w
				bias *= w
			}

			math32.AxpyBytes(buf, payload[:p.BlockSize], scale, bias)
			current++
		}
		if p.NormalizeByLengths && length > 0 {
			math32.ScaleInPlace(buf, 1/float32(length))
		}
		encodeRow(out[m*outputStride:m*outputStride+p.BlockSize], buf, p.BF16Out)
	}
	return current == p.IndexSize
}

// gather8Bit is the no-bag sub-mode: a one-to-one row gather with no
// pooling, no weights, and no offsets.
func gather8Bit[I Integer, T Out8](p *Params, input []byte, indices []I, out []T, inputStride int) bool {
	if p.OutputSize != p.IndexSize {
		return false
	}

	if rawOut, ok := any(out).([]uint8); ok {
		// Full-row copy: the output is a quantized table with the same
		// fused layout, so the derived stride is the input stride.
		outputStride := p.OutputStride
		if outputStride == 0 {
			outputStride = inputStride
		}
		for m := 0; m < p.OutputSize; m++ {
			dst := rawOut[m*outputStride : m*outputStride+inputStride]
			idx := int64(indices[m])
			if p.ScaleBiasFirst && idx == -1 {
				clear(dst)
				continue
			}
			if idx < 0 || idx >= int64(p.DataSize) {
				return false
			}
			copy(dst, input[int(idx)*inputStride:int(idx)*inputStride+inputStride])
		}
		return true
	}

	outputStride := p.OutputStride
	if outputStride == 0 {
		outputStride = p.BlockSize
	}
	scaleBiasBytes := 2 * 4
	if p.ScaleBiasFirst {
		scaleBiasBytes = 2 * 2
	}

	buf := make([]float32, p.BlockSize)
	for m := 0; m < p.OutputSize; m++ {
		dst := out[m*outputStride : m*outputStride+p.BlockSize]
		idx := int64(indices[m])
		if p.ScaleBiasFirst && idx == -1 {
			math32.Zero(buf)
			encodeRow(dst, buf, p.BF16Out)
			continue
		}
		if idx < 0 || idx >= int64(p.DataSize) {
			return false
		}
		row := input[int(idx)*inputStride : int(idx)*inputStride+inputStride]

		var payload []byte
		var scale, bias float32
		if p.ScaleBiasFirst {
			scale, bias = f16Pair(row)
			payload = row[scaleBiasBytes:]
		} else {
			scale, bias = f32Pair(row[p.BlockSize:])
			payload = row
		}
		for j := 0; j < p.BlockSize; j++ {
			buf[j] = math32.FMA(scale, float32(payload[j]), bias)
		}
		encodeRow(dst, buf, p.BF16Out)
	}
	return true
}
