package embbag

import (
	"github.com/hupe1980/embbag/internal/math32"
)

// SumNBit pools bags of packed n-bit quantized rows (p.BitRate 2 or 4).
//
// A table row is ceil(BlockSize/elemsPerByte) payload bytes plus a fused
// float16 scale/bias pair, trailing by default or leading when
// p.ScaleBiasFirst. Codes are packed low bits first within each byte and
// dequantize as value = scale*code + bias. Output rows are float32, or
// float16/bfloat16 bit-patterns when T is uint16 (see Params.BF16Out).
//
// Returns false as soon as bag boundaries overrun IndexSize or a row id
// falls outside [0, DataSize); in the ScaleBiasFirst layout a -1 index is a
// pruned row that consumes its slot and contributes nothing. On failure the
// output buffer contents are unspecified.
func SumNBit[I Integer, O Integer, T Out16](
	p Params,
	input []byte,
	indices []I,
	offsetsOrLengths []O,
	weights []float32,
	out []T,
) bool {
	if p.BitRate != 2 && p.BitRate != 4 {
		return false
	}
	elemsPerByte := 8 / p.BitRate

	outputStride := p.OutputStride
	if outputStride == 0 {
		outputStride = p.BlockSize
	}

	const scaleBiasBytes = 2 * 2 // fused float16 pair
	payloadBytes := (p.BlockSize + elemsPerByte - 1) / elemsPerByte
	inputStride := p.InputStride
	if inputStride == 0 {
		inputStride = payloadBytes + scaleBiasBytes
	}

	// Scratch rounded up to whole bytes so the unpack loops never have to
	// mask a tail element.
	buf := make([]float32, payloadBytes*elemsPerByte)

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
				scale, bias = f16Pair(row[payloadBytes:])
				payload = row
			}
			if weights != nil {
				w := contribWeight(&p, weights, i, current)
				scale *= w
				bias *= w
			}

			if p.BitRate == 4 {
				n := (p.BlockSize + 1) / 2
				for j := 0; j < n; j++ {
					b := payload[j]
					buf[j*2] = math32.FMA(scale, float32(b&0x0F), buf[j*2]+bias)
					buf[j*2+1] = math32.FMA(scale, float32(b>>4), buf[j*2+1]+bias)
				}
			} else {
				n := (p.BlockSize + 3) / 4
				for j := 0; j < n; j++ {
					b := payload[j]
					buf[j*4] = math32.FMA(scale, float32(b&0x03), buf[j*4]+bias)
					buf[j*4+1] = math32.FMA(scale, float32((b>>2)&0x03), buf[j*4+1]+bias)
					buf[j*4+2] = math32.FMA(scale, float32((b>>4)&0x03), buf[j*4+2]+bias)
					buf[j*4+3] = math32.FMA(scale, float32(b>>6), buf[j*4+3]+bias)
				}
			}
			current++
		}
		if p.NormalizeByLengths && length > 0 {
			math32.ScaleInPlace(buf[:p.BlockSize], 1/float32(length))
		}
		encodeRow(out[m*outputStride:m*outputStride+p.BlockSize], buf[:p.BlockSize], p.BF16Out)
	}
	return current == p.IndexSize
}
