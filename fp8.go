package embbag

import (
	"github.com/hupe1980/embbag/internal/floatx"
	"github.com/hupe1980/embbag/internal/math32"
)

// SumFP8 pools bags of 8-bit floating-point rows.
//
// Each table element is one byte in the configurable exponent-bits /
// exponent-bias format (p.ExponentBits, p.ExponentBias); there is no
// row-level scale or bias, so a contribution's weight multiplies the decoded
// value directly. The row is BlockSize bytes; the derived InputStride is
// BlockSize.
//
// Returns false on a segmentation overrun or an out-of-range row id. On
// failure the output buffer contents are unspecified.
func SumFP8[I Integer, O Integer, T Out16](
	p Params,
	input []byte,
	indices []I,
	offsetsOrLengths []O,
	weights []float32,
	out []T,
) bool {
	inputStride := p.InputStride
	if inputStride == 0 {
		inputStride = p.BlockSize
	}
	outputStride := p.OutputStride
	if outputStride == 0 {
		outputStride = p.BlockSize
	}

	// One dequantization table per call keeps the per-element step a plain
	// lookup + fma regardless of the exponent parameters.
	var lut [256]float32
	for b := range lut {
		lut[b] = floatx.FP8ToFloat32(uint8(b), p.ExponentBits, p.ExponentBias)
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
				// Pruned-row convention shared with the fused layouts.
				current++
				continue
			}
			if idx < 0 || idx >= int64(p.DataSize) {
				return false
			}
			row := input[int(idx)*inputStride : int(idx)*inputStride+p.BlockSize]
			w := contribWeight(&p, weights, i, current)

			for j, c := range row {
				buf[j] = math32.FMA(w, lut[c], buf[j])
			}
			current++
		}
		if p.NormalizeByLengths && length > 0 {
			math32.ScaleInPlace(buf, 1/float32(length))
		}
		encodeRow(out[m*outputStride:m*outputStride+p.BlockSize], buf, p.BF16Out)
	}
	return current == p.IndexSize
}
