package embbag

import (
	"encoding/binary"
	"math"

	"github.com/hupe1980/embbag/internal/floatx"
)

// Fused scale/bias pairs and 16-bit outputs are little-endian; the table's
// binary layout is a caller precondition.

// encodeRow writes one pooled accumulator row into the caller's output
// representation. float32 is a passthrough copy; the 16-bit formats round
// per their codec. The uint8 passthrough never reaches this point: no-bag
// gather copies raw rows without decoding.
func encodeRow[T Out8](dst []T, acc []float32, bf16 bool) {
	switch d := any(dst).(type) {
	case []float32:
		copy(d, acc)
	case []uint16:
		if bf16 {
			for j, v := range acc {
				d[j] = uint16(floatx.BF16FromFloat32(v))
			}
		} else {
			for j, v := range acc {
				d[j] = uint16(floatx.F16FromFloat32(v))
			}
		}
	}
}

// f16Pair reads a fused float16 scale/bias pair.
func f16Pair(b []byte) (scale, bias float32) {
	scale = floatx.F16ToFloat32(floatx.F16(binary.LittleEndian.Uint16(b)))
	bias = floatx.F16ToFloat32(floatx.F16(binary.LittleEndian.Uint16(b[2:])))
	return scale, bias
}

// f32Pair reads a fused float32 scale/bias pair.
func f32Pair(b []byte) (scale, bias float32) {
	scale = math.Float32frombits(binary.LittleEndian.Uint32(b))
	bias = math.Float32frombits(binary.LittleEndian.Uint32(b[4:]))
	return scale, bias
}
