package floatx

import "math"

// BF16 is the raw bfloat16 bit-pattern: the upper 16 bits of a float32.
type BF16 uint16

// BF16ToFloat32 converts a bfloat16 bit-pattern to float32.
// The conversion is exact: every bfloat16 value is a float32 value.
func BF16ToFloat32(b BF16) float32 {
	return math.Float32frombits(uint32(b) << 16)
}

// BF16FromFloat32 converts a float32 value into a bfloat16 bit-pattern.
//
// Rounding mode: round-to-nearest with ties away from zero, implemented as
// a bias-and-truncate on the raw bits. NaN payloads may be altered.
func BF16FromFloat32(f float32) BF16 {
	return BF16((math.Float32bits(f) + 0x8000) >> 16)
}
