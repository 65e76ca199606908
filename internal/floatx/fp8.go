package floatx

import "math"

// The 8-bit floating format is a sign bit, exponentBits exponent bits and
// 7-exponentBits mantissa bits, with a caller-chosen exponent bias. There is
// no inf or nan: the all-ones exponent is an ordinary normal value, so the
// largest code 0x7F is the largest finite magnitude.
//
// exponentBits must be in [1, 7] and the bias must keep 127+(127-bias)
// inside the float32 exponent range; both hold for the e4m3/e5m2 style
// formats this package is used with.

// FP8ToFloat32 converts one 8-bit floating code to float32.
//
// The conversion plants the code's exponent/mantissa bits into a small
// float32 and rescales by 2^(127-exponentBias), which reproduces normal and
// subnormal codes alike without branching.
func FP8ToFloat32(b uint8, exponentBits, exponentBias int) float32 {
	sign := uint32(b&0x80) << 24
	v := math.Float32frombits(uint32(b&0x7F) << (16 + exponentBits))
	multiplier := math.Float32frombits(uint32(127+(127-exponentBias)) << 23)
	return math.Float32frombits(math.Float32bits(v*multiplier) | sign)
}

// FP8Max returns the largest finite magnitude of the format.
func FP8Max(exponentBits, exponentBias int) float32 {
	return FP8ToFloat32(0x7F, exponentBits, exponentBias)
}

// FP8FromFloat32 converts a float32 value into an 8-bit floating code.
//
// Rounding mode: round-to-nearest, ties-to-even. Magnitudes at or above the
// largest finite value (and NaN) saturate to the largest finite code.
func FP8FromFloat32(f float32, exponentBits, exponentBias int) uint8 {
	mbits := 7 - exponentBits

	var sign uint8
	if math.Signbit(float64(f)) {
		sign = 0x80
	}
	a := float64(math.Abs(float64(f)))

	maxPos := float64(FP8Max(exponentBits, exponentBias))
	if math.IsNaN(a) || a >= maxPos {
		return sign | 0x7F
	}
	if a == 0 {
		return sign
	}

	// a = frac * 2^exp with frac in [0.5, 1); the normalized exponent is exp-1.
	_, exp := math.Frexp(a)
	e := exp - 1

	minNormExp := 1 - exponentBias
	if e < minNormExp {
		// Subnormal: quantize against the fixed subnormal step.
		step := math.Ldexp(1, minNormExp-mbits)
		q := math.RoundToEven(a / step)
		if q >= float64(int(1)<<mbits) {
			// Rounded up into the smallest normal.
			return sign | uint8(1<<mbits)
		}
		return sign | uint8(q)
	}

	// Normal: quantize the [1,2) mantissa to mbits fractional bits.
	q := math.RoundToEven(math.Ldexp(a, -e) * float64(int(1)<<mbits))
	if q >= float64(int(1)<<(mbits+1)) {
		// Mantissa rounded up to 2.0; carry into the exponent.
		e++
		q = float64(int(1) << mbits)
	}
	expField := e + exponentBias
	if expField >= 1<<exponentBits {
		return sign | 0x7F
	}
	mantField := uint8(q) - uint8(1<<mbits)
	return sign | uint8(expField<<mbits) | mantField
}
