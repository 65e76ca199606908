// Package math32 provides the float32 helpers the pooling kernels fold with.
// This is an internal package - external users should use the embbag package.
//
// Everything here is pure Go on purpose: the kernels promise bit-identical
// results across platforms, so there is no feature-gated fast path to
// dispatch to. Loops are written so the compiler can vectorize the
// elementwise work; the accumulation order across table rows is fixed by the
// callers and never altered here.
package math32

import "math"

// FMA returns x*y + z with a single rounding step.
//
// math.FMA is specified as correctly-rounded fused multiply-add in float64,
// which makes the float32 result reproducible everywhere, including targets
// without a hardware FMA instruction.
func FMA(x, y, z float32) float32 {
	return float32(math.FMA(float64(x), float64(y), float64(z)))
}

// Zero clears a.
func Zero(a []float32) {
	for i := range a {
		a[i] = 0
	}
}

// ScaleInPlace multiplies all elements of a by scalar.
//
// This is primarily used by length normalization.
func ScaleInPlace(a []float32, scalar float32) {
	i := 0
	for ; i+4 <= len(a); i += 4 {
		a[i] *= scalar
		a[i+1] *= scalar
		a[i+2] *= scalar
		a[i+3] *= scalar
	}
	for ; i < len(a); i++ {
		a[i] *= scalar
	}
}

// AxpyBytes folds a weighted, affinely dequantized byte row into acc:
//
//	acc[j] = fma(scale, row[j], acc[j] + bias)
//
// scale and bias are expected to already carry the contribution's weight.
// row and acc must have equal length.
func AxpyBytes(acc []float32, row []byte, scale, bias float32) {
	for j := range acc {
		acc[j] = FMA(scale, float32(row[j]), acc[j]+bias)
	}
}

// AxpyFloats folds a weighted float32 row into acc:
//
//	acc[j] = fma(w, row[j], acc[j])
func AxpyFloats(acc []float32, row []float32, w float32) {
	for j := range acc {
		acc[j] = FMA(w, row[j], acc[j])
	}
}
