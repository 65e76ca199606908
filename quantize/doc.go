// Package quantize produces the fused row-wise table layouts the embbag
// kernels consume.
//
// Each quantizer encodes float32 rows into one of the on-disk encodings and
// decodes them back for verification:
//
//   - FusedNBitRowwise: packed 2/4-bit codes with a float16 scale/bias pair
//   - Fused8BitRowwise: byte codes with a float32 (or table-batched float16)
//     scale/bias pair
//   - FP8Rowwise: one configurable 8-bit floating value per element
//
// Scale and bias are per-row affine dequantization parameters: a code c
// reconstructs to scale*c + bias. For the layouts that store them in
// float16, both are rounded through float16 before the codes are computed,
// so Decode(Encode(row)) reproduces exactly what a kernel folding that row
// sees.
//
// The kernels treat the table's binary layout as a caller precondition;
// this package is the reference way to satisfy it.
package quantize
