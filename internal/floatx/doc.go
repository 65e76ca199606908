// Package floatx implements the narrow floating-point element formats used
// by the fused embedding-table encodings: IEEE-754 binary16 (float16),
// bfloat16, and a parameterized 8-bit floating format.
//
// This package is internal: it exists to support narrow formats as storage
// representations while keeping all arithmetic in float32. Conversions are
// pure bit manipulation and produce identical results on every platform.
package floatx
