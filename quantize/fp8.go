package quantize

import (
	"errors"

	"github.com/hupe1980/embbag/internal/floatx"
)

// FP8Rowwise implements elementwise 8-bit floating-point quantization with
// a configurable exponent width and bias. There is no row-level scale or
// bias; the format has no inf or nan and saturates at its largest finite
// magnitude.
type FP8Rowwise struct {
	blockSize    int
	exponentBits int
	exponentBias int
}

// NewFP8Rowwise creates a quantizer for rows of blockSize elements.
func NewFP8Rowwise(blockSize, exponentBits, exponentBias int) (*FP8Rowwise, error) {
	if blockSize <= 0 {
		return nil, errors.New("block size must be positive")
	}
	if exponentBits < 1 || exponentBits > 7 {
		return nil, errors.New("exponent bits must be in [1, 7]")
	}
	return &FP8Rowwise{
		blockSize:    blockSize,
		exponentBits: exponentBits,
		exponentBias: exponentBias,
	}, nil
}

// RowWidth returns the row width in bytes (one byte per element).
func (q *FP8Rowwise) RowWidth() int {
	return q.blockSize
}

// Max returns the largest finite magnitude of the configured format.
func (q *FP8Rowwise) Max() float32 {
	return floatx.FP8Max(q.exponentBits, q.exponentBias)
}

// Encode quantizes one row, rounding to nearest-even and saturating out of
// range magnitudes.
func (q *FP8Rowwise) Encode(row []float32) ([]byte, error) {
	if len(row) != q.blockSize {
		return nil, errors.New("dimension mismatch")
	}
	out := make([]byte, q.blockSize)
	for i, v := range row {
		out[i] = floatx.FP8FromFloat32(v, q.exponentBits, q.exponentBias)
	}
	return out, nil
}

// EncodeRows quantizes a whole table into one contiguous buffer of rows.
func (q *FP8Rowwise) EncodeRows(rows [][]float32) ([]byte, error) {
	table := make([]byte, 0, len(rows)*q.blockSize)
	for _, row := range rows {
		b, err := q.Encode(row)
		if err != nil {
			return nil, err
		}
		table = append(table, b...)
	}
	return table, nil
}

// Decode reconstructs one row. This is the reference dequantization the
// kernels fold with.
func (q *FP8Rowwise) Decode(b []byte) ([]float32, error) {
	if len(b) != q.blockSize {
		return nil, errors.New("row width mismatch")
	}
	out := make([]float32, q.blockSize)
	for i, c := range b {
		out[i] = floatx.FP8ToFloat32(c, q.exponentBits, q.exponentBias)
	}
	return out, nil
}
