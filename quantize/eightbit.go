package quantize

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/hupe1980/embbag/internal/floatx"
)

// Fused8BitRowwise implements row-wise 8-bit quantization. Each row stores
// blockSize code bytes and a scale/bias pair: trailing float32 by default,
// or a leading float16 pair in the table-batched layout (scaleBiasFirst).
type Fused8BitRowwise struct {
	blockSize      int
	scaleBiasFirst bool
}

// NewFused8BitRowwise creates a quantizer for rows of blockSize elements.
func NewFused8BitRowwise(blockSize int, scaleBiasFirst bool) (*Fused8BitRowwise, error) {
	if blockSize <= 0 {
		return nil, errors.New("block size must be positive")
	}
	return &Fused8BitRowwise{
		blockSize:      blockSize,
		scaleBiasFirst: scaleBiasFirst,
	}, nil
}

// RowWidth returns the fused row width in bytes.
func (q *Fused8BitRowwise) RowWidth() int {
	if q.scaleBiasFirst {
		return q.blockSize + 2*2
	}
	return q.blockSize + 2*4
}

// Encode quantizes one row into its fused layout. In the table-batched
// layout the scale and bias are rounded through float16 before the codes
// are computed, matching what a decoding kernel reads back.
func (q *Fused8BitRowwise) Encode(row []float32) ([]byte, error) {
	if len(row) != q.blockSize {
		return nil, errors.New("dimension mismatch")
	}

	minVal, maxVal := row[0], row[0]
	for _, v := range row[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}

	bias := minVal
	scale := (maxVal - minVal) / 255
	if scale == 0 {
		scale = 1
	}
	if q.scaleBiasFirst {
		bias = floatx.F16ToFloat32(floatx.F16FromFloat32(bias))
		scale = floatx.F16ToFloat32(floatx.F16FromFloat32((maxVal - bias) / 255))
		if scale == 0 {
			scale = 1
		}
	}
	inv := 1 / scale

	fused := make([]byte, q.RowWidth())
	payload := fused[:q.blockSize]
	if q.scaleBiasFirst {
		payload = fused[2*2:]
		binary.LittleEndian.PutUint16(fused, uint16(floatx.F16FromFloat32(scale)))
		binary.LittleEndian.PutUint16(fused[2:], uint16(floatx.F16FromFloat32(bias)))
	} else {
		binary.LittleEndian.PutUint32(fused[q.blockSize:], math.Float32bits(scale))
		binary.LittleEndian.PutUint32(fused[q.blockSize+4:], math.Float32bits(bias))
	}

	for i, v := range row {
		code := int(math.RoundToEven(float64((v - bias) * inv)))
		if code < 0 {
			code = 0
		}
		if code > 255 {
			code = 255
		}
		payload[i] = byte(code)
	}

	return fused, nil
}

// EncodeRows quantizes a whole table into one contiguous buffer of fused
// rows.
func (q *Fused8BitRowwise) EncodeRows(rows [][]float32) ([]byte, error) {
	table := make([]byte, 0, len(rows)*q.RowWidth())
	for _, row := range rows {
		fused, err := q.Encode(row)
		if err != nil {
			return nil, err
		}
		table = append(table, fused...)
	}
	return table, nil
}

// Decode reconstructs one fused row. This is the reference dequantization
// the kernels fold with.
func (q *Fused8BitRowwise) Decode(fused []byte) ([]float32, error) {
	if len(fused) != q.RowWidth() {
		return nil, errors.New("fused row width mismatch")
	}

	var scale, bias float32
	payload := fused[:q.blockSize]
	if q.scaleBiasFirst {
		payload = fused[2*2:]
		scale = floatx.F16ToFloat32(floatx.F16(binary.LittleEndian.Uint16(fused)))
		bias = floatx.F16ToFloat32(floatx.F16(binary.LittleEndian.Uint16(fused[2:])))
	} else {
		scale = math.Float32frombits(binary.LittleEndian.Uint32(fused[q.blockSize:]))
		bias = math.Float32frombits(binary.LittleEndian.Uint32(fused[q.blockSize+4:]))
	}

	out := make([]float32, q.blockSize)
	for i, c := range payload[:q.blockSize] {
		out[i] = scale*float32(c) + bias
	}

	return out, nil
}
