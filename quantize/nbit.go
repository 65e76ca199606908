package quantize

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/hupe1980/embbag/internal/floatx"
)

// FusedNBitRowwise implements row-wise n-bit quantization (bit rate 2 or 4).
// Each row stores ceil(blockSize/elemsPerByte) packed code bytes and a
// float16 scale/bias pair, trailing by default or leading when
// scaleBiasFirst.
type FusedNBitRowwise struct {
	bitRate        int
	blockSize      int
	scaleBiasFirst bool
}

// NewFusedNBitRowwise creates a quantizer for rows of blockSize elements.
func NewFusedNBitRowwise(bitRate, blockSize int, scaleBiasFirst bool) (*FusedNBitRowwise, error) {
	if bitRate != 2 && bitRate != 4 {
		return nil, errors.New("bit rate must be 2 or 4")
	}
	if blockSize <= 0 {
		return nil, errors.New("block size must be positive")
	}
	return &FusedNBitRowwise{
		bitRate:        bitRate,
		blockSize:      blockSize,
		scaleBiasFirst: scaleBiasFirst,
	}, nil
}

// RowWidth returns the fused row width in bytes.
func (q *FusedNBitRowwise) RowWidth() int {
	elemsPerByte := 8 / q.bitRate
	return (q.blockSize+elemsPerByte-1)/elemsPerByte + 2*2
}

// Encode quantizes one row into its fused layout.
//
// The bias is the row minimum and the scale spans the row's range over the
// code range; both are rounded through float16 first so the stored
// parameters reproduce the exact values a decoding kernel uses. A zero
// range (or a scale that underflows float16) quantizes with scale 1.
func (q *FusedNBitRowwise) Encode(row []float32) ([]byte, error) {
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

	qmax := float32(int(1)<<q.bitRate - 1)
	bias := floatx.F16ToFloat32(floatx.F16FromFloat32(minVal))
	scale := (maxVal - bias) / qmax
	if maxVal == minVal {
		scale = 1
	}
	scale = floatx.F16ToFloat32(floatx.F16FromFloat32(scale))
	if scale == 0 {
		scale = 1
	}
	inv := 1 / scale

	elemsPerByte := 8 / q.bitRate
	payloadBytes := (q.blockSize + elemsPerByte - 1) / elemsPerByte
	fused := make([]byte, q.RowWidth())

	payload := fused[:payloadBytes]
	sb := fused[payloadBytes:]
	if q.scaleBiasFirst {
		payload = fused[2*2:]
		sb = fused[:2*2]
	}
	binary.LittleEndian.PutUint16(sb, uint16(floatx.F16FromFloat32(scale)))
	binary.LittleEndian.PutUint16(sb[2:], uint16(floatx.F16FromFloat32(bias)))

	for i, v := range row {
		code := int(math.RoundToEven(float64((v - bias) * inv)))
		if code < 0 {
			code = 0
		}
		if code > int(qmax) {
			code = int(qmax)
		}
		// Low bits first within each byte.
		shift := (i % elemsPerByte) * q.bitRate
		payload[i/elemsPerByte] |= byte(code) << shift
	}

	return fused, nil
}

// EncodeRows quantizes a whole table into one contiguous buffer of fused
// rows.
func (q *FusedNBitRowwise) EncodeRows(rows [][]float32) ([]byte, error) {
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
func (q *FusedNBitRowwise) Decode(fused []byte) ([]float32, error) {
	if len(fused) != q.RowWidth() {
		return nil, errors.New("fused row width mismatch")
	}

	elemsPerByte := 8 / q.bitRate
	payloadBytes := (q.blockSize + elemsPerByte - 1) / elemsPerByte
	payload := fused[:payloadBytes]
	sb := fused[payloadBytes:]
	if q.scaleBiasFirst {
		payload = fused[2*2:]
		sb = fused[:2*2]
	}
	scale := floatx.F16ToFloat32(floatx.F16(binary.LittleEndian.Uint16(sb)))
	bias := floatx.F16ToFloat32(floatx.F16(binary.LittleEndian.Uint16(sb[2:])))

	mask := byte(int(1)<<q.bitRate - 1)
	out := make([]float32, q.blockSize)
	for i := range out {
		shift := (i % elemsPerByte) * q.bitRate
		code := (payload[i/elemsPerByte] >> shift) & mask
		out[i] = scale*float32(code) + bias
	}

	return out, nil
}
