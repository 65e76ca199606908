package floatx

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

var fp8Formats = []struct {
	exponentBits int
	exponentBias int
}{
	{4, 7},  // e4m3
	{5, 15}, // e5m2 with the binary16 bias
	{3, 4},
}

func TestFP8ToFloat32(t *testing.T) {
	// e4m3, bias 7.
	assert.Equal(t, float32(1), FP8ToFloat32(0x38, 4, 7))
	assert.Equal(t, float32(2), FP8ToFloat32(0x40, 4, 7))
	assert.Equal(t, float32(-1), FP8ToFloat32(0xB8, 4, 7))
	assert.Equal(t, float32(0x1p-6), FP8ToFloat32(0x08, 4, 7))  // smallest normal
	assert.Equal(t, float32(0x1p-9), FP8ToFloat32(0x01, 4, 7))  // smallest subnormal
	assert.Equal(t, float32(480), FP8ToFloat32(0x7F, 4, 7))
	assert.Equal(t, float32(0), FP8ToFloat32(0x00, 4, 7))
}

func TestFP8Max(t *testing.T) {
	assert.Equal(t, float32(480), FP8Max(4, 7))
	assert.Equal(t, float32(15.5), FP8Max(3, 4))
}

func TestFP8FromFloat32(t *testing.T) {
	assert.Equal(t, uint8(0x38), FP8FromFloat32(1, 4, 7))
	assert.Equal(t, uint8(0x40), FP8FromFloat32(2, 4, 7))
	assert.Equal(t, uint8(0xB8), FP8FromFloat32(-1, 4, 7))
	assert.Equal(t, uint8(0x00), FP8FromFloat32(0, 4, 7))

	// 1.0625 is exactly halfway between codes 0x38 and 0x39; ties go to even.
	assert.Equal(t, uint8(0x38), FP8FromFloat32(1.0625, 4, 7))
	assert.Equal(t, uint8(0x3A), FP8FromFloat32(1.1875, 4, 7))
}

func TestFP8Saturation(t *testing.T) {
	assert.Equal(t, uint8(0x7F), FP8FromFloat32(1e10, 4, 7))
	assert.Equal(t, uint8(0xFF), FP8FromFloat32(-1e10, 4, 7))
	assert.Equal(t, uint8(0x7F), FP8FromFloat32(float32(math.NaN()), 4, 7))
	assert.Equal(t, uint8(0x7F), FP8FromFloat32(481, 4, 7))
}

func TestFP8RoundTripExhaustive(t *testing.T) {
	// Every code decodes to a distinct finite value, so encode(decode(b))
	// must reproduce the code exactly, for every format.
	for _, fmt := range fp8Formats {
		for b := 0; b <= 0xFF; b++ {
			v := FP8ToFloat32(uint8(b), fmt.exponentBits, fmt.exponentBias)
			got := FP8FromFloat32(v, fmt.exponentBits, fmt.exponentBias)
			assert.Equal(t, uint8(b), got, "e%d bias %d code 0x%02X (value %g)",
				fmt.exponentBits, fmt.exponentBias, b, v)
		}
	}
}
