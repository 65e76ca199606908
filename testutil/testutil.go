// Package testutil provides testing utilities for embbag.
//
// This package is intended for use in tests and benchmarks only. It
// provides a seeded thread-safe RNG, bag segmentation generators, and naive
// reference pooling implementations with the same fused-multiply-add order
// as the kernels, usable as exact ground truth.
package testutil

import (
	"math/rand"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	mu   sync.Mutex
	rand *rand.Rand
	seed int64
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float32 returns, as a float32, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float32() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float32()
}

// FillUniformRange fills dst with random values in range [minVal, maxVal).
// Locks only once per call (preferred over calling Float32 in a loop).
func (r *RNG) FillUniformRange(dst []float32, minVal, maxVal float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	span := maxVal - minVal
	for i := range dst {
		dst[i] = minVal + r.rand.Float32()*span
	}
}

// UniformVectors generates num random vectors with values in [minVal,
// maxVal). Uses a single backing array for efficiency.
func (r *RNG) UniformVectors(num, dimensions int, minVal, maxVal float32) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, num*dimensions)
	vectors := make([][]float32, num)
	span := maxVal - minVal

	for i := 0; i < num; i++ {
		vec := data[i*dimensions : (i+1)*dimensions]
		for j := range vec {
			vec[j] = minVal + r.rand.Float32()*span
		}
		vectors[i] = vec
	}

	return vectors
}

// Lengths generates outputSize bag lengths in [0, maxLen].
func (r *RNG) Lengths(outputSize, maxLen int) []int32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	lengths := make([]int32, outputSize)
	for i := range lengths {
		lengths[i] = int32(r.rand.Intn(maxLen + 1))
	}
	return lengths
}

// Indices generates n row references in [0, dataSize).
func (r *RNG) Indices(n, dataSize int) []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	indices := make([]int64, n)
	for i := range indices {
		indices[i] = int64(r.rand.Intn(dataSize))
	}
	return indices
}

// Weights generates n weights in [0.5, 1.5) to keep pooled sums well
// conditioned.
func (r *RNG) Weights(n int) []float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	weights := make([]float32, n)
	for i := range weights {
		weights[i] = 0.5 + r.rand.Float32()
	}
	return weights
}

// OffsetsFromLengths converts positional bag lengths to an offsets array of
// len(lengths)+1 monotonically non-decreasing values starting at 0.
func OffsetsFromLengths(lengths []int32) []int32 {
	offsets := make([]int32, len(lengths)+1)
	for i, l := range lengths {
		offsets[i+1] = offsets[i] + l
	}
	return offsets
}

// SumLengths returns the total index count claimed by lengths.
func SumLengths(lengths []int32) int {
	total := 0
	for _, l := range lengths {
		total += int(l)
	}
	return total
}
