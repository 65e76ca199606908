package embbag_test

import (
	"fmt"
	"log"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/embbag"
	"github.com/hupe1980/embbag/quantize"
	"github.com/hupe1980/embbag/rowremap"
)

// Example_pooling demonstrates quantizing a small table to fused 4-bit rows
// and pooling two bags into mean embeddings.
func Example_pooling() {
	q, err := quantize.NewFusedNBitRowwise(4, 4, false)
	if err != nil {
		log.Fatal(err)
	}

	// Each row spans a range of 15, so the 4-bit scale is exactly 1 and the
	// quantization is lossless.
	input, err := q.EncodeRows([][]float32{
		{0, 5, 10, 15},
		{1, 6, 11, 16},
		{2, 7, 12, 17},
	})
	if err != nil {
		log.Fatal(err)
	}

	indices := []int32{0, 1, 2}
	offsets := []int32{0, 2, 3} // bag 0 = rows {0,1}, bag 1 = row {2}

	p := embbag.Params{
		BitRate:            4,
		BlockSize:          4,
		OutputSize:         2,
		IndexSize:          3,
		DataSize:           3,
		NormalizeByLengths: true,
	}

	out := make([]float32, 2*4)
	if !embbag.SumNBit(p, input, indices, offsets, nil, out) {
		log.Fatal("pooling failed")
	}

	fmt.Println(out[:4])
	fmt.Println(out[4:])
	// Output:
	// [0.5 5.5 10.5 15.5]
	// [2 7 12 17]
}

// Example_prunedTable demonstrates pooling against a pruned table through a
// compressed-index remap.
func Example_prunedTable() {
	// External ids 0..3; id 1 was pruned, so only three rows remain.
	pruned := roaring.New()
	pruned.Add(1)
	remap, err := rowremap.FromPruned(4, pruned)
	if err != nil {
		log.Fatal(err)
	}

	input := []float32{
		1, 1, // external id 0
		2, 2, // external id 2
		4, 4, // external id 3
	}

	p := embbag.Params{
		BlockSize:            2,
		OutputSize:           1,
		IndexSize:            3,
		UncompressedDataSize: 4,
	}

	out := make([]float32, 2)
	if !embbag.SumRowWiseSparseFloat32(p, input, []int32{0, 1, 3}, remap.Slice(), []int32{0, 3}, nil, out) {
		log.Fatal("pooling failed")
	}

	fmt.Println(out) // id 1 contributed nothing
	// Output: [5 5]
}
