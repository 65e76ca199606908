package embbag

// Integer constrains the index and offset element types. Tables are indexed
// with signed 32- or 64-bit references; -1 is a sentinel in the pruned-row
// layouts, never a valid row id.
type Integer interface {
	~int32 | ~int64
}

// Out16 constrains the dense pooled output element types: float32
// passthrough, or a 16-bit representation stored as raw bits (float16 by
// default, bfloat16 when Params.BF16Out is set).
type Out16 interface {
	float32 | uint16
}

// Out8 additionally admits the raw-byte passthrough output of the 8-bit
// family, which is legal only in no-bag mode.
type Out8 interface {
	float32 | uint16 | uint8
}

// Params carries the per-call configuration shared by all kernel families.
// The zero value of every flag is the default behavior: offsets
// segmentation, trailing scale/bias, float16 for 16-bit outputs, derived
// strides.
type Params struct {
	// BlockSize is the vector dimensionality of one row.
	BlockSize int
	// OutputSize is the number of bags, i.e. pooled output rows.
	OutputSize int
	// IndexSize is the total flattened index count; a call succeeds only
	// if the bags consume exactly this many indices.
	IndexSize int
	// DataSize is the number of rows in the table; every resolved row id
	// must lie in [0, DataSize).
	DataSize int

	// UncompressedDataSize bounds raw indices in the row-wise-sparse
	// family, which validates them before the compressed-index remap.
	UncompressedDataSize int

	// BitRate selects the packed code width for SumNBit: 2 or 4.
	BitRate int

	// ExponentBits and ExponentBias parameterize the 8-bit floating
	// format for SumFP8.
	ExponentBits int
	ExponentBias int

	// NormalizeByLengths divides each non-empty bag's sum by the bag
	// length. Empty bags stay all-zero either way.
	NormalizeByLengths bool

	// IsWeightPositional indexes weights by position within the bag
	// instead of by the global index cursor.
	IsWeightPositional bool

	// UseLengths switches segmentation from an offsets array
	// (OutputSize+1 monotonic values, the default) to a lengths array
	// (OutputSize bag sizes consumed positionally).
	UseLengths bool

	// ScaleBiasFirst places the fused scale/bias pair before the payload
	// (the table-batched layout). In that layout a -1 index marks a
	// pruned row: it consumes its slot and contributes nothing.
	ScaleBiasFirst bool

	// NoBag treats every index as its own singleton bag, one output row
	// per index with offsets/lengths ignored. 8-bit family only.
	NoBag bool

	// BF16Out selects bfloat16 instead of float16 for uint16 outputs.
	BF16Out bool

	// InputStride and OutputStride override the row widths in table
	// bytes-or-elements and output elements respectively; 0 derives them
	// from BlockSize and the encoding.
	InputStride  int
	OutputStride int
}

// bagLength returns the m-th bag's length under the active segmentation
// mode.
func bagLength[O Integer](p *Params, offsetsOrLengths []O, m int) int {
	if p.UseLengths {
		return int(offsetsOrLengths[m])
	}
	return int(offsetsOrLengths[m+1] - offsetsOrLengths[m])
}

// contribWeight returns the weight of the i-th member of the current bag,
// with cursor the member's position in the full index stream.
func contribWeight(p *Params, weights []float32, i, cursor int) float32 {
	if weights == nil {
		return 1
	}
	if p.IsWeightPositional {
		return weights[i]
	}
	return weights[cursor]
}
