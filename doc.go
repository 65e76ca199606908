// Package embbag implements quantized sparse-length-sum pooling kernels.
//
// Given a table of quantized row vectors, a stream of row indices grouped
// into variable-length bags, and optional per-index weights, each kernel
// produces one pooled (summed or averaged) output row per bag in a chosen
// output representation.
//
// # Kernel families
//
//	// Packed 2/4-bit rows with a fused float16 scale/bias pair.
//	ok := embbag.SumNBit(p, table, indices, offsets, weights, out)
//
//	// 8-bit rows with fused scale/bias; also the no-bag gather sub-mode.
//	ok := embbag.Sum8Bit(p, table, indices, offsets, weights, out)
//
//	// Pruned tables accessed through a compressed-index remap.
//	ok := embbag.SumRowWiseSparse8Bit(p, table, indices, remap, offsets, weights, out)
//
//	// 8-bit floating rows (configurable exponent bits / bias).
//	ok := embbag.SumFP8(p, table, indices, offsets, weights, out)
//
// The quantize package produces the fused row layouts these kernels consume,
// and the rowremap package builds the compressed-index tables for the
// row-wise-sparse family.
//
// # Determinism
//
// Contributions are folded strictly in index order with fused multiply-add,
// so identical inputs produce bit-identical outputs on every platform and
// across repeated calls. Vector width never changes results.
//
// # Failure contract
//
// Every kernel returns a single boolean. False means either the bag
// boundaries claimed more indices than IndexSize, or a resolved row id fell
// out of range; the output buffer is then partially written and must be
// discarded. There are no panics, retries, or partial-success states.
//
// # Concurrency
//
// A call runs on one goroutine and owns no shared state, so independent
// calls may run concurrently on disjoint output buffers. RunShards fans a
// batch out over bag ranges that way.
package embbag
