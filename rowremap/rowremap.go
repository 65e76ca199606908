// Package rowremap builds the compressed-index tables the row-wise-sparse
// kernels consume.
//
// A pruned embedding table keeps only a subset of its original rows. The
// remap assigns each surviving external row id a compact row id in external
// id order, and maps pruned ids to -1, the kernels' "contributes nothing"
// sentinel.
package rowremap

import (
	"errors"
	"log/slog"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/bits-and-blooms/bitset"
)

// Table maps external (uncompressed) row ids to compact row ids, or -1 for
// pruned rows. The slice form is consumed directly by the
// SumRowWiseSparse* kernels.
type Table struct {
	toCompact []int32
	rows      int
}

type options struct {
	logger *slog.Logger
}

// Option configures table construction.
type Option func(*options)

// WithLogger logs construction stats at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// FromPruned builds a remap for a table of uncompressedRows external ids of
// which the members of pruned were removed. pruned may be nil for a dense
// table.
func FromPruned(uncompressedRows int, pruned *roaring.Bitmap, opts ...Option) (*Table, error) {
	if uncompressedRows < 0 {
		return nil, errors.New("uncompressed row count must be non-negative")
	}
	if uncompressedRows > 1<<31-1 {
		return nil, errors.New("uncompressed row count exceeds int32 id space")
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	t := &Table{toCompact: make([]int32, uncompressedRows)}
	for i := 0; i < uncompressedRows; i++ {
		if pruned != nil && pruned.Contains(uint32(i)) {
			t.toCompact[i] = -1
			continue
		}
		t.toCompact[i] = int32(t.rows)
		t.rows++
	}

	if o.logger != nil {
		o.logger.Debug("built row remap",
			"uncompressed_rows", uncompressedRows,
			"compact_rows", t.rows,
			"pruned", uncompressedRows-t.rows,
		)
	}

	return t, nil
}

// FromPresence builds a remap from a dense presence mask: bit i set means
// external row i survived pruning. The external id space is present.Len().
func FromPresence(present *bitset.BitSet, opts ...Option) (*Table, error) {
	if present == nil {
		return nil, errors.New("presence mask must not be nil")
	}
	if present.Len() > 1<<31-1 {
		return nil, errors.New("presence mask exceeds int32 id space")
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	n := int(present.Len())
	t := &Table{toCompact: make([]int32, n)}
	for i := 0; i < n; i++ {
		if !present.Test(uint(i)) {
			t.toCompact[i] = -1
			continue
		}
		t.toCompact[i] = int32(t.rows)
		t.rows++
	}

	if o.logger != nil {
		o.logger.Debug("built row remap",
			"uncompressed_rows", n,
			"compact_rows", t.rows,
			"pruned", n-t.rows,
		)
	}

	return t, nil
}

// Slice returns the raw remap consumed by the row-wise-sparse kernels. The
// slice is owned by the table and must not be mutated.
func (t *Table) Slice() []int32 {
	return t.toCompact
}

// Rows returns the compact (post-pruning) row count.
func (t *Table) Rows() int {
	return t.rows
}

// UncompressedRows returns the external id space size.
func (t *Table) UncompressedRows() int {
	return len(t.toCompact)
}

// Lookup resolves one external id. ok is false for out-of-range or pruned
// ids.
func (t *Table) Lookup(id int64) (compact int32, ok bool) {
	if id < 0 || id >= int64(len(t.toCompact)) {
		return -1, false
	}
	c := t.toCompact[id]
	return c, c != -1
}
