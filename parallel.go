package embbag

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

var errShardFailed = errors.New("embbag: shard failed")

// RunShards splits the bag range [0, outputSize) into shards contiguous
// chunks and runs fn on each concurrently. fn must behave like an
// independent pooling call over its bag range [lo, hi): write only its own
// output rows and treat the table, index, and weight buffers as read-only.
// Within each shard everything stays sequential, so per-shard results are
// bit-identical to the corresponding slice of a single sequential call.
//
// Returns true only if every shard returns true. A false shard does not
// interrupt the others; as with a single call, the output must be discarded.
func RunShards(ctx context.Context, shards, outputSize int, fn func(ctx context.Context, lo, hi int) bool) bool {
	if shards <= 1 || outputSize <= 1 {
		return fn(ctx, 0, outputSize)
	}
	if shards > outputSize {
		shards = outputSize
	}

	g, ctx := errgroup.WithContext(ctx)
	chunk := (outputSize + shards - 1) / shards
	for lo := 0; lo < outputSize; lo += chunk {
		lo := lo
		hi := min(lo+chunk, outputSize)
		g.Go(func() error {
			if !fn(ctx, lo, hi) {
				return errShardFailed
			}
			return nil
		})
	}
	return g.Wait() == nil
}
