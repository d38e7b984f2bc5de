package aggregate

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/clickchain/clickchain/internal/model"
)

// ParallelTally builds a Tally from the transition slice using up to
// workers goroutines, each counting a private shard, then merges the
// shards by summation.
//
// Design decision: We shard the input slice rather than sharing one map
// behind a mutex because counting is embarrassingly parallel and the
// merge is a cheap summation. The result is identical to TallyAll for
// any shard split, preserving order-insensitivity.
//
// With workers <= 1 or a trivially small input this falls back to the
// sequential pass.
func ParallelTally(ctx context.Context, transitions []model.Transition, workers int) (*Tally, error) {
	if workers <= 1 || len(transitions) <= 1 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return TallyAll(transitions), nil
	}

	shards := workers
	if shards > len(transitions) {
		shards = len(transitions)
	}
	chunk := (len(transitions) + shards - 1) / shards

	results := make([]*Tally, shards)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range shards {
		lo := i * chunk
		hi := min(lo+chunk, len(transitions))

		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			local := NewTally()
			local.AddAll(transitions[lo:hi])
			results[i] = local
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := NewTally()
	for _, r := range results {
		merged.Merge(r)
	}
	return merged, nil
}
