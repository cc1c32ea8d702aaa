package session

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// fanOut runs f once per id concurrently and returns the results indexed
// by the input order, which is always member turn order. A failure or a
// cancellation mid-fan-out cancels every outstanding call and aborts the
// session; nothing is emitted until the join completes, which is what
// keeps ballots blind.
func fanOut[T any](ctx context.Context, ids []string, f func(ctx context.Context, id string) (T, error)) ([]T, error) {
	results := make([]T, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			v, err := f(gctx, id)
			if err != nil {
				return err
			}
			results[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
