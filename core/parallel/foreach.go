package parallel

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ForEach calls fn for every index in [0, n) with at most jobs calls in
// flight. jobs <= 0 means one worker per item. The first error cancels the
// context passed to the remaining calls and is returned.
//
// fn must write its result into a slot owned by its index so that the
// outcome does not depend on scheduling.
func ForEach(ctx context.Context, n, jobs int, fn func(ctx context.Context, i int) error) error {
	if n == 0 {
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, i)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
