// Package parallel runs row ranges and independent jobs concurrently.
//
// Chunks and ForEach share one process-wide worker cap. An evaluation run
// sets it from its n_jobs option so that estimator-internal fan-out and the
// search stay within the same budget; with a cap of 1 everything runs on the
// calling goroutine.
package parallel

import (
	"context"
	"runtime"
	"sync/atomic"
)

var maxWorkers atomic.Int64

// SetMaxWorkers sets the cap used by Chunks and returns the previous value.
// n <= 0 restores the default of GOMAXPROCS.
func SetMaxWorkers(n int) int {
	if n < 0 {
		n = 0
	}
	return int(maxWorkers.Swap(int64(n)))
}

// Workers returns the current cap.
func Workers() int {
	if n := int(maxWorkers.Load()); n > 0 {
		return n
	}
	return runtime.GOMAXPROCS(0)
}

// Chunks splits [0, items) into at most Workers() contiguous ranges and
// calls fn once per range. At or below threshold items, or with a cap of 1,
// fn receives the whole range on the calling goroutine.
//
// fn must only write to rows inside its range.
func Chunks(items, threshold int, fn func(start, end int)) {
	if items <= 0 {
		return
	}
	workers := min(Workers(), items)
	if items <= threshold || workers == 1 {
		fn(0, items)
		return
	}

	size := (items + workers - 1) / workers
	_ = ForEach(context.Background(), workers, workers, func(_ context.Context, w int) error {
		start := w * size
		end := min(start+size, items)
		if start < end {
			fn(start, end)
		}
		return nil
	})
}
