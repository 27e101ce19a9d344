package handle

import (
	"context"
	"sync"

	"github.com/asaidimu/sqlhandle/pkg/core"
)

// ItemFunc receives one row. It must call next, now or later and from any
// goroutine, for iteration to continue. Returning false stops iteration
// without waiting for next.
type ItemFunc func(index int, row core.Row, next func()) bool

// AsyncForEach walks rows on its own goroutine, one item at a time, and
// returns immediately. onDone, if non-nil, runs exactly once: after the
// last row, on early termination, or when ctx is cancelled. The returned
// channel is closed after onDone returns.
func AsyncForEach(ctx context.Context, rows []core.Row, onItem ItemFunc, onDone func()) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if onDone != nil {
			defer onDone()
		}

		for i, row := range rows {
			if ctx.Err() != nil {
				return
			}

			advance := make(chan struct{})
			var once sync.Once
			next := func() { once.Do(func() { close(advance) }) }

			if !onItem(i, row, next) {
				return
			}
			select {
			case <-advance:
			case <-ctx.Done():
				return
			}
		}
	}()
	return done
}

// AsyncForEach iterates a snapshot of the handle's last result set. Do not
// run two iterations over the same handle concurrently with queries on
// it; the snapshot is taken when AsyncForEach is called.
func (h *Handle) AsyncForEach(ctx context.Context, onItem ItemFunc, onDone func()) <-chan struct{} {
	return AsyncForEach(ctx, h.Rows(), onItem, onDone)
}
