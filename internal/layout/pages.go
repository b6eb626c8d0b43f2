package layout

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Page is one laid-out period of a multi-period view (a week row of a month
// grid, a day column of an hourly view).
type Page[P any] struct {
	Period  Period
	Entries []Entry[P]
}

// ComputePages lays out n consecutive periods starting at first. Each period
// is computed on its own goroutine; pages are returned in period order.
func (e Engine[P]) ComputePages(ctx context.Context, first Period, n int, occurrences []Occurrence[P]) ([]Page[P], error) {
	if n <= 0 {
		return nil, nil
	}

	pages := make([]Page[P], n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p := first.Shift(i)
			pages[i] = Page[P]{Period: p, Entries: e.Compute(p, occurrences)}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pages, nil
}
