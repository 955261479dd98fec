package terrain

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ProgressFunc receives the number of finished rows out of total. Calls are
// serialized and done never decreases.
type ProgressFunc func(done, total int)

type options struct {
	stretchH, stretchV float32
	parallelism        int
	progress           ProgressFunc
}

func defaultOptions() options {
	return options{stretchH: 1, stretchV: 1}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type Option func(*options)

// WithStretch sets the world length of one cell step (h) and of one height
// unit (v). Only Occlusion reads it; LightAngles takes both from grid.Size.
func WithStretch(h, v float32) Option {
	return func(o *options) {
		o.stretchH = h
		o.stretchV = v
	}
}

// WithParallelism bounds the number of rows computed at once. n <= 0 uses
// GOMAXPROCS. The result does not depend on n.
func WithParallelism(n int) Option {
	return func(o *options) { o.parallelism = n }
}

func WithProgress(f ProgressFunc) Option {
	return func(o *options) { o.progress = f }
}

func (o options) workers() int {
	if o.parallelism > 0 {
		return o.parallelism
	}
	return runtime.GOMAXPROCS(0)
}

// forEachRow runs fn once per row on at most o.workers() goroutines.
// Cancellation is checked before each row.
func forEachRow(ctx context.Context, rows int, o options, fn func(y int)) error {
	var (
		mu   sync.Mutex
		done int
	)
	finish := func() {
		if o.progress == nil {
			return
		}
		mu.Lock()
		done++
		o.progress(done, rows)
		mu.Unlock()
	}

	if o.workers() == 1 {
		for y := 0; y < rows; y++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			fn(y)
			finish()
		}
		return nil
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(o.workers())
	for y := 0; y < rows; y++ {
		if egCtx.Err() != nil {
			break
		}
		y := y
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			fn(y)
			finish()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
