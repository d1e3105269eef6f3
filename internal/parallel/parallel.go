// Package parallel partitions row ranges and runs work over them concurrently.
package parallel

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/dtable/resource"
)

// DefaultMinRows is the smallest partition worth handing to its own goroutine.
const DefaultMinRows = 64 * 1024

// Chunk is the half-open row range [Lo, Hi); Index is its position in the
// partitioning, so results can be merged in row order.
type Chunk struct {
	Index  int
	Lo, Hi int
}

// Len returns the number of rows in the chunk.
func (c Chunk) Len() int { return c.Hi - c.Lo }

// Options controls how work is partitioned.
type Options struct {
	// Parallelism caps concurrent partitions. If <= 0, GOMAXPROCS is used.
	Parallelism int
	// MinRows is the minimum partition size. If <= 0, DefaultMinRows is used.
	MinRows int
	// Controller, when set, bounds concurrency across operations.
	Controller *resource.Controller
}

func (o Options) workers() int {
	p := o.Parallelism
	if p <= 0 {
		p = runtime.GOMAXPROCS(0)
	}
	if o.Controller != nil && o.Controller.MaxWorkers() < p {
		p = o.Controller.MaxWorkers()
	}
	return max(p, 1)
}

func (o Options) minRows() int {
	if o.MinRows <= 0 {
		return DefaultMinRows
	}
	return o.MinRows
}

// Split partitions [0, n) into at most Parallelism contiguous chunks of at
// least MinRows rows each. It always returns at least one chunk.
func Split(n int, opts Options) []Chunk {
	parts := min(opts.workers(), max(n/opts.minRows(), 1))
	size := (n + parts - 1) / parts
	if size == 0 {
		return []Chunk{{Index: 0, Lo: 0, Hi: 0}}
	}
	chunks := make([]Chunk, 0, parts)
	for lo := 0; lo < n; lo += size {
		chunks = append(chunks, Chunk{Index: len(chunks), Lo: lo, Hi: min(lo+size, n)})
	}
	return chunks
}

// Map runs fn over every chunk and returns the results indexed by chunk.
// A single chunk runs on the calling goroutine. The first error cancels the
// remaining work and is returned.
func Map[T any](ctx context.Context, chunks []Chunk, opts Options, fn func(context.Context, Chunk) (T, error)) ([]T, error) {
	out := make([]T, len(chunks))
	if len(chunks) == 1 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, err := fn(ctx, chunks[0])
		if err != nil {
			return nil, err
		}
		out[0] = v
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())
	for _, c := range chunks {
		g.Go(func() error {
			if err := opts.Controller.AcquireWorker(gctx); err != nil {
				return err
			}
			defer opts.Controller.ReleaseWorker()

			v, err := fn(gctx, c)
			if err != nil {
				return err
			}
			out[c.Index] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// For is Map without results.
func For(ctx context.Context, chunks []Chunk, opts Options, fn func(context.Context, Chunk) error) error {
	_, err := Map(ctx, chunks, opts, func(ctx context.Context, c Chunk) (struct{}, error) {
		return struct{}{}, fn(ctx, c)
	})
	return err
}
