package join

import (
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/hupe1980/dtable/internal/parallel"
	"github.com/hupe1980/dtable/resource"
)

// DefaultSuffix is appended to B column names that collide with A's.
const DefaultSuffix = "_right"

// Options configures joins.
type Options struct {
	// Suffix is appended to B column names already present in the output.
	Suffix string

	// RollLimit is the largest distance between A's and B's order values a
	// rolling join accepts, in the order column's units (nanoseconds for
	// timestamps). +Inf means unlimited.
	RollLimit float64

	// Parallelism caps the number of A partitions probed concurrently.
	// If <= 0, GOMAXPROCS is used.
	Parallelism int

	// MinParallelRows is the smallest A partition handed to its own worker.
	MinParallelRows int

	// Controller reserves memory for match lists and bounds worker slots.
	Controller *resource.Controller

	// Logger receives debug and info records.
	Logger *slog.Logger
}

// DefaultOptions returns the default join options.
func DefaultOptions() Options {
	return Options{
		Suffix:          DefaultSuffix,
		RollLimit:       math.Inf(1),
		MinParallelRows: parallel.DefaultMinRows,
		Logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func applyOptions(optFns []func(*Options)) Options {
	opts := DefaultOptions()
	for _, fn := range optFns {
		if fn != nil {
			fn(&opts)
		}
	}
	if opts.Suffix == "" {
		opts.Suffix = DefaultSuffix
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return opts
}

// WithSuffix sets the suffix for colliding B column names.
func WithSuffix(s string) func(*Options) {
	return func(o *Options) { o.Suffix = s }
}

// WithRollLimit bounds the distance of a rolling match.
func WithRollLimit(limit float64) func(*Options) {
	return func(o *Options) { o.RollLimit = limit }
}

// WithRollDuration bounds the distance of a rolling match on a timestamp
// order column.
func WithRollDuration(d time.Duration) func(*Options) {
	return func(o *Options) { o.RollLimit = float64(d.Nanoseconds()) }
}

func (o Options) parallel() parallel.Options {
	return parallel.Options{
		Parallelism: o.Parallelism,
		MinRows:     o.MinParallelRows,
		Controller:  o.Controller,
	}
}
