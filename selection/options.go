package selection

import (
	"io"
	"log/slog"

	"github.com/hupe1980/dtable/internal/parallel"
	"github.com/hupe1980/dtable/resource"
)

// Options configures predicate evaluation.
type Options struct {
	// Parallelism caps the number of row partitions scanned concurrently.
	// If <= 0, GOMAXPROCS is used. 1 forces a single-threaded scan.
	Parallelism int

	// MinParallelRows is the smallest partition handed to its own worker.
	MinParallelRows int

	// Controller bounds worker slots shared with other operations. Optional.
	Controller *resource.Controller

	// Logger receives debug records about the chosen access path.
	Logger *slog.Logger
}

// DefaultOptions returns the default selection options.
func DefaultOptions() Options {
	return Options{
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
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return opts
}

func (o Options) parallel() parallel.Options {
	return parallel.Options{
		Parallelism: o.Parallelism,
		MinRows:     o.MinParallelRows,
		Controller:  o.Controller,
	}
}
