package agg

import (
	"io"
	"log/slog"

	"github.com/hupe1980/dtable/internal/parallel"
	"github.com/hupe1980/dtable/resource"
)

// Options configures Aggregate.
type Options struct {
	// Registry resolves reducer names. If nil, DefaultRegistry is used.
	Registry *Registry

	// KeyBy sets the key of the result on the group columns.
	KeyBy bool

	// Parallelism caps the number of row partitions accumulated concurrently.
	// If <= 0, GOMAXPROCS is used.
	Parallelism int

	// MinParallelRows is the smallest partition handed to its own worker.
	MinParallelRows int

	// Controller reserves scratch memory and worker slots. Optional.
	Controller *resource.Controller

	// Logger receives debug and info records.
	Logger *slog.Logger
}

// DefaultOptions returns the default aggregation options.
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
	if opts.Registry == nil {
		opts.Registry = DefaultRegistry()
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
