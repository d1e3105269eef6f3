package mutate

import (
	"io"
	"log/slog"

	"github.com/hupe1980/dtable/column"
	"github.com/hupe1980/dtable/table"
)

// Options configures mutation calls.
type Options struct {
	// Mode is table.InPlace (default) to write into the caller's table and
	// return the same handle, or table.Copy to leave it untouched and return
	// a modified deep copy.
	Mode table.Mode

	// Type fixes the type of a newly created column. Required only when the
	// assigned value is a bare missing value; otherwise it is inferred.
	Type column.Type

	// Parallelism is forwarded to predicate evaluation in AssignWhere.
	Parallelism int

	// Logger receives debug records.
	Logger *slog.Logger
}

// DefaultOptions returns the default mutation options.
func DefaultOptions() Options {
	return Options{
		Mode:   table.InPlace,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
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

// WithCopy selects copy mode.
func WithCopy() func(*Options) {
	return func(o *Options) { o.Mode = table.Copy }
}

// WithType fixes the type of a newly created column.
func WithType(t column.Type) func(*Options) {
	return func(o *Options) { o.Type = t }
}
