package dtable

import (
	"log/slog"

	"github.com/hupe1980/dtable/agg"
	"github.com/hupe1980/dtable/join"
)

type options struct {
	parallelism      int
	minParallelRows  int
	memoryLimitBytes int64
	maxWorkers       int64
	registry         *agg.Registry
	joinSuffix       string
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures an Engine.
type Option func(*options)

// WithParallelism caps the number of row partitions each operation processes
// concurrently. 1 makes every operation single-threaded; 0 uses GOMAXPROCS.
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = n
	}
}

// WithMinParallelRows sets the smallest row partition handed to its own worker.
// Tables smaller than this are processed on the calling goroutine.
func WithMinParallelRows(n int) Option {
	return func(o *options) {
		o.minParallelRows = n
	}
}

// WithMemoryLimit bounds the scratch memory (group ids, partial reducer states,
// join match lists) reserved by concurrent operations. Operations block until
// memory is available or their context ends. 0 means no limit.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimitBytes = bytes
	}
}

// WithMaxWorkers bounds the worker goroutines shared by all operations of the
// engine. 0 uses GOMAXPROCS.
func WithMaxWorkers(n int64) Option {
	return func(o *options) {
		o.maxWorkers = n
	}
}

// WithRegistry sets the reducer registry used by Aggregate.
// If nil is passed, a fresh registry with the builtin reducers is used.
func WithRegistry(r *agg.Registry) Option {
	return func(o *options) {
		if r == nil {
			r = agg.NewRegistry()
		}
		o.registry = r
	}
}

// WithJoinSuffix sets the suffix appended to right-table column names that
// collide with left-table names.
func WithJoinSuffix(s string) Option {
	return func(o *options) {
		o.joinSuffix = s
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &dtable.BasicMetricsCollector{}
//	eng := dtable.New(dtable.WithMetricsCollector(metrics))
//	// ... use eng ...
//	stats := metrics.GetStats()
//	fmt.Printf("Joins: %d, Avg latency: %dns\n", stats.JoinCount, stats.JoinAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := dtable.NewJSONLogger(slog.LevelDebug)
//	eng := dtable.New(dtable.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithConfig applies every field set in cfg. A log_level creates a text
// logger at that level.
func WithConfig(cfg *Config) Option {
	return func(o *options) {
		if cfg == nil {
			return
		}
		if cfg.Parallelism > 0 {
			o.parallelism = cfg.Parallelism
		}
		if cfg.MinParallelRows > 0 {
			o.minParallelRows = cfg.MinParallelRows
		}
		if cfg.MemoryLimitBytes > 0 {
			o.memoryLimitBytes = cfg.MemoryLimitBytes
		}
		if cfg.MaxWorkers > 0 {
			o.maxWorkers = cfg.MaxWorkers
		}
		if cfg.JoinSuffix != "" {
			o.joinSuffix = cfg.JoinSuffix
		}
		if cfg.LogLevel != "" {
			if level, err := cfg.level(); err == nil {
				o.logger = NewTextLogger(level)
			}
		}
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		joinSuffix:       join.DefaultSuffix,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.registry == nil {
		o.registry = agg.NewRegistry()
	}
	return o
}
