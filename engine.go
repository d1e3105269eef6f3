package dtable

import (
	"context"
	"time"

	"github.com/hupe1980/dtable/agg"
	"github.com/hupe1980/dtable/column"
	"github.com/hupe1980/dtable/expr"
	"github.com/hupe1980/dtable/join"
	"github.com/hupe1980/dtable/mutate"
	"github.com/hupe1980/dtable/resource"
	"github.com/hupe1980/dtable/rowset"
	"github.com/hupe1980/dtable/selection"
	"github.com/hupe1980/dtable/table"
)

// Engine runs table operations with a shared configuration: one resource
// controller bounding memory and workers, one reducer registry, one logger and
// one metrics collector.
//
// Engine holds no table state. Tables passed to it follow the ownership rules
// of the underlying packages: read-only operations may run concurrently on the
// same table, while SetKey and in-place mutations need exclusive access.
type Engine struct {
	opts options
	ctl  *resource.Controller
}

// New creates an Engine.
//
// Example:
//
//	eng := dtable.New(
//	    dtable.WithParallelism(4),
//	    dtable.WithMemoryLimit(512<<20),
//	    dtable.WithLogLevel(slog.LevelInfo),
//	)
func New(optFns ...Option) *Engine {
	o := applyOptions(optFns)
	return &Engine{
		opts: o,
		ctl: resource.NewController(resource.Config{
			MemoryLimitBytes: o.memoryLimitBytes,
			MaxWorkers:       o.maxWorkers,
		}),
	}
}

// Controller returns the engine's resource controller.
func (e *Engine) Controller() *resource.Controller { return e.ctl }

// Registry returns the reducer registry used by Aggregate.
func (e *Engine) Registry() *agg.Registry { return e.opts.registry }

// Logger returns the engine's logger.
func (e *Engine) Logger() *Logger { return e.opts.logger }

// Register adds a user reducer to the engine's registry.
func (e *Engine) Register(name string, fn agg.Func) error {
	return e.opts.registry.Register(name, fn)
}

// SetKey physically reorders t by cols and records them as its key.
func (e *Engine) SetKey(ctx context.Context, t *table.Table, cols ...string) (*table.Table, error) {
	start := time.Now()
	out, err := t.SetKey(cols...)
	d := time.Since(start)
	e.opts.metricsCollector.RecordSetKey(t.NumRows(), d, err)
	e.opts.logger.LogSetKey(ctx, cols, t.NumRows(), d, err)
	return out, err
}

// Lookup returns the rows whose key prefix equals tuple.
func (e *Engine) Lookup(ctx context.Context, t *table.Table, tuple ...column.Value) (rowset.RowSet, error) {
	start := time.Now()
	rows, err := t.Lookup(tuple...)
	d := time.Since(start)
	e.opts.metricsCollector.RecordSelect(rows.Len(), d, err)
	e.opts.logger.LogSelect(ctx, table.PathBinarySearch.String(), rows.Len(), d, err)
	return rows, err
}

// Explain reports how Select would evaluate pred on t.
func (e *Engine) Explain(t *table.Table, pred expr.Node) selection.Plan {
	return selection.Explain(t, pred)
}

// Select returns the ascending rows of t where pred is true.
func (e *Engine) Select(ctx context.Context, t *table.Table, pred expr.Node, optFns ...func(*selection.Options)) (rowset.RowSet, error) {
	start := time.Now()
	rows, err := selection.Evaluate(ctx, t, pred, e.selectionOptions(optFns)...)
	d := time.Since(start)
	e.opts.metricsCollector.RecordSelect(rows.Len(), d, err)
	e.opts.logger.LogSelect(ctx, pathOf(t, pred), rows.Len(), d, err)
	return rows, err
}

// Where returns a new table holding cols (every column if empty) of the rows
// where pred is true.
func (e *Engine) Where(ctx context.Context, t *table.Table, pred expr.Node, cols ...string) (*table.Table, error) {
	start := time.Now()
	out, err := selection.Where(ctx, t, pred, cols, e.selectionOptions(nil)...)
	d := time.Since(start)
	n := 0
	if out != nil {
		n = out.NumRows()
	}
	e.opts.metricsCollector.RecordSelect(n, d, err)
	e.opts.logger.LogSelect(ctx, pathOf(t, pred), n, d, err)
	return out, err
}

// Aggregate groups t by the by columns and evaluates specs per group.
func (e *Engine) Aggregate(ctx context.Context, t *table.Table, by []string, specs []agg.Spec, optFns ...func(*agg.Options)) (*table.Table, error) {
	start := time.Now()
	base := func(o *agg.Options) {
		o.Registry = e.opts.registry
		o.Parallelism = e.opts.parallelism
		if e.opts.minParallelRows > 0 {
			o.MinParallelRows = e.opts.minParallelRows
		}
		o.Controller = e.ctl
		o.Logger = e.opts.logger.Logger
	}
	out, err := agg.Aggregate(ctx, t, by, specs, append([]func(*agg.Options){base}, optFns...)...)
	d := time.Since(start)
	groups := 0
	if out != nil {
		groups = out.NumRows()
	}
	e.opts.metricsCollector.RecordAggregate(groups, d, err)
	e.opts.logger.LogAggregate(ctx, by, groups, d, err)
	return out, err
}

// Assign writes src into column name at rows of t. See mutate.Assign.
func (e *Engine) Assign(ctx context.Context, t *table.Table, rows rowset.RowSet, name string, src any, optFns ...func(*mutate.Options)) (*table.Table, error) {
	start := time.Now()
	out, err := mutate.Assign(t, rows, name, src, e.mutateOptions(optFns)...)
	n := rows.Len()
	if rows == nil {
		n = t.NumRows()
	}
	e.opts.metricsCollector.RecordMutation(n, time.Since(start), err)
	e.opts.logger.LogMutation(ctx, name, n, err)
	return out, err
}

// AssignWhere is Assign over the rows where pred is true.
func (e *Engine) AssignWhere(ctx context.Context, t *table.Table, pred expr.Node, name string, src any, optFns ...func(*mutate.Options)) (*table.Table, error) {
	start := time.Now()
	rows, err := selection.Evaluate(ctx, t, pred, e.selectionOptions(nil)...)
	if err != nil {
		e.opts.metricsCollector.RecordMutation(0, time.Since(start), err)
		e.opts.logger.LogMutation(ctx, name, 0, err)
		return nil, err
	}
	out, err := mutate.Assign(t, rows, name, src, e.mutateOptions(optFns)...)
	e.opts.metricsCollector.RecordMutation(rows.Len(), time.Since(start), err)
	e.opts.logger.LogMutation(ctx, name, rows.Len(), err)
	return out, err
}

// Drop removes the named columns from t.
func (e *Engine) Drop(ctx context.Context, t *table.Table, names []string, optFns ...func(*mutate.Options)) (*table.Table, error) {
	start := time.Now()
	out, err := mutate.Drop(t, names, e.mutateOptions(optFns)...)
	e.opts.metricsCollector.RecordMutation(t.NumRows(), time.Since(start), err)
	for _, name := range names {
		e.opts.logger.LogMutation(ctx, name, t.NumRows(), err)
	}
	return out, err
}

// Join is an inner equality join of a and b on the named columns.
func (e *Engine) Join(ctx context.Context, a, b *table.Table, on []string, optFns ...func(*join.Options)) (*table.Table, error) {
	return e.runJoin(ctx, join.KindInner, on, func(opts []func(*join.Options)) (*table.Table, error) {
		return join.Inner(ctx, a, b, on, opts...)
	}, optFns)
}

// OuterJoin is a left outer equality join: every row of a appears at least once.
func (e *Engine) OuterJoin(ctx context.Context, a, b *table.Table, on []string, optFns ...func(*join.Options)) (*table.Table, error) {
	return e.runJoin(ctx, join.KindOuter, on, func(opts []func(*join.Options)) (*table.Table, error) {
		return join.Outer(ctx, a, b, on, opts...)
	}, optFns)
}

// RollJoin matches every row of a to the b row with equal group columns and
// the nearest order value in direction dir.
func (e *Engine) RollJoin(ctx context.Context, a, b *table.Table, group []string, order string, dir join.Direction, optFns ...func(*join.Options)) (*table.Table, error) {
	on := append(append([]string(nil), group...), order)
	return e.runJoin(ctx, join.KindRolling, on, func(opts []func(*join.Options)) (*table.Table, error) {
		return join.Roll(ctx, a, b, group, order, dir, opts...)
	}, optFns)
}

// ExplainJoin reports which tables are keyed on the join columns.
func (e *Engine) ExplainJoin(a, b *table.Table, kind join.Kind, on ...string) join.Plan {
	return join.Explain(a, b, kind, on...)
}

func (e *Engine) runJoin(ctx context.Context, kind join.Kind, on []string, run func([]func(*join.Options)) (*table.Table, error), optFns []func(*join.Options)) (*table.Table, error) {
	start := time.Now()
	base := func(o *join.Options) {
		o.Suffix = e.opts.joinSuffix
		o.Parallelism = e.opts.parallelism
		if e.opts.minParallelRows > 0 {
			o.MinParallelRows = e.opts.minParallelRows
		}
		o.Controller = e.ctl
		o.Logger = e.opts.logger.Logger
	}
	out, err := run(append([]func(*join.Options){base}, optFns...))
	d := time.Since(start)
	rows := 0
	if out != nil {
		rows = out.NumRows()
	}
	e.opts.metricsCollector.RecordJoin(rows, d, err)
	e.opts.logger.LogJoin(ctx, kind.String(), on, rows, d, err)
	return out, err
}

func (e *Engine) selectionOptions(optFns []func(*selection.Options)) []func(*selection.Options) {
	base := func(o *selection.Options) {
		o.Parallelism = e.opts.parallelism
		if e.opts.minParallelRows > 0 {
			o.MinParallelRows = e.opts.minParallelRows
		}
		o.Controller = e.ctl
		o.Logger = e.opts.logger.Logger
	}
	return append([]func(*selection.Options){base}, optFns...)
}

func (e *Engine) mutateOptions(optFns []func(*mutate.Options)) []func(*mutate.Options) {
	base := func(o *mutate.Options) {
		o.Parallelism = e.opts.parallelism
		o.Logger = e.opts.logger.Logger
	}
	return append([]func(*mutate.Options){base}, optFns...)
}

func pathOf(t *table.Table, pred expr.Node) string {
	return selection.Explain(t, pred).Path.String()
}
