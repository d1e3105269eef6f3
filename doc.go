// Package dtable provides an in-memory columnar table engine for Go.
//
// A table is a set of equally long named columns. Tables can be keyed on an
// ordered list of columns, which physically sorts the rows and enables binary
// search lookups. On top of that the engine offers predicate selection,
// grouped aggregation, in-place column assignment, and equality and rolling
// joins.
//
// # Quick Start
//
//	ctx := context.Background()
//	eng := dtable.New(dtable.WithParallelism(4))
//
//	t := table.MustNew(
//	    column.NewText("sym", []string{"A", "B", "A"}),
//	    column.NewFloat("px", []float64{1.5, 2.0, 1.7}),
//	)
//
//	t, _ = eng.SetKey(ctx, t, "sym")
//	rows, _ := eng.Select(ctx, t, expr.Eq("sym", "A"))
//
// # Selection
//
// Predicates are expression trees built with the expr package. Comparisons
// involving a missing value are unknown, and unknown rows are never selected.
// When equality conjuncts pin a prefix of the active key, Select bisects the
// key instead of scanning:
//
//	plan := eng.Explain(t, pred)
//	fmt.Println(plan) // binary-search key=[sym=A]
//
// # Aggregation
//
// Aggregate groups rows by zero or more columns and applies reducers per
// group. Groups appear in order of first appearance:
//
//	out, _ := eng.Aggregate(ctx, t, []string{"sym"}, []agg.Spec{
//	    agg.Count(),
//	    agg.Mean("px"),
//	})
//
// Custom reducers are registered by name:
//
//	eng.Register("spread", func(c *column.Column) (column.Value, error) { ... })
//
// # Mutation
//
// Assign writes a scalar, a column or an expression result into the selected
// rows only. Writing into a key column truncates the key:
//
//	eng.AssignWhere(ctx, t, expr.Gt("px", 1.6), "flag", true)
//
// # Joins
//
// Join and OuterJoin match rows on equal values. RollJoin matches every row
// of the left table to the nearest right row in a direction on an ordered
// column, inside groups of equal columns:
//
//	out, _ := eng.RollJoin(ctx, trades, quotes, []string{"sym"}, "ts", join.Backward,
//	    join.WithRollDuration(time.Second))
//
// # Observability
//
// Engines accept a structured logger and a MetricsCollector:
//
//	metrics := &dtable.BasicMetricsCollector{}
//	eng := dtable.New(
//	    dtable.WithLogger(dtable.NewJSONLogger(slog.LevelInfo)),
//	    dtable.WithMetricsCollector(metrics),
//	)
//
// # Configuration
//
// Engine settings can be loaded from YAML:
//
//	cfg, _ := dtable.LoadConfig("dtable.yaml")
//	eng := dtable.New(dtable.WithConfig(cfg))
//
// # Concurrency
//
// Read-only operations may run concurrently on the same table. SetKey and
// in-place mutations require exclusive access. Every operation partitions
// large tables and processes the partitions in parallel, bounded by the
// engine's worker and memory limits.
package dtable
