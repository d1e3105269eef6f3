package selection

import (
	"context"
	"time"

	"github.com/hupe1980/dtable/expr"
	"github.com/hupe1980/dtable/internal/parallel"
	"github.com/hupe1980/dtable/rowset"
	"github.com/hupe1980/dtable/table"
)

// Evaluate returns the ascending row ids of t where pred is true.
//
// When the active key has a prefix pinned by equality conjuncts the candidate
// rows come from a binary search and only the residual conjuncts are
// evaluated over them. Otherwise the predicate is evaluated column-wise over
// row partitions in parallel and the partial masks are merged. Both paths
// return the same rows.
//
// Missing values make comparisons unknown; unknown rows are not selected.
// An empty result is an empty RowSet, not an error.
func Evaluate(ctx context.Context, t *table.Table, pred expr.Node, optFns ...func(o *Options)) (rowset.RowSet, error) {
	opts := applyOptions(optFns)
	if err := expr.BindPredicate(t, pred); err != nil {
		return nil, err
	}

	start := time.Now()
	plan := Explain(t, pred)

	lo, hi := 0, t.NumRows()
	if plan.Path == table.PathBinarySearch {
		run, err := t.Lookup(plan.Tuple...)
		if err != nil {
			return nil, err
		}
		if run.IsEmpty() {
			lo, hi = 0, 0
		} else {
			lo, hi = run[0], run[len(run)-1]+1
		}
	}
	opts.Logger.Debug("selection planned",
		"path", plan.Path.String(),
		"key", plan.KeyColumns,
		"candidates", hi-lo,
	)

	var rows rowset.RowSet
	switch {
	case hi <= lo:
		rows = rowset.RowSet{}
	case plan.Residual == nil:
		rows = rowset.Range(lo, hi)
	default:
		var err error
		rows, err = scan(ctx, t, plan.Residual, lo, hi, opts)
		if err != nil {
			return nil, err
		}
	}

	opts.Logger.Debug("selection completed",
		"path", plan.Path.String(),
		"rows", len(rows),
		"duration", time.Since(start),
	)
	return rows, nil
}

// Mask is Evaluate returning the selected rows as a bitmap.
func Mask(ctx context.Context, t *table.Table, pred expr.Node, optFns ...func(o *Options)) (*rowset.Mask, error) {
	rows, err := Evaluate(ctx, t, pred, optFns...)
	if err != nil {
		return nil, err
	}
	return rows.Mask(t.NumRows()), nil
}

// Where is Evaluate followed by materializing the selected rows and the given
// columns (all columns when none are named) into a new table.
func Where(ctx context.Context, t *table.Table, pred expr.Node, cols []string, optFns ...func(o *Options)) (*table.Table, error) {
	rows, err := Evaluate(ctx, t, pred, optFns...)
	if err != nil {
		return nil, err
	}
	return t.Select(rows, cols...)
}

func scan(ctx context.Context, t *table.Table, pred expr.Node, lo, hi int, opts Options) (rowset.RowSet, error) {
	chunks := parallel.Split(hi-lo, opts.parallel())
	for i := range chunks {
		chunks[i].Lo += lo
		chunks[i].Hi += lo
	}
	if len(chunks) > 1 {
		opts.Logger.Debug("selection fan-out", "partitions", len(chunks), "rows", hi-lo)
	}

	masks, err := parallel.Map(ctx, chunks, opts.parallel(), func(_ context.Context, c parallel.Chunk) (*rowset.Mask, error) {
		return expr.EvalRange(t, pred, c.Lo, c.Hi)
	})
	if err != nil {
		return nil, err
	}
	return rowset.Union(t.NumRows(), masks...).RowSet(), nil
}
