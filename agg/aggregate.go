package agg

import (
	"context"
	"time"

	"github.com/hupe1980/dtable/column"
	"github.com/hupe1980/dtable/core"
	"github.com/hupe1980/dtable/internal/parallel"
	"github.com/hupe1980/dtable/resource"
	"github.com/hupe1980/dtable/table"
)

type boundSpec struct {
	spec Spec
	col  *column.Column // nil for a row count
	b    *builtin
	fn   Func
}

// Aggregate groups the rows of t by the by columns and applies each reducer
// spec per group. The result has one row per distinct group key tuple, the
// group columns first and one column per spec after them.
//
// Groups appear in first-seen order of their key in t's row order; when t is
// keyed on by this is key order. A table with zero rows yields a result with
// the full schema and zero rows. With no by columns all rows form one group.
//
// Builtin reducers accumulate row partitions in parallel and merge partial
// states; registered Func reducers run once per group on the calling
// goroutine. Unknown reducers and failing or inconsistent Func results return
// a ReducerError naming the group; reducers applied to a column type they do
// not accept return a TypeError before any work is done.
func Aggregate(ctx context.Context, t *table.Table, by []string, specs []Spec, optFns ...func(o *Options)) (*table.Table, error) {
	opts := applyOptions(optFns)
	start := time.Now()

	byCols, err := t.Resolve(by...)
	if err != nil {
		return nil, err
	}
	bound, err := bind(t, specs, opts.Registry)
	if err != nil {
		return nil, err
	}

	n := t.NumRows()
	scratch := int64(n) * 4 * int64(len(by)+1)
	res, err := opts.Controller.Reserve(ctx, scratch)
	if err != nil {
		return nil, err
	}
	defer res.Release()

	gr, err := group(ctx, byCols, n)
	if err != nil {
		return nil, err
	}
	opts.Logger.Debug("aggregation grouped", "rows", n, "groups", gr.n, "by", by)

	cols := make([]*column.Column, 0, len(byCols)+len(bound))
	for _, c := range byCols {
		cols = append(cols, c.Take(gr.first))
	}

	results := make([]*column.Column, len(bound))
	if err := accumulate(ctx, gr, bound, results, res, opts); err != nil {
		return nil, err
	}
	if err := runFuncs(ctx, gr, byCols, bound, results); err != nil {
		return nil, err
	}
	cols = append(cols, results...)

	out, err := table.New(cols...)
	if err != nil {
		return nil, err
	}
	if opts.KeyBy && len(by) > 0 {
		if _, err := out.SetKey(by...); err != nil {
			return nil, err
		}
	}

	opts.Logger.Info("aggregation completed",
		"rows", n,
		"groups", gr.n,
		"reducers", len(specs),
		"duration", time.Since(start),
	)
	return out, nil
}

func bind(t *table.Table, specs []Spec, reg *Registry) ([]boundSpec, error) {
	bound := make([]boundSpec, len(specs))
	for i, s := range specs {
		b, fn, ok := reg.lookup(s.Reducer)
		if !ok {
			return nil, core.NewReducerErrorf(s.Reducer, s.Column, nil, "unknown reducer")
		}
		bs := boundSpec{spec: s, b: b, fn: fn}
		if s.Column == "" {
			if b == nil || !b.rows {
				return nil, core.NewReducerErrorf(s.Reducer, "", nil, "reducer requires a column")
			}
			bound[i] = bs
			continue
		}
		c, err := t.Column(s.Column)
		if err != nil {
			return nil, err
		}
		if b != nil && !b.accepts(c.Type()) {
			return nil, core.NewTypeError(s.Column, s.Reducer, c.Type().String(), "numeric")
		}
		bs.col = c
		bound[i] = bs
	}
	return bound, nil
}

// accumulate runs the builtin reducers over row partitions and merges the
// partial states in partition order. The partial states are added to res.
func accumulate(ctx context.Context, gr *grouping, bound []boundSpec, results []*column.Column, res *resource.Reservation, opts Options) error {
	var idx []int
	for i, s := range bound {
		if s.b != nil {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return nil
	}

	n := len(gr.gids)
	popts := opts.parallel()
	chunks := parallel.Split(n, popts)
	if len(chunks) > 1 && gr.n*len(chunks) > n {
		// Per-partition states would outweigh the rows they summarize.
		popts.Parallelism = 1
		chunks = parallel.Split(n, popts)
	}

	stateBytes := int64(gr.n) * int64(len(idx)) * int64(len(chunks)) * 16
	if err := res.Grow(ctx, stateBytes); err != nil {
		return err
	}

	progress := resource.NewProgress(opts.Logger, "aggregate", n, time.Second)
	partials := make([][]accumulator, len(chunks))
	err := parallel.For(ctx, chunks, popts, func(_ context.Context, c parallel.Chunk) error {
		accs := make([]accumulator, len(idx))
		for k, i := range idx {
			accs[k] = bound[i].b.new(gr.n, bound[i].col)
			accs[k].add(gr.gids, c.Lo, c.Hi)
		}
		partials[c.Index] = accs
		progress.Add(c.Len())
		return nil
	})
	if err != nil {
		return err
	}

	merged := partials[0]
	for _, p := range partials[1:] {
		for k := range merged {
			merged[k].merge(p[k])
		}
	}

	for k, i := range idx {
		s := bound[i]
		typ := s.b.result(column.Invalid)
		if s.col != nil {
			typ = s.b.result(s.col.Type())
		}
		vals := make([]column.Value, gr.n)
		for g := range vals {
			vals[g] = merged[k].value(g)
		}
		col, err := column.FromValues(s.spec.Name(), typ, vals)
		if err != nil {
			return err
		}
		results[i] = col
	}
	return nil
}

// runFuncs applies opaque reducers to each group's slice of their column.
func runFuncs(ctx context.Context, gr *grouping, byCols []*column.Column, bound []boundSpec, results []*column.Column) error {
	var (
		offsets []int
		order   []int
	)
	for i, s := range bound {
		if s.fn == nil {
			continue
		}
		if offsets == nil {
			offsets, order = gr.partition()
		}

		vals := make([]column.Value, gr.n)
		typ := column.Invalid
		for g := 0; g < gr.n; g++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			v, err := s.fn(s.col.Take(order[offsets[g]:offsets[g+1]]))
			if err != nil {
				return core.NewReducerError(s.spec.Reducer, s.spec.Column, groupKey(byCols, gr.first[g]), err)
			}
			if !v.IsValid() {
				return core.NewReducerErrorf(s.spec.Reducer, s.spec.Column, groupKey(byCols, gr.first[g]), "reducer returned an invalid value")
			}
			if typ == column.Invalid && !v.IsNull() {
				typ = column.TypeOf(v.Kind)
			}
			if typ != column.Invalid && !typ.Accepts(v.Kind) {
				return core.NewReducerErrorf(s.spec.Reducer, s.spec.Column, groupKey(byCols, gr.first[g]),
					"reducer returned %s, earlier groups returned %s", v.Kind, typ)
			}
			vals[g] = v
		}
		if typ == column.Invalid {
			typ = column.Float
		}
		col, err := column.FromValues(s.spec.Name(), typ, vals)
		if err != nil {
			return err
		}
		results[i] = col
	}
	return nil
}

func groupKey(byCols []*column.Column, row int) []string {
	key := make([]string, len(byCols))
	for i, c := range byCols {
		key[i] = c.Get(row).String()
	}
	return key
}
