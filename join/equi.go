package join

import (
	"context"
	"time"

	"github.com/hupe1980/dtable/core"
	"github.com/hupe1980/dtable/internal/parallel"
	"github.com/hupe1980/dtable/resource"
	"github.com/hupe1980/dtable/table"
)

// Inner joins a and b on equality of the on columns. The result holds one row
// per (A row, matching B row) pair: A's columns, then B's columns other than
// on. Rows of A without a match are dropped; several matches in B expand the
// A row once per match. Rows follow A's row order, then B's key order.
//
// B is probed by binary search over its active key when the key starts with
// on, or over a transient sorted index otherwise; B is never reordered.
// Missing join values never match.
func Inner(ctx context.Context, a, b *table.Table, on []string, optFns ...func(o *Options)) (*table.Table, error) {
	return equi(ctx, a, b, on, KindInner, optFns)
}

// Outer is Inner that keeps A rows without a match, with missing values in
// B's columns.
func Outer(ctx context.Context, a, b *table.Table, on []string, optFns ...func(o *Options)) (*table.Table, error) {
	return equi(ctx, a, b, on, KindOuter, optFns)
}

type pairs struct {
	a, b []int
}

func equi(ctx context.Context, a, b *table.Table, on []string, kind Kind, optFns []func(*Options)) (*table.Table, error) {
	opts := applyOptions(optFns)
	start := time.Now()

	if len(on) == 0 {
		return nil, core.NewJoinError("", "no join columns given")
	}
	aOn, _, err := resolvePair(a, b, on)
	if err != nil {
		return nil, err
	}
	ix, err := b.IndexOn(on...)
	if err != nil {
		return nil, core.WrapJoinError("", err)
	}

	plan := Explain(a, b, kind, on...)
	opts.Logger.Debug("join planned",
		"plan", plan.String(),
		"left_rows", a.NumRows(),
		"right_rows", b.NumRows(),
	)

	progress := resource.NewProgress(opts.Logger, kind.String()+" join", a.NumRows(), time.Second)
	chunks := parallel.Split(a.NumRows(), opts.parallel())
	parts, err := parallel.Map(ctx, chunks, opts.parallel(), func(_ context.Context, c parallel.Chunk) (pairs, error) {
		p := pairs{a: make([]int, 0, c.Len()), b: make([]int, 0, c.Len())}
		for r := c.Lo; r < c.Hi; r++ {
			lo, hi := ix.EqualRange(aOn, r)
			if lo == hi {
				if kind == KindOuter {
					p.a = append(p.a, r)
					p.b = append(p.b, -1)
				}
				continue
			}
			for k := lo; k < hi; k++ {
				p.a = append(p.a, r)
				p.b = append(p.b, ix.Row(k))
			}
		}
		progress.Add(c.Len())
		return p, nil
	})
	if err != nil {
		return nil, err
	}

	total := 0
	for _, p := range parts {
		total += len(p.a)
	}
	aIdx := make([]int, 0, total)
	bIdx := make([]int, 0, total)
	for _, p := range parts {
		aIdx = append(aIdx, p.a...)
		bIdx = append(bIdx, p.b...)
	}

	out, err := assemble(ctx, a, b, aIdx, bIdx, on, opts)
	if err != nil {
		return nil, err
	}

	opts.Logger.Info("join completed",
		"kind", kind.String(),
		"on", on,
		"rows", out.NumRows(),
		"duration", time.Since(start),
	)
	return out, nil
}
