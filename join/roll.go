package join

import (
	"context"
	"math"
	"slices"
	"time"

	"github.com/hupe1980/dtable/column"
	"github.com/hupe1980/dtable/core"
	"github.com/hupe1980/dtable/internal/parallel"
	"github.com/hupe1980/dtable/resource"
	"github.com/hupe1980/dtable/rowset"
	"github.com/hupe1980/dtable/table"
)

// Direction selects which B row a rolling join takes.
type Direction uint8

const (
	// Backward takes the B row with the largest order value <= A's (last
	// observation carried forward). Among equal order values the last row wins.
	Backward Direction = iota
	// Forward takes the B row with the smallest order value >= A's. Among
	// equal order values the first row wins.
	Forward
	// Nearest takes whichever of the Backward and Forward candidates is closer,
	// preferring Backward on a tie. Needs a numeric or timestamp order column.
	Nearest
)

// String returns the string representation of the Direction.
func (d Direction) String() string {
	switch d {
	case Backward:
		return "backward"
	case Forward:
		return "forward"
	case Nearest:
		return "nearest"
	default:
		return "unknown"
	}
}

// Roll matches every row of a to at most one row of b: among B rows whose
// group columns equal A's, the one whose order value is closest in the given
// direction. The result has exactly one row per A row, in A's order: A's
// columns, then B's columns other than the group columns (B's order column
// gets the suffix, so the matched order value stays visible). A rows without
// a qualifying B row get missing B values.
//
// Each A row costs one binary search for its group run and one for the order
// value inside it. Options.RollLimit caps the accepted distance.
func Roll(ctx context.Context, a, b *table.Table, group []string, order string, dir Direction, optFns ...func(o *Options)) (*table.Table, error) {
	opts := applyOptions(optFns)
	start := time.Now()

	if order == "" {
		return nil, core.NewJoinError("", "rolling join needs an order column")
	}
	if slices.Contains(group, order) {
		return nil, core.NewJoinError(order, "order column is also a group column")
	}
	if dir > Nearest {
		return nil, core.NewJoinError(order, "unknown roll direction %d", dir)
	}
	keyCols := append(slices.Clone(group), order)
	aKey, bKey, err := resolvePair(a, b, keyCols)
	if err != nil {
		return nil, err
	}
	aGroup, aOrd, bOrd := aKey[:len(group)], aKey[len(group)], bKey[len(group)]

	limited := !math.IsInf(opts.RollLimit, 1)
	if (dir == Nearest || limited) && (!hasDistance(aOrd.Type()) || !hasDistance(bOrd.Type())) {
		return nil, core.NewJoinError(order, "%s roll needs a numeric or timestamp order column, got %s", dir, aOrd.Type())
	}

	ix, err := b.IndexOn(keyCols...)
	if err != nil {
		return nil, core.WrapJoinError("", err)
	}
	opts.Logger.Debug("join planned",
		"plan", Explain(a, b, KindRolling, keyCols...).String(),
		"direction", dir.String(),
		"left_rows", a.NumRows(),
		"right_rows", b.NumRows(),
	)

	m := matcher{
		ix:      ix,
		aGroup:  aGroup,
		aOrd:    aOrd,
		bOrd:    bOrd,
		pos:     len(group),
		dir:     dir,
		limit:   opts.RollLimit,
		limited: limited,
	}
	n := a.NumRows()
	bIdx := make([]int, n)
	progress := resource.NewProgress(opts.Logger, "rolling join", n, time.Second)
	err = parallel.For(ctx, parallel.Split(n, opts.parallel()), opts.parallel(), func(_ context.Context, c parallel.Chunk) error {
		for r := c.Lo; r < c.Hi; r++ {
			bIdx[r] = m.match(r)
		}
		progress.Add(c.Len())
		return nil
	})
	if err != nil {
		return nil, err
	}

	out, err := assemble(ctx, a, b, rowset.All(n), bIdx, group, opts)
	if err != nil {
		return nil, err
	}

	opts.Logger.Info("join completed",
		"kind", KindRolling.String(),
		"on", keyCols,
		"direction", dir.String(),
		"rows", out.NumRows(),
		"duration", time.Since(start),
	)
	return out, nil
}

type matcher struct {
	ix      *table.Index
	aGroup  []*column.Column
	aOrd    *column.Column
	bOrd    *column.Column
	pos     int // index position of the order column
	dir     Direction
	limit   float64
	limited bool
}

// match returns the B row for A row r, or -1.
func (m *matcher) match(r int) int {
	if m.aOrd.IsMissing(r) {
		return -1
	}
	lo, hi := m.ix.EqualRange(m.aGroup, r)
	lo = m.ix.FirstPresent(lo, hi, m.pos)
	if lo == hi {
		return -1
	}

	back, fwd := -1, -1
	if m.dir != Forward {
		if u := m.ix.UpperBound(lo, hi, m.pos, m.aOrd, r); u > lo {
			back = m.ix.Row(u - 1)
		}
	}
	if m.dir != Backward {
		if l := m.ix.LowerBound(lo, hi, m.pos, m.aOrd, r); l < hi {
			fwd = m.ix.Row(l)
		}
	}

	pick := back
	switch m.dir {
	case Forward:
		pick = fwd
	case Nearest:
		switch {
		case back < 0:
			pick = fwd
		case fwd >= 0 && m.distance(r, fwd) < m.distance(r, back):
			pick = fwd
		}
	}
	if pick >= 0 && m.limited && m.distance(r, pick) > m.limit {
		return -1
	}
	return pick
}

func (m *matcher) distance(r, b int) float64 {
	return math.Abs(position(m.aOrd, r) - position(m.bOrd, b))
}

func hasDistance(t column.Type) bool {
	return t.IsNumeric() || t == column.Timestamp
}

func position(c *column.Column, i int) float64 {
	if c.Type() == column.Timestamp {
		return float64(c.Ints()[i])
	}
	return c.Float(i)
}
