package agg

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/dtable/column"
	"github.com/hupe1980/dtable/rowset"
	"github.com/hupe1980/dtable/table"
)

// grouping assigns every row a dense group id. Ids follow the first-seen order
// of the group key tuple in row order.
type grouping struct {
	gids  []int32 // per row
	first []int   // first row of each group
	n     int     // number of groups
}

// Grouping is the key-tuple -> RowSet partition of a table.
type Grouping struct {
	// Keys holds one row per group with the group columns, in first-seen order.
	Keys *table.Table
	// Rows holds the ascending row ids of each group, aligned with Keys.
	Rows []rowset.RowSet
}

// Len returns the number of groups.
func (g *Grouping) Len() int { return len(g.Rows) }

// Groups partitions the rows of t by the values of the by columns. Every row
// belongs to exactly one group; missing values form their own group.
func Groups(t *table.Table, by ...string) (*Grouping, error) {
	cols, err := t.Resolve(by...)
	if err != nil {
		return nil, err
	}
	gr, err := group(context.Background(), cols, t.NumRows())
	if err != nil {
		return nil, err
	}
	keys, err := keyTable(cols, gr.first)
	if err != nil {
		return nil, err
	}
	offsets, order := gr.partition()
	rows := make([]rowset.RowSet, gr.n)
	for g := range rows {
		rows[g] = rowset.RowSet(order[offsets[g]:offsets[g+1]])
	}
	return &Grouping{Keys: keys, Rows: rows}, nil
}

func keyTable(cols []*column.Column, first []int) (*table.Table, error) {
	out := make([]*column.Column, len(cols))
	for i, c := range cols {
		out[i] = c.Take(first)
	}
	return table.New(out...)
}

func group(ctx context.Context, cols []*column.Column, n int) (*grouping, error) {
	if len(cols) == 0 {
		gr := &grouping{gids: make([]int32, n)}
		if n > 0 {
			gr.first, gr.n = []int{0}, 1
		}
		return gr, nil
	}

	codes := make([][]int32, len(cols))
	firsts := make([][]int, len(cols))
	g, _ := errgroup.WithContext(ctx)
	for i, c := range cols {
		g.Go(func() error {
			codes[i], firsts[i] = encode(c)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	gr := &grouping{gids: codes[0], first: firsts[0], n: len(firsts[0])}
	for i := 1; i < len(cols); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		gr = combine(gr, codes[i], len(firsts[i]))
	}
	return gr, nil
}

// combine refines a grouping by one more column's codes, assigning new ids in
// row order so first-seen order is kept.
func combine(gr *grouping, codes []int32, ncodes int) *grouping {
	out := &grouping{gids: make([]int32, len(codes))}
	if dense := gr.n * ncodes; dense <= 1<<22 {
		ids := make([]int32, dense)
		for k := range ids {
			ids[k] = -1
		}
		for r, code := range codes {
			k := int(gr.gids[r])*ncodes + int(code)
			id := ids[k]
			if id < 0 {
				id = int32(len(out.first))
				ids[k] = id
				out.first = append(out.first, r)
			}
			out.gids[r] = id
		}
	} else {
		ids := make(map[int64]int32)
		for r, code := range codes {
			k := int64(gr.gids[r])<<32 | int64(code)
			id, ok := ids[k]
			if !ok {
				id = int32(len(out.first))
				ids[k] = id
				out.first = append(out.first, r)
			}
			out.gids[r] = id
		}
	}
	out.n = len(out.first)
	return out
}

// encode gives each distinct value of c a dense code in first-seen order.
// Missing rows share one code. It also returns the first row of each code.
func encode(c *column.Column) ([]int32, []int) {
	n := c.Len()
	codes := make([]int32, n)
	var first []int
	missing := int32(-1)

	assign := func(r int, id int32, seen bool) int32 {
		if !seen {
			id = int32(len(first))
			first = append(first, r)
		}
		codes[r] = id
		return id
	}
	isMissing := func(r int) bool {
		if !c.IsMissing(r) {
			return false
		}
		missing = assign(r, missing, missing >= 0)
		return true
	}

	switch c.Type() {
	case column.Int, column.Timestamp:
		vals := c.Ints()
		ids := make(map[int64]int32)
		for r := 0; r < n; r++ {
			if isMissing(r) {
				continue
			}
			id, ok := ids[vals[r]]
			ids[vals[r]] = assign(r, id, ok)
		}
	case column.Float:
		vals := c.Floats()
		ids := make(map[uint64]int32)
		for r := 0; r < n; r++ {
			if isMissing(r) {
				continue
			}
			k := floatKey(vals[r])
			id, ok := ids[k]
			ids[k] = assign(r, id, ok)
		}
	case column.Categorical:
		ids := make([]int32, c.Dictionary().Len())
		for k := range ids {
			ids[k] = -1
		}
		vals := c.Codes()
		for r := 0; r < n; r++ {
			if isMissing(r) {
				continue
			}
			id := ids[vals[r]]
			ids[vals[r]] = assign(r, id, id >= 0)
		}
	case column.Bool:
		ids := [2]int32{-1, -1}
		vals := c.Bools()
		for r := 0; r < n; r++ {
			if isMissing(r) {
				continue
			}
			k := 0
			if vals[r] {
				k = 1
			}
			ids[k] = assign(r, ids[k], ids[k] >= 0)
		}
	default:
		ids := make(map[string]int32)
		vals := c.Texts()
		for r := 0; r < n; r++ {
			if isMissing(r) {
				continue
			}
			id, ok := ids[vals[r]]
			ids[vals[r]] = assign(r, id, ok)
		}
	}
	return codes, first
}

// floatKey maps equal floats to one key: +0 and -0 collapse, as do all NaNs.
func floatKey(f float64) uint64 {
	switch {
	case f == 0:
		return 0
	case math.IsNaN(f):
		return math.Float64bits(math.NaN())
	default:
		return math.Float64bits(f)
	}
}

// partition returns CSR offsets and the row ids ordered by group, ascending
// within each group.
func (gr *grouping) partition() ([]int, []int) {
	offsets := make([]int, gr.n+1)
	for _, g := range gr.gids {
		offsets[g+1]++
	}
	for g := 1; g <= gr.n; g++ {
		offsets[g] += offsets[g-1]
	}
	cursor := make([]int, gr.n)
	copy(cursor, offsets[:gr.n])
	order := make([]int, len(gr.gids))
	for r, g := range gr.gids {
		order[cursor[g]] = r
		cursor[g]++
	}
	return offsets, order
}
