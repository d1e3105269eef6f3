package table

import (
	"slices"
	"sort"

	"github.com/hupe1980/dtable/column"
)

// Index is a sorted view of a table over one or more columns.
//
// When the table's active key starts with the index columns, the index is the
// physical row order and costs nothing. Otherwise it holds a stable sorted
// permutation built once (O(N log N)) without reordering the table.
type Index struct {
	names []string
	cols  []*column.Column
	perm  []int // nil means identity (physical key order)
	n     int
}

// IndexOn returns an Index over cols. It reuses the active key when the key
// starts with cols in the same order.
func (t *Table) IndexOn(cols ...string) (*Index, error) {
	resolved, err := t.Resolve(cols...)
	if err != nil {
		return nil, err
	}
	ix := &Index{names: slices.Clone(cols), cols: resolved, n: t.n}
	if !t.KeyStartsWith(cols...) {
		ix.perm = sortPermutation(resolved, t.n)
	}
	return ix, nil
}

// KeyStartsWith reports whether the active key begins with cols, in order.
func (t *Table) KeyStartsWith(cols ...string) bool {
	return len(cols) > 0 && len(cols) <= len(t.key) && slices.Equal(t.key[:len(cols)], cols)
}

// Physical reports whether the index is the table's physical key order.
func (ix *Index) Physical() bool { return ix.perm == nil }

// Names returns the index columns.
func (ix *Index) Names() []string { return slices.Clone(ix.names) }

// Len returns the number of indexed rows.
func (ix *Index) Len() int { return ix.n }

// Row maps sorted position k to its physical row.
func (ix *Index) Row(k int) int {
	if ix.perm == nil {
		return k
	}
	return ix.perm[k]
}

// EqualRange returns the sorted positions [lo, hi) whose first len(probe) index
// columns equal row `row` of the probe columns. A missing probe value matches
// nothing.
func (ix *Index) EqualRange(probe []*column.Column, row int) (lo, hi int) {
	return ix.EqualRangeWithin(0, ix.n, probe, row)
}

// EqualRangeWithin is EqualRange restricted to sorted positions [from, to).
func (ix *Index) EqualRangeWithin(from, to int, probe []*column.Column, row int) (lo, hi int) {
	for _, p := range probe {
		if p.IsMissing(row) {
			return from, from
		}
	}
	compare := func(k int) int {
		r := ix.Row(k)
		for i, p := range probe {
			if res := ix.cols[i].CompareAcross(r, p, row); res != 0 {
				return res
			}
		}
		return 0
	}
	lo = from + sort.Search(to-from, func(k int) bool { return compare(from+k) >= 0 })
	hi = lo + sort.Search(to-lo, func(k int) bool { return compare(lo+k) > 0 })
	return lo, hi
}

// LowerBound returns the first sorted position in [lo, hi) whose index column
// col is >= row `row` of probe, or hi.
func (ix *Index) LowerBound(lo, hi, col int, probe *column.Column, row int) int {
	c := ix.cols[col]
	return lo + sort.Search(hi-lo, func(k int) bool {
		return c.CompareAcross(ix.Row(lo+k), probe, row) >= 0
	})
}

// UpperBound returns the first sorted position in [lo, hi) whose index column
// col is > row `row` of probe, or hi.
func (ix *Index) UpperBound(lo, hi, col int, probe *column.Column, row int) int {
	c := ix.cols[col]
	return lo + sort.Search(hi-lo, func(k int) bool {
		return c.CompareAcross(ix.Row(lo+k), probe, row) > 0
	})
}

// FirstPresent returns the first sorted position in [lo, hi) whose index column
// col is not missing. Missing values sort first, so the rest of the run is
// present.
func (ix *Index) FirstPresent(lo, hi, col int) int {
	c := ix.cols[col]
	return lo + sort.Search(hi-lo, func(k int) bool {
		return !c.IsMissing(ix.Row(lo + k))
	})
}
