package column

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/hupe1980/dtable/core"
)

// Slice materializes a new column holding only the given rows, in the given order.
func (c *Column) Slice(rows []int) (*Column, error) {
	if err := c.checkRows(rows); err != nil {
		return nil, err
	}
	return c.Take(rows), nil
}

// Take materializes a new column with out[k] = c[idx[k]]. A negative index
// produces a missing value. Indexes are not range-checked beyond that.
func (c *Column) Take(idx []int) *Column {
	out := &Column{name: c.name, typ: c.typ, n: len(idx)}
	if c.dict != nil {
		out.dict = c.dict.Clone()
	}
	switch c.typ {
	case Int, Timestamp:
		out.ints = make([]int64, len(idx))
		for k, r := range idx {
			if r >= 0 {
				out.ints[k] = c.ints[r]
			}
		}
	case Float:
		out.floats = make([]float64, len(idx))
		for k, r := range idx {
			if r >= 0 {
				out.floats[k] = c.floats[r]
			}
		}
	case Text:
		out.strs = make([]string, len(idx))
		for k, r := range idx {
			if r >= 0 {
				out.strs[k] = c.strs[r]
			}
		}
	case Bool:
		out.bools = make([]bool, len(idx))
		for k, r := range idx {
			if r >= 0 {
				out.bools[k] = c.bools[r]
			}
		}
	case Categorical:
		out.codes = make([]uint32, len(idx))
		for k, r := range idx {
			if r >= 0 {
				out.codes[k] = c.codes[r]
			}
		}
	}
	for k, r := range idx {
		if r < 0 || c.IsMissing(r) {
			if out.missing == nil {
				out.missing = bitset.New(uint(len(idx)))
			}
			out.missing.Set(uint(k))
		}
	}
	return out
}

// Permute reorders the column in place so that new row k holds old row perm[k].
// perm must be a permutation of [0, Len()).
func (c *Column) Permute(perm []int) error {
	if len(perm) != c.n {
		return core.NewShapeError(c.name, c.n, len(perm))
	}
	p := c.Take(perm)
	c.ints, c.floats, c.strs, c.bools, c.codes = p.ints, p.floats, p.strs, p.bools, p.codes
	c.missing = p.missing
	return nil
}
