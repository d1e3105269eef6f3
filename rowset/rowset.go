package rowset

import (
	"iter"
	"slices"
)

// RowSet is an ordered sequence of 0-based row positions.
//
// Selection results are strictly ascending; sets built by callers may use any
// order, which downstream operations preserve.
type RowSet []int

// All returns the RowSet covering [0, n).
func All(n int) RowSet {
	rs := make(RowSet, n)
	for i := range rs {
		rs[i] = i
	}
	return rs
}

// Range returns the RowSet covering [lo, hi).
func Range(lo, hi int) RowSet {
	if hi <= lo {
		return RowSet{}
	}
	rs := make(RowSet, hi-lo)
	for i := range rs {
		rs[i] = lo + i
	}
	return rs
}

// Of returns a RowSet holding ids in the given order.
func Of(ids ...int) RowSet {
	return RowSet(ids)
}

// Len returns the number of rows.
func (rs RowSet) Len() int { return len(rs) }

// IsEmpty reports whether the set has no rows.
func (rs RowSet) IsEmpty() bool { return len(rs) == 0 }

// IsAll reports whether rs is exactly [0, n) in ascending order.
func (rs RowSet) IsAll(n int) bool {
	if len(rs) != n {
		return false
	}
	for i, r := range rs {
		if r != i {
			return false
		}
	}
	return true
}

// IsSorted reports whether rs is strictly ascending.
func (rs RowSet) IsSorted() bool {
	for i := 1; i < len(rs); i++ {
		if rs[i] <= rs[i-1] {
			return false
		}
	}
	return true
}

// Contains reports whether id is in rs.
func (rs RowSet) Contains(id int) bool {
	return slices.Contains(rs, id)
}

// Rows iterates the row ids in order.
func (rs RowSet) Rows() iter.Seq[int] {
	return slices.Values(rs)
}

// Clone returns a copy.
func (rs RowSet) Clone() RowSet {
	return slices.Clone(rs)
}

// Mask converts the set into a Mask over a universe of n rows.
func (rs RowSet) Mask(n int) *Mask {
	m := NewMask(n)
	for _, r := range rs {
		m.Add(r)
	}
	return m
}
