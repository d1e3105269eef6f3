package rowset

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"
)

// Mask is a set of row ids over a fixed universe [0, n).
// It wraps a 32-bit Roaring Bitmap so that AND/OR/NOT on tens of millions of
// rows stay cheap for both sparse and dense results.
type Mask struct {
	rb *roaring.Bitmap
	n  int
}

// NewMask creates an empty mask over [0, n).
func NewMask(n int) *Mask {
	return &Mask{rb: roaring.New(), n: n}
}

// FullMask creates a mask containing every row of [0, n).
func FullMask(n int) *Mask {
	m := NewMask(n)
	m.AddRange(0, n)
	return m
}

// Universe returns n.
func (m *Mask) Universe() int { return m.n }

// Add adds row id.
func (m *Mask) Add(id int) {
	m.rb.Add(uint32(id))
}

// AddMany adds a batch of row ids.
func (m *Mask) AddMany(ids []uint32) {
	m.rb.AddMany(ids)
}

// AddRange adds every row in [lo, hi).
func (m *Mask) AddRange(lo, hi int) {
	if hi <= lo {
		return
	}
	m.rb.AddRange(uint64(lo), uint64(hi))
}

// Contains reports whether row id is set.
func (m *Mask) Contains(id int) bool {
	return m.rb.Contains(uint32(id))
}

// IsEmpty returns true if the mask is empty.
func (m *Mask) IsEmpty() bool {
	return m.rb.IsEmpty()
}

// Cardinality returns the number of set rows.
func (m *Mask) Cardinality() int {
	return int(m.rb.GetCardinality())
}

// Clone returns a deep copy of the mask.
func (m *Mask) Clone() *Mask {
	return &Mask{rb: m.rb.Clone(), n: m.n}
}

// And intersects m with other in place.
func (m *Mask) And(other *Mask) {
	m.rb.And(other.rb)
}

// Or unions other into m in place.
func (m *Mask) Or(other *Mask) {
	m.rb.Or(other.rb)
}

// AndNot removes every row of other from m in place.
func (m *Mask) AndNot(other *Mask) {
	m.rb.AndNot(other.rb)
}

// Flip complements m within its universe, in place.
func (m *Mask) Flip() {
	m.rb.Flip(0, uint64(m.n))
}

// Rows iterates set rows in ascending order.
func (m *Mask) Rows() iter.Seq[int] {
	return func(yield func(int) bool) {
		it := m.rb.Iterator()
		for it.HasNext() {
			if !yield(int(it.Next())) {
				return
			}
		}
	}
}

// RowSet converts the mask into an ascending RowSet.
func (m *Mask) RowSet() RowSet {
	ids := m.rb.ToArray()
	rs := make(RowSet, len(ids))
	for i, id := range ids {
		rs[i] = int(id)
	}
	return rs
}

// Union returns the union of masks sharing one universe.
// Used to merge partial masks produced by parallel workers.
func Union(n int, masks ...*Mask) *Mask {
	rbs := make([]*roaring.Bitmap, 0, len(masks))
	for _, m := range masks {
		if m != nil {
			rbs = append(rbs, m.rb)
		}
	}
	if len(rbs) == 0 {
		return NewMask(n)
	}
	return &Mask{rb: roaring.FastOr(rbs...), n: n}
}

// GetSizeInBytes returns the size of the mask in bytes.
func (m *Mask) GetSizeInBytes() uint64 {
	return m.rb.GetSizeInBytes()
}
