// Package rowset provides row-id sets used to drive selection, aggregation,
// mutation and joins without copying column data.
//
// RowSet is an ordered slice of row positions. Mask is a Roaring Bitmap over a
// fixed universe, used while evaluating predicates:
//
//	m := rowset.NewMask(n)
//	m.AddRange(10, 20)
//	m.And(other)
//	rows := m.RowSet() // ascending
package rowset
