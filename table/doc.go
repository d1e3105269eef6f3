// Package table implements the Table and its Index (Key) Manager.
//
// # Tables
//
// A Table is an ordered set of equal-length columns:
//
//	t, err := table.New(
//	    column.NewCategorical("asset", []string{"X", "Y", "X"}),
//	    column.NewInt("t", []int64{100, 90, 95}),
//	)
//
// # Keys
//
// SetKey physically reorders rows by the named columns (stable, missing first)
// and records the key. Lookup then bisects the key in O(log N + m):
//
//	t.SetKey("asset", "t")
//	rows, _ := t.Lookup(column.StringValue("X"))
//
// Keying costs O(N log N) and is never repeated implicitly. AccessPath reports
// whether an equality lookup will bisect or scan, and LookupOn picks the path
// automatically. IndexOn builds a sorted permutation without reordering when
// the key does not fit, which joins use for unkeyed right-hand tables.
//
// # Mutability
//
// A Table owns its columns. In-place calls return the same handle; Keyed,
// Clone and the Copy mode return independent deep copies.
package table
