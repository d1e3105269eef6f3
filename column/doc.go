// Package column implements the column store: typed, contiguous storage for one
// attribute across all rows of a table.
//
// # Types
//
//   - Int: []int64
//   - Float: []float64
//   - Text: []string
//   - Bool: []bool
//   - Timestamp: []int64 Unix nanoseconds
//   - Categorical: []uint32 codes into a Dictionary
//
// Example:
//
//	price := column.NewFloat("price", []float64{10.5, 11, 9.75})
//	sym := column.NewCategorical("sym", []string{"A", "B", "A"})
//	v := price.Get(1) // column.FloatValue(11)
//
// # Missing Values
//
// Every column carries an optional missing-value bitset. Missing rows read back
// as column.Null() and sort before all other values.
//
// # Values
//
// Value is the scalar used for literals, key tuples and reducer results. Ints
// and floats compare numerically; every comparison involving a missing value
// is false.
package column
