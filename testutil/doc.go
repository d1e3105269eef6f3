// Package testutil provides testing utilities for dtable.
//
// This package is intended for use in tests and benchmarks only.
// It provides seeded random table generators and brute-force reference
// implementations of selection, joins and grouped sums.
//
// # Random Tables
//
//	rng := testutil.NewRNG(seed)
//	t := rng.RandomTable(testutil.TableSpec{Rows: 10_000, Groups: 50, MissingRate: 0.05})
//
// # Reference Results
//
//	want := testutil.ScanFilter(t, func(row []column.Value) bool { ... })
//	pairs := testutil.NaiveJoin(a, b, []string{"sym"}, false)
//	picks := testutil.NaiveRoll(a, b, []string{"sym"}, "ts", testutil.RollBackward, math.Inf(1))
package testutil
