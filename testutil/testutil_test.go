package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/dtable/column"
	"github.com/hupe1980/dtable/rowset"
	"github.com/hupe1980/dtable/table"
)

func TestReset(t *testing.T) {
	rng := NewRNG(4711)
	v1 := rng.Floats(10, 0, 1)

	rng.Reset()
	v2 := rng.Floats(10, 0, 1)

	assert.Equal(t, v1, v2)
}

func TestRandomTable(t *testing.T) {
	rng := NewRNG(4711)

	tbl := rng.RandomTable(TableSpec{Rows: 500, Groups: 7, MissingRate: 0.1})

	assert.Equal(t, 500, tbl.NumRows())
	assert.Equal(t, []string{"id", "g", "k", "c", "x", "ts"}, tbl.Names())

	x, err := tbl.Column("x")
	require.NoError(t, err)
	assert.Greater(t, x.MissingCount(), 0)

	ts, err := tbl.Column("ts")
	require.NoError(t, err)
	for i := 1; i < ts.Len(); i++ {
		assert.LessOrEqual(t, ts.Ints()[i-1], ts.Ints()[i])
	}
}

func TestZipfKeys(t *testing.T) {
	rng := NewRNG(42)

	keys := rng.ZipfKeys(10000, 100, 1.5)

	counts := make(map[int64]int)
	for _, k := range keys {
		assert.GreaterOrEqual(t, k, int64(0))
		assert.Less(t, k, int64(100))
		counts[k]++
	}
	// The head of the distribution dominates.
	assert.Greater(t, counts[0], counts[50])
}

func TestScanFilter(t *testing.T) {
	tbl := table.MustNew(column.NewInt("v", []int64{5, 1, 7, 3}))

	rows := ScanFilter(tbl, func(row []column.Value) bool {
		return row[0].I64 > 3
	})

	assert.Equal(t, rowset.Of(0, 2), rows)
}

func TestNaiveJoin(t *testing.T) {
	a := table.MustNew(column.NewText("k", []string{"a", "b", "z"}))
	b := table.MustNew(column.NewText("k", []string{"a", "a", "b"}))

	assert.Equal(t, []Pair{{0, 0}, {0, 1}, {1, 2}}, NaiveJoin(a, b, []string{"k"}, false))
	assert.Equal(t, []Pair{{0, 0}, {0, 1}, {1, 2}, {2, -1}}, NaiveJoin(a, b, []string{"k"}, true))
}

func TestNaiveRoll(t *testing.T) {
	a := table.MustNew(
		column.NewText("s", []string{"x", "x", "x"}),
		column.NewInt("t", []int64{2, 5, 0}),
	)
	b := table.MustNew(
		column.NewText("s", []string{"x", "x", "x"}),
		column.NewInt("t", []int64{1, 3, 3}),
	)
	inf := math.Inf(1)

	assert.Equal(t, []int{0, 2, -1}, NaiveRoll(a, b, []string{"s"}, "t", RollBackward, inf))
	assert.Equal(t, []int{1, -1, 0}, NaiveRoll(a, b, []string{"s"}, "t", RollForward, inf))
	assert.Equal(t, []int{0, 2, 0}, NaiveRoll(a, b, []string{"s"}, "t", RollNearest, inf))
	assert.Equal(t, []int{0, -1, -1}, NaiveRoll(a, b, []string{"s"}, "t", RollBackward, 1))
}
