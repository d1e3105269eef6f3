package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/dtable/column"
)

func TestIndexOnUnkeyed(t *testing.T) {
	tbl := MustNew(
		column.NewText("s", []string{"b", "a", "b", "a"}),
		column.NewInt("t", []int64{3, 2, 1, 2}),
	)

	ix, err := tbl.IndexOn("s", "t")
	require.NoError(t, err)
	assert.False(t, ix.Physical())
	assert.Equal(t, 4, ix.Len())
	assert.Equal(t, []string{"s", "t"}, ix.Names())

	rows := make([]int, ix.Len())
	for k := range rows {
		rows[k] = ix.Row(k)
	}
	assert.Equal(t, []int{1, 3, 2, 0}, rows, "stable order, table untouched")

	s, _ := tbl.Column("s")
	assert.Equal(t, []string{"b", "a", "b", "a"}, s.Texts())
}

func TestIndexReusesKey(t *testing.T) {
	tbl := MustNew(column.NewInt("a", []int64{2, 1}), column.NewInt("b", []int64{0, 0}))
	_, err := tbl.SetKey("a", "b")
	require.NoError(t, err)

	ix, err := tbl.IndexOn("a")
	require.NoError(t, err)
	assert.True(t, ix.Physical())

	ix, err = tbl.IndexOn("b")
	require.NoError(t, err)
	assert.False(t, ix.Physical())
}

func TestIndexRanges(t *testing.T) {
	b := MustNew(
		column.NewText("s", []string{"x", "x", "x", "y"}),
		column.NewInt("t", []int64{1, 3, 3, 2}),
	)
	miss, _ := b.Column("t")
	require.NoError(t, miss.Set(0, column.Null()))

	ix, err := b.IndexOn("s", "t")
	require.NoError(t, err)

	probe := MustNew(column.NewText("s", []string{"x", "z"}), column.NewInt("t", []int64{3, 0}))
	ps, _ := probe.Column("s")
	pt, _ := probe.Column("t")

	lo, hi := ix.EqualRange([]*column.Column{ps}, 0)
	assert.Equal(t, 0, lo)
	assert.Equal(t, 3, hi)

	lo = ix.FirstPresent(lo, hi, 1)
	assert.Equal(t, 1, lo)
	assert.Equal(t, 1, ix.LowerBound(lo, hi, 1, pt, 0))
	assert.Equal(t, 3, ix.UpperBound(lo, hi, 1, pt, 0))

	lo, hi = ix.EqualRange([]*column.Column{ps}, 1)
	assert.Equal(t, lo, hi)

	require.NoError(t, ps.Set(0, column.Null()))
	lo, hi = ix.EqualRange([]*column.Column{ps}, 0)
	assert.Equal(t, lo, hi, "missing probe matches nothing")
}
