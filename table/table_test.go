package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/dtable/column"
	"github.com/hupe1980/dtable/core"
	"github.com/hupe1980/dtable/rowset"
)

func sample() *Table {
	return MustNew(
		column.NewText("sym", []string{"B", "A", "C", "A"}),
		column.NewInt("qty", []int64{10, 20, 30, 40}),
		column.NewFloat("px", []float64{1.5, 2.5, 3.5, 4.5}),
	)
}

func TestNew(t *testing.T) {
	tbl := sample()
	assert.Equal(t, 4, tbl.NumRows())
	assert.Equal(t, 3, tbl.NumCols())
	assert.Equal(t, []string{"sym", "qty", "px"}, tbl.Names())
	assert.False(t, tbl.IsKeyed())

	_, err := New(column.NewInt("a", []int64{1, 2}), column.NewInt("b", []int64{1}))
	assert.ErrorIs(t, err, core.ErrShape)

	_, err = New(column.NewInt("a", []int64{1}), column.NewInt("a", []int64{2}))
	assert.ErrorIs(t, err, core.ErrKey)

	empty, err := New()
	require.NoError(t, err)
	assert.Equal(t, 0, empty.NumRows())
}

func TestColumnAccess(t *testing.T) {
	tbl := sample()

	c, err := tbl.Column("qty")
	require.NoError(t, err)
	assert.Equal(t, column.Int, c.Type())

	_, err = tbl.Column("nope")
	var ke *core.KeyError
	require.ErrorAs(t, err, &ke)
	assert.Equal(t, "nope", ke.Column)

	_, err = tbl.Resolve("qty", "qty")
	assert.ErrorIs(t, err, core.ErrKey)

	r, err := tbl.Col("px")
	require.NoError(t, err)
	assert.Equal(t, 2.5, r.Get(1).F64)
}

func TestWithColumn(t *testing.T) {
	tbl := sample()
	_, err := tbl.SetKey("sym", "qty")
	require.NoError(t, err)

	cp, err := tbl.WithColumn(column.NewBool("flag", []bool{true, false, true, false}), Copy)
	require.NoError(t, err)
	assert.False(t, tbl.HasColumn("flag"))
	assert.True(t, cp.HasColumn("flag"))

	_, err = tbl.WithColumn(column.NewInt("qty", []int64{0, 0, 0, 0}), InPlace)
	require.NoError(t, err)
	assert.Equal(t, []string{"sym"}, tbl.Key())

	_, err = tbl.WithColumn(column.NewInt("short", []int64{1}), InPlace)
	assert.ErrorIs(t, err, core.ErrShape)
}

func TestDropAndRename(t *testing.T) {
	tbl := sample()
	_, err := tbl.SetKey("sym", "qty")
	require.NoError(t, err)

	require.NoError(t, tbl.Rename("qty", "size"))
	assert.Equal(t, []string{"sym", "size"}, tbl.Key())
	assert.ErrorIs(t, tbl.Rename("px", "sym"), core.ErrKey)

	require.NoError(t, tbl.Drop("sym"))
	assert.Nil(t, tbl.Key())
	assert.Equal(t, []string{"size", "px"}, tbl.Names())
	assert.ErrorIs(t, tbl.Drop("sym"), core.ErrKey)
}

func TestSelect(t *testing.T) {
	tbl := sample()
	_, err := tbl.SetKey("sym")
	require.NoError(t, err)

	sub, err := tbl.Select(rowset.Of(1, 3), "sym", "px")
	require.NoError(t, err)
	assert.Equal(t, 2, sub.NumRows())
	assert.Equal(t, []string{"sym", "px"}, sub.Names())
	assert.Equal(t, []string{"sym"}, sub.Key())

	unordered, err := tbl.Select(rowset.Of(3, 1))
	require.NoError(t, err)
	assert.False(t, unordered.IsKeyed())

	noKey, err := tbl.Select(rowset.Of(0), "px")
	require.NoError(t, err)
	assert.False(t, noKey.IsKeyed())

	_, err = tbl.Select(rowset.Of(4))
	assert.ErrorIs(t, err, core.ErrShape)

	assert.Equal(t, 2, tbl.Head(2).NumRows())
	assert.Equal(t, 4, tbl.Head(100).NumRows())
}

func TestCloneAndEqual(t *testing.T) {
	tbl := sample()
	cp := tbl.Clone()
	assert.True(t, tbl.Equal(cp))

	c, _ := cp.Column("qty")
	require.NoError(t, c.Set(0, column.IntValue(99)))
	assert.False(t, tbl.Equal(cp))
}

func TestString(t *testing.T) {
	tbl := sample()
	_, err := tbl.SetKey("sym")
	require.NoError(t, err)

	s := tbl.String()
	assert.Contains(t, s, "Table[4 x 3] key=(sym)")
	assert.Contains(t, s, "px<float>")
}
