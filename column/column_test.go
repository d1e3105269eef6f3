package column

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/dtable/core"
)

func TestColumnGet(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		col  *Column
		want Value
	}{
		{"int", NewInt("a", []int64{7}), IntValue(7)},
		{"float", NewFloat("a", []float64{1.5}), FloatValue(1.5)},
		{"text", NewText("a", []string{"x"}), StringValue("x")},
		{"bool", NewBool("a", []bool{true}), BoolValue(true)},
		{"timestamp", NewTimestamp("a", []time.Time{ts}), TimeValue(ts)},
		{"categorical", NewCategorical("a", []string{"lvl"}), StringValue("lvl")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, 1, tt.col.Len())
			assert.True(t, Equal(tt.want, tt.col.Get(0)))
			assert.Equal(t, tt.col.Type().Kind(), tt.col.Get(0).Kind)
		})
	}
}

func TestColumnMissing(t *testing.T) {
	c := NewMissing("m", Float, 4)
	assert.Equal(t, 4, c.MissingCount())
	assert.True(t, c.Get(2).IsNull())

	require.NoError(t, c.Set(2, IntValue(3)))
	assert.False(t, c.IsMissing(2))
	assert.Equal(t, 3.0, c.Get(2).F64)
	assert.Equal(t, 3, c.MissingCount())

	require.NoError(t, c.Set(2, Null()))
	assert.True(t, c.IsMissing(2))
}

func TestColumnAssign(t *testing.T) {
	c := NewInt("v", []int64{1, 2, 3, 4, 5, 6})

	require.NoError(t, c.Assign([]int{2, 5}, IntValue(0)))
	assert.Equal(t, []int64{1, 2, 0, 4, 5, 0}, c.Ints())

	err := c.Assign([]int{1}, StringValue("x"))
	assert.ErrorIs(t, err, core.ErrType)
	assert.Equal(t, int64(2), c.Ints()[1])

	err = c.Assign([]int{6}, IntValue(1))
	assert.ErrorIs(t, err, core.ErrShape)
}

func TestColumnAssignFrom(t *testing.T) {
	t.Run("widen", func(t *testing.T) {
		c := NewFloat("f", []float64{0, 0, 0})
		src := NewInt("i", []int64{4, 9})
		require.NoError(t, c.AssignFrom([]int{2, 0}, src))
		assert.Equal(t, []float64{9, 0, 4}, c.Floats())
	})

	t.Run("missing", func(t *testing.T) {
		c := NewText("s", []string{"a", "b"})
		src := NewMissing("s", Text, 1)
		require.NoError(t, c.AssignFrom([]int{1}, src))
		assert.True(t, c.IsMissing(1))
		assert.False(t, c.IsMissing(0))
	})

	t.Run("length", func(t *testing.T) {
		c := NewInt("i", []int64{1, 2})
		err := c.AssignFrom([]int{0, 1}, NewInt("i", []int64{1}))
		assert.ErrorIs(t, err, core.ErrShape)
	})

	t.Run("categorical from text", func(t *testing.T) {
		c := NewCategorical("c", []string{"a", "b"})
		require.NoError(t, c.AssignFrom([]int{0}, NewText("t", []string{"z"})))
		assert.Equal(t, "z", c.Text(0))
		assert.Equal(t, 3, c.Dictionary().Len())
	})

	t.Run("narrowing", func(t *testing.T) {
		c := NewInt("i", []int64{1})
		err := c.AssignFrom([]int{0}, NewFloat("f", []float64{1.5}))
		assert.ErrorIs(t, err, core.ErrType)
	})
}

func TestColumnTake(t *testing.T) {
	c := NewText("s", []string{"a", "b", "c"})
	require.NoError(t, c.Set(1, Null()))

	out := c.Take([]int{2, -1, 1, 0})
	assert.Equal(t, 4, out.Len())
	assert.Equal(t, "c", out.Text(0))
	assert.True(t, out.IsMissing(1))
	assert.True(t, out.IsMissing(2))
	assert.Equal(t, "a", out.Text(3))

	_, err := c.Slice([]int{3})
	assert.ErrorIs(t, err, core.ErrShape)
}

func TestColumnPermute(t *testing.T) {
	c := NewFloat("f", []float64{10, 20, 30})
	require.NoError(t, c.Set(0, Null()))

	require.NoError(t, c.Permute([]int{2, 0, 1}))
	assert.Equal(t, 30.0, c.Float(0))
	assert.True(t, c.IsMissing(1))
	assert.Equal(t, 20.0, c.Float(2))

	assert.ErrorIs(t, c.Permute([]int{0}), core.ErrShape)
}

func TestColumnCloneIsDeep(t *testing.T) {
	c := NewCategorical("c", []string{"x", "y"})
	cp := c.Clone()
	require.NoError(t, cp.Set(0, StringValue("new")))

	assert.Equal(t, "x", c.Text(0))
	assert.Equal(t, 2, c.Dictionary().Len())
	assert.False(t, c.Equal(cp))
}

func TestCompareRows(t *testing.T) {
	c := NewInt("v", []int64{5, 0, 3})
	require.NoError(t, c.Set(1, Null()))

	assert.Equal(t, 1, c.CompareRows(0, 2))
	assert.Equal(t, -1, c.CompareRows(1, 2), "missing sorts first")
	assert.Equal(t, 0, c.CompareRows(1, 1))

	res, ok := c.CompareValue(2, FloatValue(3.5))
	assert.True(t, ok)
	assert.Equal(t, -1, res)

	_, ok = c.CompareValue(2, StringValue("3"))
	assert.False(t, ok)
}

func TestCompareAcrossCategorical(t *testing.T) {
	a := NewCategorical("a", []string{"b", "a"})
	b := NewText("b", []string{"a", "b"})

	assert.Equal(t, 1, a.CompareAcross(0, b, 0))
	assert.Equal(t, 0, a.CompareAcross(0, b, 1))
}

func TestValueCompare(t *testing.T) {
	c, ok := Compare(IntValue(2), FloatValue(2.0))
	assert.True(t, ok)
	assert.Equal(t, 0, c)

	_, ok = Compare(Null(), IntValue(1))
	assert.False(t, ok)

	_, ok = Compare(StringValue("a"), IntValue(1))
	assert.False(t, ok)

	assert.False(t, Equal(Null(), Null()))
	assert.Equal(t, -1, Order(Null(), IntValue(-100)))
}

func TestOf(t *testing.T) {
	assert.Equal(t, KindInt, Of(3).Kind)
	assert.Equal(t, KindFloat, Of(float32(1)).Kind)
	assert.Equal(t, KindString, Of("s").Kind)
	assert.Equal(t, KindNull, Of(nil).Kind)
	assert.Equal(t, KindTime, Of(time.Now()).Kind)
	assert.False(t, Of(struct{}{}).IsValid())
}

func TestTypeAccepts(t *testing.T) {
	assert.True(t, Float.Accepts(KindInt))
	assert.False(t, Int.Accepts(KindFloat))
	assert.True(t, Categorical.Accepts(KindString))
	assert.True(t, Bool.Accepts(KindNull))
	assert.True(t, Comparable(Int, Float))
	assert.True(t, Comparable(Text, Categorical))
	assert.False(t, Comparable(Timestamp, Int))
}
