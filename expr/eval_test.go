package expr

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/dtable/column"
	"github.com/hupe1980/dtable/core"
	"github.com/hupe1980/dtable/rowset"
	"github.com/hupe1980/dtable/table"
)

// fixture rows:
//
//	row  v    w    s      c     b
//	0    1    10   "ab"   "x"   true
//	1    NA   20   "bc"   "y"   false
//	2    3    NA   NA     "x"   NA
//	3    4    40   "cd"   NA    true
func fixture(t *testing.T) *table.Table {
	t.Helper()
	v := column.NewInt("v", []int64{1, 0, 3, 4})
	w := column.NewFloat("w", []float64{10, 20, 0, 40})
	s := column.NewText("s", []string{"ab", "bc", "", "cd"})
	c := column.NewCategorical("c", []string{"x", "y", "x", "x"})
	b := column.NewBool("b", []bool{true, false, false, true})
	require.NoError(t, v.Set(1, column.Null()))
	require.NoError(t, w.Set(2, column.Null()))
	require.NoError(t, s.Set(2, column.Null()))
	require.NoError(t, c.Set(3, column.Null()))
	require.NoError(t, b.Set(2, column.Null()))
	return table.MustNew(v, w, s, c, b)
}

func eval(t *testing.T, tbl *table.Table, n Node) rowset.RowSet {
	t.Helper()
	m, err := Eval(tbl, n)
	require.NoError(t, err)
	return m.RowSet()
}

func TestEvalCompare(t *testing.T) {
	tbl := fixture(t)

	tests := []struct {
		name string
		pred Node
		want rowset.RowSet
	}{
		{"int eq", Eq("v", 3), rowset.Of(2)},
		{"int ne skips missing", Ne("v", 3), rowset.Of(0, 3)},
		{"int gt float literal", Gt("v", 2.5), rowset.Of(2, 3)},
		{"float lte int literal", Lte("w", 20), rowset.Of(0, 1)},
		{"text lt", Lt("s", "bz"), rowset.Of(0, 1)},
		{"text contains", Contains("s", "c"), rowset.Of(1, 3)},
		{"categorical eq", Eq("c", "x"), rowset.Of(0, 2)},
		{"categorical gte", Gte("c", "y"), rowset.Of(1)},
		{"categorical contains", Contains("c", "y"), rowset.Of(1)},
		{"bool column", Col("b"), rowset.Of(0, 3)},
		{"literal on the left", Cmp(OpGreaterThan, Lit(3), Col("v")), rowset.Of(0)},
		{"column vs column", Cmp(OpLessThan, Col("v"), Col("w")), rowset.Of(0, 3)},
		{"null literal is unknown", Eq("v", nil), rowset.Of()},
		{"literal vs literal", Cmp(OpEqual, Lit(1), Lit(1.0)), rowset.Of(0, 1, 2, 3)},
		{"between", Between("v", 2, 4), rowset.Of(2, 3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := eval(t, tbl, tt.pred)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvalKleene(t *testing.T) {
	tbl := fixture(t)

	tests := []struct {
		name string
		pred Node
		want rowset.RowSet
	}{
		// v > 2 is F,U,T,T
		{"not", NotOf(Gt("v", 2)), rowset.Of(0)},
		{"double not", NotOf(NotOf(Gt("v", 2))), rowset.Of(2, 3)},
		// unknown or true is true; unknown or false is unknown
		{"or", Or(Gt("v", 2), Eq("w", 20)), rowset.Of(1, 2, 3)},
		// unknown and false is false, so its negation is true
		{"not and", NotOf(And(Gt("v", 2), Gt("w", 30))), rowset.Of(0, 1)},
		{"and", And(Gt("v", 0), Col("b")), rowset.Of(0, 3)},
		{"not or", NotOf(Or(Eq("v", 1), Eq("s", "cd"))), rowset.Of()},
		{"empty and", And(), rowset.Of(0, 1, 2, 3)},
		{"empty or", Or(), rowset.Of()},
		{"is missing", IsNA("w"), rowset.Of(2)},
		{"not is missing", NotOf(IsNA("v")), rowset.Of(0, 2, 3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := eval(t, tbl, tt.pred)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvalNaN(t *testing.T) {
	nan := math.NaN()
	tbl := table.MustNew(
		column.NewFloat("x", []float64{1, nan, 2, nan}),
		column.NewFloat("y", []float64{1, nan, 0, 5}),
	)

	tests := []struct {
		name string
		pred Node
		want rowset.RowSet
	}{
		{"eq nan", Eq("x", nan), rowset.Of(1, 3)},
		{"ne nan", Ne("x", nan), rowset.Of(0, 2)},
		{"nan sorts below numbers", Lt("x", 1.5), rowset.Of(0, 1, 3)},
		{"lte", Lte("x", 1), rowset.Of(0, 1, 3)},
		{"gt", Gt("x", 1.5), rowset.Of(2)},
		{"gte nan", Gte("x", nan), rowset.Of(0, 1, 2, 3)},
		{"lt nan", Lt("x", nan), rowset.Of()},
		{"column vs column", Cmp(OpEqual, Col("x"), Col("y")), rowset.Of(0, 1)},
		{"in set", InSet("x", nan), rowset.Of(1, 3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := eval(t, tbl, tt.pred)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvalIn(t *testing.T) {
	tbl := fixture(t)

	assert.Equal(t, rowset.Of(0, 3), eval(t, tbl, InSet("v", 1, 4, nil)))
	assert.Equal(t, rowset.Of(2), eval(t, tbl, NotOf(InSet("v", 1, 4))))
	assert.Equal(t, rowset.Of(0, 2), eval(t, tbl, InSet("c", "x", "z")))
	assert.Equal(t, rowset.Of(1, 3), eval(t, tbl, InSet("s", "bc", "cd")))
	assert.Equal(t, rowset.Of(0), eval(t, tbl, InSet("w", 10)))
	assert.Equal(t, rowset.Of(0, 2), eval(t, tbl, InSet("v", 1, 3.0)))
}

func TestEvalTimestamp(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tbl := table.MustNew(column.NewTimestamp("ts", []time.Time{
		base, base.Add(time.Hour), base.Add(2 * time.Hour),
	}))

	assert.Equal(t, rowset.Of(1, 2), eval(t, tbl, Gte("ts", base.Add(time.Hour))))
}

func TestEvalArithmeticOperand(t *testing.T) {
	tbl := fixture(t)

	// v * 10 == w holds on rows 0 and 3; rows 1 and 2 are unknown.
	pred := Cmp(OpEqual, Mul(Col("v"), Lit(10)), Col("w"))
	assert.Equal(t, rowset.Of(0, 3), eval(t, tbl, pred))
	assert.Empty(t, eval(t, tbl, NotOf(pred)))
}

func TestEvalRange(t *testing.T) {
	tbl := fixture(t)
	pred := Gt("v", 0)
	require.NoError(t, BindPredicate(tbl, pred))

	m, err := EvalRange(tbl, pred, 2, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, m.Universe())
	assert.Equal(t, rowset.Of(2, 3), m.RowSet())

	m, err = EvalRange(tbl, Gt(`w`, 0), 1, 3)
	require.NoError(t, err)
	assert.Equal(t, rowset.Of(1), m.RowSet())
}

func TestBindErrors(t *testing.T) {
	tbl := fixture(t)

	tests := []struct {
		name string
		pred Node
		kind error
	}{
		{"absent column", Eq("nope", 1), core.ErrKey},
		{"text vs int", Eq("s", 1), core.ErrType},
		{"contains on int", Contains("v", "1"), core.ErrType},
		{"non-bool predicate", Col("v"), core.ErrType},
		{"in mismatch", InSet("v", "a"), core.ErrType},
		{"negate text", Cmp(OpEqual, Neg(Col("s")), Lit(1)), core.ErrType},
		{"nested absent", And(Eq("v", 1), NotOf(IsNA("missing"))), core.ErrKey},
		{"unknown operator", Cmp(Operator("like"), Col("s"), Lit("a")), core.ErrType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Eval(tbl, tt.pred)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestConjunctsAndColumns(t *testing.T) {
	pred := And(Eq("a", 1), And(Gt("b", 2), Or(Eq("c", 3), Eq("a", 4))))

	assert.Len(t, Conjuncts(pred), 3)
	assert.Equal(t, []string{"a", "b", "c"}, Columns(pred))
	assert.Len(t, Conjuncts(Eq("a", 1)), 1)
}

func TestString(t *testing.T) {
	assert.Equal(t, `(v > 3)`, Gt("v", 3).String())
	assert.Equal(t, `!is_na(w)`, NotOf(IsNA("w")).String())
}
