package selection

import (
	"context"
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/dtable/column"
	"github.com/hupe1980/dtable/core"
	"github.com/hupe1980/dtable/expr"
	"github.com/hupe1980/dtable/rowset"
	"github.com/hupe1980/dtable/table"
	"github.com/hupe1980/dtable/testutil"
)

func randomTable(rows int) *table.Table {
	rng := testutil.NewRNG(4711)
	return rng.RandomTable(testutil.TableSpec{Rows: rows, Groups: 12, MissingRate: 0.05})
}

// ids maps selected rows to the stable "id" column so that results on
// differently ordered copies of one table can be compared.
func ids(t *testing.T, tbl *table.Table, rows rowset.RowSet) []int64 {
	t.Helper()
	id, err := tbl.Column("id")
	require.NoError(t, err)
	out := make([]int64, len(rows))
	for i, r := range rows {
		out[i] = id.Ints()[r]
	}
	slices.Sort(out)
	return out
}

var predicates = []struct {
	name string
	pred expr.Node
}{
	{"key prefix", expr.Eq("g", "g3")},
	{"full key", expr.And(expr.Eq("g", "g3"), expr.Eq("k", 4))},
	{"key and residual", expr.And(expr.Eq("g", "g5"), expr.Gt("x", 0))},
	{"literal left", expr.Cmp(expr.OpEqual, expr.Lit("g7"), expr.Col("g"))},
	{"second key column only", expr.Eq("k", 2)},
	{"no match", expr.Eq("g", "zzz")},
	{"missing key value", expr.Eq("k", nil)},
	{"disjunction", expr.Or(expr.Eq("g", "g1"), expr.Lt("x", -90))},
	{"negated", expr.NotOf(expr.Gte("x", -50))},
	{"categorical in", expr.And(expr.InSet("c", "c1", "c2"), expr.IsNA("x"))},
}

func TestEvaluateKeyedMatchesUnkeyed(t *testing.T) {
	ctx := context.Background()
	plain := randomTable(5000)
	keyed, err := plain.Keyed("g", "k")
	require.NoError(t, err)

	for _, tt := range predicates {
		t.Run(tt.name, func(t *testing.T) {
			a, err := Evaluate(ctx, plain, tt.pred)
			require.NoError(t, err)
			b, err := Evaluate(ctx, keyed, tt.pred)
			require.NoError(t, err)

			assert.True(t, a.IsSorted())
			assert.True(t, b.IsSorted())
			assert.Equal(t, ids(t, plain, a), ids(t, keyed, b))
		})
	}

	t.Run("nan", func(t *testing.T) {
		nan := math.NaN()
		plain := table.MustNew(
			column.NewInt("id", []int64{0, 1, 2, 3, 4}),
			column.NewFloat("x", []float64{1, nan, 2, nan, -1}),
		)
		keyed, err := plain.Keyed("x")
		require.NoError(t, err)

		for _, pred := range []expr.Node{
			expr.Eq("x", nan),
			expr.Ne("x", nan),
			expr.Lt("x", 1.5),
			expr.Gte("x", -1),
			expr.Cmp(expr.OpEqual, expr.Col("x"), expr.Col("x")),
		} {
			a, err := Evaluate(ctx, plain, pred)
			require.NoError(t, err)
			b, err := Evaluate(ctx, keyed, pred)
			require.NoError(t, err)
			assert.Equal(t, ids(t, plain, a), ids(t, keyed, b), pred)
		}

		rows, err := Evaluate(ctx, plain, expr.Eq("x", nan))
		require.NoError(t, err)
		assert.Equal(t, []int64{1, 3}, ids(t, plain, rows))
	})
}

func TestEvaluateMatchesReference(t *testing.T) {
	ctx := context.Background()
	tbl := randomTable(3000)

	// x > 10 and not (g == "g2")
	got, err := Evaluate(ctx, tbl, expr.And(expr.Gt("x", 10), expr.NotOf(expr.Eq("g", "g2"))))
	require.NoError(t, err)

	want := testutil.ScanFilter(tbl, func(row []column.Value) bool {
		x, g := row[4], row[1]
		return !x.IsNull() && x.F64 > 10 && g.Str() != "g2"
	})
	assert.Equal(t, want, got)
}

func TestEvaluateParallel(t *testing.T) {
	ctx := context.Background()
	tbl := randomTable(20_000)
	pred := expr.Or(expr.Between("x", -10, 10), expr.Eq("c", "c4"))

	serial, err := Evaluate(ctx, tbl, pred, func(o *Options) { o.Parallelism = 1 })
	require.NoError(t, err)

	par, err := Evaluate(ctx, tbl, pred, func(o *Options) {
		o.Parallelism = 8
		o.MinParallelRows = 500
	})
	require.NoError(t, err)

	assert.Equal(t, serial, par)
	assert.NotEmpty(t, serial)
}

func TestEvaluateErrors(t *testing.T) {
	ctx := context.Background()
	tbl := randomTable(10)

	_, err := Evaluate(ctx, tbl, expr.Eq("nope", 1))
	assert.ErrorIs(t, err, core.ErrKey)

	_, err = Evaluate(ctx, tbl, expr.Gt("g", 1))
	assert.ErrorIs(t, err, core.ErrType)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = Evaluate(canceled, tbl, expr.Gt("x", 0))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEvaluateEmptyTable(t *testing.T) {
	tbl := table.MustNew(column.NewInt("v", []int64{}))
	rows, err := Evaluate(context.Background(), tbl, expr.Gt("v", 0))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestMaskAndWhere(t *testing.T) {
	ctx := context.Background()
	tbl := table.MustNew(
		column.NewText("sym", []string{"A", "B", "A", "C"}),
		column.NewFloat("px", []float64{1, 2, 3, 4}),
	)

	m, err := Mask(ctx, tbl, expr.Eq("sym", "A"))
	require.NoError(t, err)
	assert.Equal(t, 2, m.Cardinality())
	assert.Equal(t, 4, m.Universe())

	out, err := Where(ctx, tbl, expr.Gt("px", 1.5), []string{"px"})
	require.NoError(t, err)
	assert.Equal(t, []string{"px"}, out.Names())
	assert.Equal(t, 3, out.NumRows())
}
