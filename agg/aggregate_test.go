package agg

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/dtable/column"
	"github.com/hupe1980/dtable/core"
	"github.com/hupe1980/dtable/resource"
	"github.com/hupe1980/dtable/table"
	"github.com/hupe1980/dtable/testutil"
)

func trades() *table.Table {
	return table.MustNew(
		column.NewText("sym", []string{"B", "A", "B", "C", "A", "B"}),
		column.NewInt("qty", []int64{10, 20, 30, 40, 50, 60}),
		column.NewFloat("px", []float64{1, 2, 3, 4, 5, 6}),
	)
}

func texts(t *testing.T, tbl *table.Table, name string) []string {
	t.Helper()
	c, err := tbl.Column(name)
	require.NoError(t, err)
	out := make([]string, c.Len())
	for i := range out {
		out[i] = c.Get(i).String()
	}
	return out
}

func TestAggregate(t *testing.T) {
	out, err := Aggregate(context.Background(), trades(), []string{"sym"}, []Spec{
		Count(),
		Sum("qty"),
		Mean("px"),
		Min("qty"),
		Max("px").Named("hi"),
		First("qty"),
		Last("qty"),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"sym", "count", "sum_qty", "mean_px", "min_qty", "hi", "first_qty", "last_qty"}, out.Names())
	assert.Equal(t, []string{"B", "A", "C"}, texts(t, out, "sym"), "first-seen order")
	assert.Equal(t, []string{"3", "2", "1"}, texts(t, out, "count"))
	assert.Equal(t, []string{"100", "70", "40"}, texts(t, out, "sum_qty"))
	assert.Equal(t, []string{"3.3333333333333335", "3.5", "4"}, texts(t, out, "mean_px"))
	assert.Equal(t, []string{"10", "20", "40"}, texts(t, out, "min_qty"))
	assert.Equal(t, []string{"6", "5", "4"}, texts(t, out, "hi"))
	assert.Equal(t, []string{"10", "20", "40"}, texts(t, out, "first_qty"))
	assert.Equal(t, []string{"60", "50", "40"}, texts(t, out, "last_qty"))

	sum, _ := out.Column("sum_qty")
	assert.Equal(t, column.Int, sum.Type())
}

func TestAggregateMissing(t *testing.T) {
	g := column.NewText("g", []string{"a", "", "a", "", "b"})
	v := column.NewFloat("v", []float64{1, 2, 0, 4, 0})
	require.NoError(t, g.Assign([]int{1, 3}, column.Null()))
	require.NoError(t, v.Assign([]int{2, 4}, column.Null()))
	tbl := table.MustNew(g, v)

	out, err := Aggregate(context.Background(), tbl, []string{"g"}, []Spec{
		Count(), CountOf("v"), Sum("v"), Mean("v"), Min("v"), First("v"),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "NA", "b"}, texts(t, out, "g"), "missing keys form one group")
	assert.Equal(t, []string{"2", "2", "1"}, texts(t, out, "count"))
	assert.Equal(t, []string{"1", "2", "0"}, texts(t, out, "count_v"))
	assert.Equal(t, []string{"1", "6", "0"}, texts(t, out, "sum_v"))
	assert.Equal(t, []string{"1", "3", "NA"}, texts(t, out, "mean_v"))
	assert.Equal(t, []string{"1", "2", "NA"}, texts(t, out, "min_v"))
	assert.Equal(t, []string{"1", "2", "NA"}, texts(t, out, "first_v"))
}

func TestAggregateStatistics(t *testing.T) {
	tbl := table.MustNew(
		column.NewCategorical("g", []string{"x", "x", "x", "x", "y"}),
		column.NewInt("v", []int64{2, 4, 4, 6, 9}),
		column.NewText("s", []string{"p", "q", "p", "r", "z"}),
	)

	out, err := Aggregate(context.Background(), tbl, []string{"g"}, []Spec{
		Var("v"), SD("v"), Median("v"), NUnique("s"), Min("s"), Max("s"),
	})
	require.NoError(t, err)

	vr, _ := out.Column("var_v")
	sd, _ := out.Column("sd_v")
	assert.InDelta(t, 8.0/3.0, vr.Float(0), 1e-12)
	assert.InDelta(t, math.Sqrt(8.0/3.0), sd.Float(0), 1e-12)
	assert.True(t, vr.IsMissing(1), "variance of one value is missing")
	assert.Equal(t, []string{"4", "9"}, texts(t, out, "median_v"))
	assert.Equal(t, []string{"3", "1"}, texts(t, out, "nunique_s"))
	assert.Equal(t, []string{"p", "z"}, texts(t, out, "min_s"))
	assert.Equal(t, []string{"r", "z"}, texts(t, out, "max_s"))

	g, _ := out.Column("g")
	assert.Equal(t, column.Categorical, g.Type())
}

func TestAggregateMultipleKeys(t *testing.T) {
	tbl := table.MustNew(
		column.NewText("a", []string{"x", "y", "x", "x", "y"}),
		column.NewBool("b", []bool{true, true, false, true, true}),
		column.NewInt("v", []int64{1, 2, 3, 4, 5}),
	)

	out, err := Aggregate(context.Background(), tbl, []string{"a", "b"}, []Spec{Sum("v")})
	require.NoError(t, err)

	assert.Equal(t, 3, out.NumRows())
	assert.Equal(t, []string{"x", "y", "x"}, texts(t, out, "a"))
	assert.Equal(t, []string{"true", "true", "false"}, texts(t, out, "b"))
	assert.Equal(t, []string{"5", "7", "3"}, texts(t, out, "sum_v"))
}

func TestAggregateNoGroupColumns(t *testing.T) {
	out, err := Aggregate(context.Background(), trades(), nil, []Spec{Count(), Sum("px")})
	require.NoError(t, err)
	assert.Equal(t, 1, out.NumRows())
	assert.Equal(t, []string{"6"}, texts(t, out, "count"))
	assert.Equal(t, []string{"21"}, texts(t, out, "sum_px"))
}

func TestAggregateEmptyTable(t *testing.T) {
	tbl := table.MustNew(column.NewText("g", []string{}), column.NewFloat("v", []float64{}))

	out, err := Aggregate(context.Background(), tbl, []string{"g"}, []Spec{Count(), Mean("v")})
	require.NoError(t, err)
	assert.Equal(t, 0, out.NumRows())
	assert.Equal(t, []string{"g", "count", "mean_v"}, out.Names())
}

func TestAggregateKeyBy(t *testing.T) {
	out, err := Aggregate(context.Background(), trades(), []string{"sym"}, []Spec{Count()}, func(o *Options) {
		o.KeyBy = true
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"sym"}, out.Key())
	assert.Equal(t, []string{"A", "B", "C"}, texts(t, out, "sym"))
}

func TestAggregateErrors(t *testing.T) {
	ctx := context.Background()
	tbl := trades()

	tests := []struct {
		name  string
		by    []string
		specs []Spec
		kind  error
	}{
		{"unknown reducer", []string{"sym"}, []Spec{Apply("nope", "px")}, core.ErrReducer},
		{"sum without column", []string{"sym"}, []Spec{{Reducer: "sum"}}, core.ErrReducer},
		{"absent value column", []string{"sym"}, []Spec{Sum("nope")}, core.ErrKey},
		{"absent group column", []string{"nope"}, []Spec{Count()}, core.ErrKey},
		{"sum of text", []string{"sym"}, []Spec{Sum("sym")}, core.ErrType},
		{"median of text", nil, []Spec{Median("sym")}, core.ErrType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Aggregate(ctx, tbl, tt.by, tt.specs)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestAggregateFunc(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("spread", func(c *column.Column) (column.Value, error) {
		lo, hi := math.Inf(1), math.Inf(-1)
		for i := range c.Len() {
			lo, hi = min(lo, c.Float(i)), max(hi, c.Float(i))
		}
		return column.FloatValue(hi - lo), nil
	}))
	withReg := func(o *Options) { o.Registry = reg }

	out, err := Aggregate(context.Background(), trades(), []string{"sym"}, []Spec{
		Apply("spread", "px"), Count(),
	}, withReg)
	require.NoError(t, err)
	assert.Equal(t, []string{"5", "3", "0"}, texts(t, out, "spread_px"))
	assert.Equal(t, []string{"3", "2", "1"}, texts(t, out, "count"))

	t.Run("failure names the group", func(t *testing.T) {
		boom := errors.New("boom")
		require.NoError(t, reg.Register("fail_on_a", func(c *column.Column) (column.Value, error) {
			if c.Len() == 2 {
				return column.Value{}, boom
			}
			return column.IntValue(1), nil
		}))
		_, err := Aggregate(context.Background(), trades(), []string{"sym"}, []Spec{Apply("fail_on_a", "qty")}, withReg)

		var re *core.ReducerError
		require.ErrorAs(t, err, &re)
		assert.Equal(t, []string{"A"}, re.Group)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("inconsistent kinds", func(t *testing.T) {
		require.NoError(t, reg.Register("mixed", func(c *column.Column) (column.Value, error) {
			if c.Len() == 3 {
				return column.IntValue(1), nil
			}
			return column.StringValue("x"), nil
		}))
		_, err := Aggregate(context.Background(), trades(), []string{"sym"}, []Spec{Apply("mixed", "qty")}, withReg)
		assert.ErrorIs(t, err, core.ErrReducer)
	})

	t.Run("all missing defaults to float", func(t *testing.T) {
		require.NoError(t, reg.Register("nothing", func(*column.Column) (column.Value, error) {
			return column.Null(), nil
		}))
		out, err := Aggregate(context.Background(), trades(), []string{"sym"}, []Spec{Apply("nothing", "qty")}, withReg)
		require.NoError(t, err)
		c, _ := out.Column("nothing_qty")
		assert.Equal(t, column.Float, c.Type())
		assert.Equal(t, 3, c.MissingCount())
	})
}

func TestAggregatePartitionedMatchesSerial(t *testing.T) {
	rng := testutil.NewRNG(99)
	tbl := rng.RandomTable(testutil.TableSpec{Rows: 50_000, Groups: 40, MissingRate: 0.02})
	specs := []Spec{Count(), Sum("x"), Mean("x"), Var("x"), Min("x"), Max("ts"), First("id"), Last("id"), NUnique("c")}

	serial, err := Aggregate(context.Background(), tbl, []string{"g"}, specs, func(o *Options) { o.Parallelism = 1 })
	require.NoError(t, err)
	par, err := Aggregate(context.Background(), tbl, []string{"g"}, specs, func(o *Options) {
		o.Parallelism = 8
		o.MinParallelRows = 1000
	})
	require.NoError(t, err)

	require.Equal(t, serial.NumRows(), par.NumRows())
	assert.Equal(t, texts(t, serial, "g"), texts(t, par, "g"))
	for _, name := range []string{"count", "min_x", "max_ts", "first_id", "last_id", "nunique_c"} {
		assert.Equal(t, texts(t, serial, name), texts(t, par, name), name)
	}
	for _, name := range []string{"sum_x", "mean_x", "var_x"} {
		s, _ := serial.Column(name)
		p, _ := par.Column(name)
		for i := range s.Len() {
			assert.InDelta(t, s.Float(i), p.Float(i), 1e-6, "%s group %d", name, i)
		}
	}

	want := testutil.GroupSums(tbl, "g", "x")
	g, _ := par.Column("g")
	sum, _ := par.Column("sum_x")
	for i := range par.NumRows() {
		assert.InDelta(t, want[g.Get(i).Key()], sum.Float(i), 1e-6)
	}
}

func TestAggregateMemoryLimit(t *testing.T) {
	ctl := resource.NewController(resource.Config{MemoryLimitBytes: 16})
	_, err := Aggregate(context.Background(), trades(), []string{"sym"}, []Spec{Count()}, func(o *Options) {
		o.Controller = ctl
	})
	assert.ErrorIs(t, err, resource.ErrMemoryLimit)
	assert.Equal(t, int64(0), ctl.MemoryUsage())
}

func TestAggregateMemoryBudget(t *testing.T) {
	// 1000 distinct keys: 8000 bytes of group ids, 16000 bytes of count state.
	keys := make([]int64, 1000)
	for i := range keys {
		keys[i] = int64(i)
	}
	tbl := table.MustNew(column.NewInt("k", keys))

	run := func(ctx context.Context, ctl *resource.Controller) (*table.Table, error) {
		return Aggregate(ctx, tbl, []string{"k"}, []Spec{Count()}, func(o *Options) {
			o.Controller = ctl
		})
	}

	t.Run("sum exceeds limit", func(t *testing.T) {
		ctl := resource.NewController(resource.Config{MemoryLimitBytes: 20000})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_, err := run(ctx, ctl)
		assert.ErrorIs(t, err, resource.ErrMemoryLimit)
		assert.NotErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, int64(0), ctl.MemoryUsage())
	})

	t.Run("sum fits", func(t *testing.T) {
		ctl := resource.NewController(resource.Config{MemoryLimitBytes: 24000})
		out, err := run(context.Background(), ctl)
		require.NoError(t, err)
		assert.Equal(t, 1000, out.NumRows())
		assert.Equal(t, int64(0), ctl.MemoryUsage())
		assert.Equal(t, int64(24000), ctl.PeakMemoryUsage())
	})

	t.Run("waits for other holders", func(t *testing.T) {
		ctl := resource.NewController(resource.Config{MemoryLimitBytes: 24000})
		require.NoError(t, ctl.AcquireMemory(context.Background(), 10000))

		done := make(chan error, 1)
		go func() {
			_, err := run(context.Background(), ctl)
			done <- err
		}()

		time.Sleep(50 * time.Millisecond)
		ctl.ReleaseMemory(10000)

		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("aggregation did not finish after memory was released")
		}
		assert.Equal(t, int64(0), ctl.MemoryUsage())
	})
}

func TestAggregateCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Aggregate(ctx, trades(), []string{"sym"}, []Spec{Sum("qty")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAggregateLarge(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping large aggregation in short mode")
	}
	const (
		rows   = 10_000_000
		groups = 1000
	)
	keys := make([]int64, rows)
	vals := make([]float64, rows)
	for i := range keys {
		keys[i] = int64(i % groups)
		vals[i] = 1
	}
	tbl := table.MustNew(column.NewInt("k", keys), column.NewFloat("v", vals))

	out, err := Aggregate(context.Background(), tbl, []string{"k"}, []Spec{Sum("v"), Count()})
	require.NoError(t, err)
	require.Equal(t, groups, out.NumRows())

	k, _ := out.Column("k")
	sum, _ := out.Column("sum_v")
	count, _ := out.Column("count")
	var total int64
	for g := range groups {
		assert.Equal(t, int64(g), k.Ints()[g])
		assert.Equal(t, float64(rows/groups), sum.Floats()[g])
		total += count.Ints()[g]
	}
	assert.Equal(t, int64(rows), total)
}

func BenchmarkAggregate(b *testing.B) {
	rng := testutil.NewRNG(1)
	tbl := rng.RandomTable(testutil.TableSpec{Rows: 1_000_000, Groups: 1000})
	specs := []Spec{Sum("x"), Mean("x"), Count()}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Aggregate(context.Background(), tbl, []string{"k"}, specs); err != nil {
			b.Fatal(err)
		}
	}
}
