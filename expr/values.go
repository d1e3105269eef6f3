package expr

import (
	"slices"

	"github.com/hupe1980/dtable/column"
	"github.com/hupe1980/dtable/rowset"
	"github.com/hupe1980/dtable/table"
)

// EvalValues evaluates value expression n at the given rows and returns a
// column with one entry per row, in row order. Arithmetic on a missing operand
// is missing. A predicate evaluates to a Bool column with unknown as missing.
//
// The returned column is named after the expression; callers rename it.
func EvalValues(t *table.Table, n Node, rows rowset.RowSet) (*column.Column, error) {
	if _, err := BindValue(t, n); err != nil {
		return nil, err
	}
	return evalValues(t, n, rows)
}

func evalValues(t *table.Table, n Node, rows rowset.RowSet) (*column.Column, error) {
	switch x := n.(type) {
	case ColRef:
		c, err := t.Column(x.Name)
		if err != nil {
			return nil, err
		}
		return c.Take(rows), nil

	case Literal:
		return Broadcast(n.String(), x.Value, column.Float, len(rows))

	case Arith:
		left, err := evalValues(t, x.Left, rows)
		if err != nil {
			return nil, err
		}
		right, err := evalValues(t, x.Right, rows)
		if err != nil {
			return nil, err
		}
		return arith(x, left, right), nil

	case Negate:
		arg, err := evalValues(t, x.Arg, rows)
		if err != nil {
			return nil, err
		}
		return negate(x, arg), nil

	default:
		return predicateValues(t, n, rows)
	}
}

// Broadcast returns a column of n copies of v. A missing v yields a column of
// type fallback with every row missing.
func Broadcast(name string, v column.Value, fallback column.Type, n int) (*column.Column, error) {
	typ := column.TypeOf(v.Kind)
	if v.IsNull() || typ == column.Invalid {
		typ = fallback
	}
	c := column.NewMissing(name, typ, n)
	if v.IsNull() {
		return c, nil
	}
	if err := c.Assign(rowset.All(n), v); err != nil {
		return nil, err
	}
	return c, nil
}

func arith(x Arith, left, right *column.Column) *column.Column {
	n := left.Len()
	name := x.String()
	if left.Type() == column.Int && right.Type() == column.Int && x.Op != OpDiv {
		a, b := left.Ints(), right.Ints()
		out := make([]int64, n)
		for i := range out {
			switch x.Op {
			case OpAdd:
				out[i] = a[i] + b[i]
			case OpSub:
				out[i] = a[i] - b[i]
			case OpMul:
				out[i] = a[i] * b[i]
			}
		}
		return withMissing(column.NewInt(name, out), left, right)
	}
	out := make([]float64, n)
	for i := range out {
		if left.IsMissing(i) || right.IsMissing(i) {
			continue
		}
		a, b := left.Float(i), right.Float(i)
		switch x.Op {
		case OpAdd:
			out[i] = a + b
		case OpSub:
			out[i] = a - b
		case OpMul:
			out[i] = a * b
		case OpDiv:
			out[i] = a / b
		}
	}
	return withMissing(column.NewFloat(name, out), left, right)
}

func negate(x Negate, arg *column.Column) *column.Column {
	name := x.String()
	if arg.Type() == column.Int {
		out := slices.Clone(arg.Ints())
		for i := range out {
			out[i] = -out[i]
		}
		return withMissing(column.NewInt(name, out), arg)
	}
	out := make([]float64, arg.Len())
	for i := range out {
		if !arg.IsMissing(i) {
			out[i] = -arg.Float(i)
		}
	}
	return withMissing(column.NewFloat(name, out), arg)
}

// withMissing marks dst missing wherever any source is missing.
func withMissing(dst *column.Column, srcs ...*column.Column) *column.Column {
	var rows []int
	for i := 0; i < dst.Len(); i++ {
		for _, s := range srcs {
			if s.IsMissing(i) {
				rows = append(rows, i)
				break
			}
		}
	}
	if len(rows) > 0 {
		_ = dst.Assign(rows, column.Null())
	}
	return dst
}

// predicateValues evaluates a predicate over the span covered by rows and
// gathers the Kleene result into a Bool column.
func predicateValues(t *table.Table, n Node, rows rowset.RowSet) (*column.Column, error) {
	out := column.NewMissing(n.String(), column.Bool, len(rows))
	if len(rows) == 0 {
		return out, nil
	}
	lo, hi := slices.Min(rows), slices.Max(rows)+1
	tr, err := evalTruth(t, n, lo, hi)
	if err != nil {
		return nil, err
	}
	for k, r := range rows {
		switch {
		case tr.t.Contains(r):
			_ = out.Set(k, column.BoolValue(true))
		case tr.f.Contains(r):
			_ = out.Set(k, column.BoolValue(false))
		}
	}
	return out, nil
}
