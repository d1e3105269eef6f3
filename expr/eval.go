package expr

import (
	"cmp"
	"math"
	"strings"

	"github.com/hupe1980/dtable/column"
	"github.com/hupe1980/dtable/core"
	"github.com/hupe1980/dtable/rowset"
	"github.com/hupe1980/dtable/table"
)

// Eval evaluates predicate n against every row of t and returns the rows where
// it is true. Comparisons involving a missing value are unknown, never true.
func Eval(t *table.Table, n Node) (*rowset.Mask, error) {
	if err := BindPredicate(t, n); err != nil {
		return nil, err
	}
	return EvalRange(t, n, 0, t.NumRows())
}

// EvalRange evaluates predicate n over rows [lo, hi) of t. The returned mask
// has universe NumRows() and only holds rows inside the range.
//
// n must already have passed BindPredicate against t; EvalRange is the
// per-partition entry point used by parallel scans.
func EvalRange(t *table.Table, n Node, lo, hi int) (*rowset.Mask, error) {
	tr, err := evalTruth(t, n, lo, hi)
	if err != nil {
		return nil, err
	}
	return tr.t, nil
}

// truth holds the Kleene result of a predicate over a row range: rows in t are
// true, rows in f are false, all other rows of the range are unknown.
type truth struct {
	t, f *rowset.Mask
}

func newTruth(n int) truth {
	return truth{t: rowset.NewMask(n), f: rowset.NewMask(n)}
}

// collector buffers row ids before a batched bitmap insert.
type collector struct {
	t, f []uint32
}

func (c *collector) add(r int, ok bool) {
	if ok {
		c.t = append(c.t, uint32(r))
	} else {
		c.f = append(c.f, uint32(r))
	}
}

func (c *collector) truth(n int) truth {
	tr := newTruth(n)
	tr.t.AddMany(c.t)
	tr.f.AddMany(c.f)
	return tr
}

func evalTruth(t *table.Table, n Node, lo, hi int) (truth, error) {
	size := t.NumRows()
	switch x := n.(type) {
	case Compare:
		left, err := operandOf(t, x.Left, lo, hi)
		if err != nil {
			return truth{}, err
		}
		right, err := operandOf(t, x.Right, lo, hi)
		if err != nil {
			return truth{}, err
		}
		return compareOperands(size, x.Op, left, right, lo, hi), nil

	case Logical:
		if len(x.Args) == 0 {
			tr := newTruth(size)
			if x.Op == OpAnd {
				tr.t.AddRange(lo, hi)
			} else {
				tr.f.AddRange(lo, hi)
			}
			return tr, nil
		}
		acc, err := evalTruth(t, x.Args[0], lo, hi)
		if err != nil {
			return truth{}, err
		}
		for _, a := range x.Args[1:] {
			next, err := evalTruth(t, a, lo, hi)
			if err != nil {
				return truth{}, err
			}
			if x.Op == OpAnd {
				acc.t.And(next.t)
				acc.f.Or(next.f)
			} else {
				acc.t.Or(next.t)
				acc.f.And(next.f)
			}
		}
		return acc, nil

	case Not:
		inner, err := evalTruth(t, x.Arg, lo, hi)
		if err != nil {
			return truth{}, err
		}
		return truth{t: inner.f, f: inner.t}, nil

	case In:
		arg, err := operandOf(t, x.Arg, lo, hi)
		if err != nil {
			return truth{}, err
		}
		return inOperand(size, arg, x.Values, lo, hi), nil

	case IsMissing:
		arg, err := operandOf(t, x.Arg, lo, hi)
		if err != nil {
			return truth{}, err
		}
		var c collector
		for r := lo; r < hi; r++ {
			c.add(r, arg.missing(r))
		}
		return c.truth(size), nil

	default:
		arg, err := operandOf(t, n, lo, hi)
		if err != nil {
			return truth{}, err
		}
		return boolOperand(size, arg, lo, hi)
	}
}

// operand is a value node resolved over a row range: either a scalar literal
// or a column indexed by row-base.
type operand struct {
	col   *column.Column
	base  int
	lit   column.Value
	isLit bool
}

func (o operand) missing(r int) bool {
	if o.isLit {
		return o.lit.IsNull()
	}
	return o.col.IsMissing(r - o.base)
}

func (o operand) value(r int) column.Value {
	if o.isLit {
		return o.lit
	}
	return o.col.Get(r - o.base)
}

func (o operand) typ() column.Type {
	if o.isLit {
		return column.TypeOf(o.lit.Kind)
	}
	return o.col.Type()
}

func operandOf(t *table.Table, n Node, lo, hi int) (operand, error) {
	switch x := n.(type) {
	case ColRef:
		c, err := t.Column(x.Name)
		if err != nil {
			return operand{}, err
		}
		return operand{col: c}, nil
	case Literal:
		return operand{lit: x.Value, isLit: true}, nil
	default:
		c, err := EvalValues(t, n, rowset.Range(lo, hi))
		if err != nil {
			return operand{}, err
		}
		return operand{col: c, base: lo}, nil
	}
}

func boolOperand(size int, o operand, lo, hi int) (truth, error) {
	if o.typ() != column.Bool && !(o.isLit && o.lit.IsNull()) {
		return truth{}, core.NewTypeError(o.name(), "predicate", o.typ().String(), column.Bool.String())
	}
	if o.isLit {
		tr := newTruth(size)
		if o.lit.IsNull() {
			return tr, nil
		}
		if o.lit.B {
			tr.t.AddRange(lo, hi)
		} else {
			tr.f.AddRange(lo, hi)
		}
		return tr, nil
	}
	var c collector
	vals := o.col.Bools()
	for r := lo; r < hi; r++ {
		i := r - o.base
		if o.col.IsMissing(i) {
			continue
		}
		c.add(r, vals[i])
	}
	return c.truth(size), nil
}

func (o operand) name() string {
	if o.isLit {
		return ""
	}
	return o.col.Name()
}

func compareOperands(size int, op Operator, left, right operand, lo, hi int) truth {
	switch {
	case left.isLit && right.isLit:
		tr := newTruth(size)
		if ok, known := compareScalars(op, left.lit, right.lit); known {
			if ok {
				tr.t.AddRange(lo, hi)
			} else {
				tr.f.AddRange(lo, hi)
			}
		}
		return tr
	case left.isLit && op != OpContains:
		return compareOperands(size, op.flip(), right, left, lo, hi)
	case !left.isLit && right.isLit:
		if right.lit.IsNull() {
			return newTruth(size)
		}
		return compareColumnLiteral(size, op, left, right.lit, lo, hi)
	}
	var c collector
	for r := lo; r < hi; r++ {
		if left.missing(r) || right.missing(r) {
			continue
		}
		c.add(r, compareValues(op, left.value(r), right.value(r)))
	}
	return c.truth(size)
}

func compareScalars(op Operator, a, b column.Value) (ok, known bool) {
	if a.IsNull() || b.IsNull() {
		return false, false
	}
	return compareValues(op, a, b), true
}

func compareValues(op Operator, a, b column.Value) bool {
	if op == OpContains {
		return strings.Contains(a.Str(), b.Str())
	}
	c, ok := column.Compare(a, b)
	return ok && op.holds(c)
}

// compareColumnLiteral is the vectorized kernel: one typed loop over the
// backing slice per column type.
func compareColumnLiteral(size int, op Operator, o operand, lit column.Value, lo, hi int) truth {
	col := o.col
	switch {
	case op == OpContains && col.Type() == column.Text:
		sub := lit.Str()
		return scanSlice(size, col, o.base, lo, hi, col.Texts(), func(s string) bool { return strings.Contains(s, sub) })
	case col.Type() == column.Categorical:
		return scanCodes(size, col, o.base, lo, hi, func(level string) bool {
			return compareValues(op, column.StringValue(level), lit)
		})
	case col.Type() == column.Text && lit.Kind == column.KindString:
		x := lit.Str()
		return scanSlice(size, col, o.base, lo, hi, col.Texts(), orderedPred(op, x))
	case (col.Type() == column.Int && lit.Kind == column.KindInt) ||
		(col.Type() == column.Timestamp && lit.Kind == column.KindTime):
		return scanSlice(size, col, o.base, lo, hi, col.Ints(), orderedPred(op, lit.I64))
	case col.Type() == column.Float && lit.IsNumber():
		f, _ := lit.AsFloat64()
		return scanSlice(size, col, o.base, lo, hi, col.Floats(), floatPred(op, f))
	}
	var c collector
	for r := lo; r < hi; r++ {
		i := r - o.base
		if col.IsMissing(i) {
			continue
		}
		res, ok := col.CompareValue(i, lit)
		c.add(r, ok && op.holds(res))
	}
	return c.truth(size)
}

func orderedPred[T cmp.Ordered](op Operator, x T) func(T) bool {
	switch op {
	case OpEqual:
		return func(v T) bool { return v == x }
	case OpNotEqual:
		return func(v T) bool { return v != x }
	case OpGreaterThan:
		return func(v T) bool { return v > x }
	case OpGreaterEqual:
		return func(v T) bool { return v >= x }
	case OpLessThan:
		return func(v T) bool { return v < x }
	case OpLessEqual:
		return func(v T) bool { return v <= x }
	default:
		return func(T) bool { return false }
	}
}

// floatPred orders NaN equal to itself and below every number, the order keys,
// indexes and grouping use.
func floatPred(op Operator, x float64) func(float64) bool {
	if math.IsNaN(x) {
		return func(v float64) bool { return op.holds(cmp.Compare(v, x)) }
	}
	switch op {
	case OpLessThan:
		return func(v float64) bool { return v < x || v != v }
	case OpLessEqual:
		return func(v float64) bool { return v <= x || v != v }
	default:
		return orderedPred(op, x)
	}
}

func scanSlice[T any](size int, col *column.Column, base, lo, hi int, vals []T, pred func(T) bool) truth {
	c := collector{t: make([]uint32, 0, (hi-lo)/4)}
	if !col.HasMissing() {
		for r := lo; r < hi; r++ {
			c.add(r, pred(vals[r-base]))
		}
		return c.truth(size)
	}
	for r := lo; r < hi; r++ {
		i := r - base
		if col.IsMissing(i) {
			continue
		}
		c.add(r, pred(vals[i]))
	}
	return c.truth(size)
}

// scanCodes evaluates pred once per dictionary level and then maps codes.
func scanCodes(size int, col *column.Column, base, lo, hi int, pred func(level string) bool) truth {
	levels := col.Dictionary().Levels()
	hits := make([]bool, len(levels))
	for code, level := range levels {
		hits[code] = pred(level)
	}
	return scanSlice(size, col, base, lo, hi, col.Codes(), func(code uint32) bool { return hits[code] })
}

func inOperand(size int, arg operand, values []column.Value, lo, hi int) truth {
	set := make([]column.Value, 0, len(values))
	for _, v := range values {
		if !v.IsNull() {
			set = append(set, v)
		}
	}
	member := func(v column.Value) bool {
		for _, s := range set {
			if column.Equal(v, s) {
				return true
			}
		}
		return false
	}
	if arg.isLit {
		tr := newTruth(size)
		if !arg.lit.IsNull() {
			if member(arg.lit) {
				tr.t.AddRange(lo, hi)
			} else {
				tr.f.AddRange(lo, hi)
			}
		}
		return tr
	}
	col := arg.col
	switch col.Type() {
	case column.Categorical:
		return scanCodes(size, col, arg.base, lo, hi, func(level string) bool {
			return member(column.StringValue(level))
		})
	case column.Text:
		strs := make(map[string]struct{}, len(set))
		for _, s := range set {
			if str, ok := s.AsString(); ok {
				strs[str] = struct{}{}
			}
		}
		return scanSlice(size, col, arg.base, lo, hi, col.Texts(), func(s string) bool {
			_, ok := strs[s]
			return ok
		})
	case column.Int:
		ints := make(map[int64]struct{}, len(set))
		allInt := true
		for _, s := range set {
			if i, ok := s.AsInt64(); ok {
				ints[i] = struct{}{}
			} else {
				allInt = false
			}
		}
		if allInt {
			return scanSlice(size, col, arg.base, lo, hi, col.Ints(), func(v int64) bool {
				_, ok := ints[v]
				return ok
			})
		}
	}
	var c collector
	for r := lo; r < hi; r++ {
		if arg.missing(r) {
			continue
		}
		c.add(r, member(arg.value(r)))
	}
	return c.truth(size)
}
