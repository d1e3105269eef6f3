package agg

import (
	"cmp"
	"math"
	"slices"

	"github.com/hupe1980/dtable/column"
)

// accumulator is the combinable partial state of one builtin reducer over all
// groups of one row partition. Missing values are skipped unless noted.
type accumulator interface {
	add(gids []int32, lo, hi int)
	merge(o accumulator)
	value(g int) column.Value
}

// builtin describes a combinable reducer.
type builtin struct {
	// rows marks count-style reducers that may run without a column.
	rows    bool
	accepts func(column.Type) bool
	result  func(column.Type) column.Type
	new     func(ngroups int, col *column.Column) accumulator
}

func anyType(column.Type) bool { return true }

func numeric(t column.Type) bool { return t.IsNumeric() }

func sameType(t column.Type) column.Type { return t }

func intType(column.Type) column.Type { return column.Int }

func floatType(column.Type) column.Type { return column.Float }

func builtins() map[string]builtin {
	return map[string]builtin{
		"count": {rows: true, accepts: anyType, result: intType, new: newCount},
		"sum": {accepts: numeric, result: func(t column.Type) column.Type {
			if t == column.Int {
				return column.Int
			}
			return column.Float
		}, new: newSum},
		"mean":    {accepts: numeric, result: floatType, new: newMoments(momentMean)},
		"var":     {accepts: numeric, result: floatType, new: newMoments(momentVar)},
		"sd":      {accepts: numeric, result: floatType, new: newMoments(momentSD)},
		"min":     {accepts: anyType, result: sameType, new: newExtremum(false)},
		"max":     {accepts: anyType, result: sameType, new: newExtremum(true)},
		"first":   {accepts: anyType, result: sameType, new: newPosition(false)},
		"last":    {accepts: anyType, result: sameType, new: newPosition(true)},
		"median":  {accepts: numeric, result: floatType, new: newMedian},
		"nunique": {accepts: anyType, result: intType, new: newNUnique},
	}
}

// count counts rows, or non-missing values when bound to a column.
type countAcc struct {
	col *column.Column
	n   []int64
}

func newCount(ngroups int, col *column.Column) accumulator {
	return &countAcc{col: col, n: make([]int64, ngroups)}
}

func (a *countAcc) add(gids []int32, lo, hi int) {
	if a.col == nil || !a.col.HasMissing() {
		for r := lo; r < hi; r++ {
			a.n[gids[r]]++
		}
		return
	}
	for r := lo; r < hi; r++ {
		if !a.col.IsMissing(r) {
			a.n[gids[r]]++
		}
	}
}

func (a *countAcc) merge(o accumulator) {
	for g, n := range o.(*countAcc).n {
		a.n[g] += n
	}
}

func (a *countAcc) value(g int) column.Value { return column.IntValue(a.n[g]) }

// sum keeps integer sums exact for Int columns. An all-missing group sums to 0.
type sumAcc struct {
	col    *column.Column
	ints   []int64
	floats []float64
}

func newSum(ngroups int, col *column.Column) accumulator {
	a := &sumAcc{col: col}
	if col.Type() == column.Int {
		a.ints = make([]int64, ngroups)
	} else {
		a.floats = make([]float64, ngroups)
	}
	return a
}

func (a *sumAcc) add(gids []int32, lo, hi int) {
	if a.ints != nil {
		vals := a.col.Ints()
		for r := lo; r < hi; r++ {
			if !a.col.IsMissing(r) {
				a.ints[gids[r]] += vals[r]
			}
		}
		return
	}
	vals := a.col.Floats()
	for r := lo; r < hi; r++ {
		if !a.col.IsMissing(r) {
			a.floats[gids[r]] += vals[r]
		}
	}
}

func (a *sumAcc) merge(o accumulator) {
	b := o.(*sumAcc)
	for g := range a.ints {
		a.ints[g] += b.ints[g]
	}
	for g := range a.floats {
		a.floats[g] += b.floats[g]
	}
}

func (a *sumAcc) value(g int) column.Value {
	if a.ints != nil {
		return column.IntValue(a.ints[g])
	}
	return column.FloatValue(a.floats[g])
}

type moment uint8

const (
	momentMean moment = iota
	momentVar
	momentSD
)

// momentsAcc tracks count, mean and M2 with Welford's update and merges
// partitions with the pairwise (Chan) formula.
type momentsAcc struct {
	col  *column.Column
	kind moment
	n    []int64
	mean []float64
	m2   []float64
}

func newMoments(kind moment) func(int, *column.Column) accumulator {
	return func(ngroups int, col *column.Column) accumulator {
		return &momentsAcc{
			col:  col,
			kind: kind,
			n:    make([]int64, ngroups),
			mean: make([]float64, ngroups),
			m2:   make([]float64, ngroups),
		}
	}
}

func (a *momentsAcc) add(gids []int32, lo, hi int) {
	for r := lo; r < hi; r++ {
		if a.col.IsMissing(r) {
			continue
		}
		g := gids[r]
		x := a.col.Float(r)
		a.n[g]++
		delta := x - a.mean[g]
		a.mean[g] += delta / float64(a.n[g])
		a.m2[g] += delta * (x - a.mean[g])
	}
}

func (a *momentsAcc) merge(o accumulator) {
	b := o.(*momentsAcc)
	for g := range a.n {
		nb := b.n[g]
		if nb == 0 {
			continue
		}
		na := a.n[g]
		if na == 0 {
			a.n[g], a.mean[g], a.m2[g] = nb, b.mean[g], b.m2[g]
			continue
		}
		n := na + nb
		delta := b.mean[g] - a.mean[g]
		a.mean[g] += delta * float64(nb) / float64(n)
		a.m2[g] += b.m2[g] + delta*delta*float64(na)*float64(nb)/float64(n)
		a.n[g] = n
	}
}

func (a *momentsAcc) value(g int) column.Value {
	n := a.n[g]
	switch a.kind {
	case momentMean:
		if n == 0 {
			return column.Null()
		}
		return column.FloatValue(a.mean[g])
	default:
		if n < 2 {
			return column.Null()
		}
		v := a.m2[g] / float64(n-1)
		if a.kind == momentSD {
			v = math.Sqrt(v)
		}
		return column.FloatValue(v)
	}
}

// extremumAcc keeps the running min or max per group for any ordered slot type.
type extremumAcc[T cmp.Ordered] struct {
	max  bool
	vals []T
	has  []bool
	get  func(r int) T
	wrap func(T) column.Value
	col  *column.Column
}

func newExtremum(isMax bool) func(int, *column.Column) accumulator {
	return func(ngroups int, col *column.Column) accumulator {
		switch col.Type() {
		case column.Int:
			vals := col.Ints()
			return newExtremumOf(isMax, ngroups, col, func(r int) int64 { return vals[r] }, column.IntValue)
		case column.Timestamp:
			vals := col.Ints()
			return newExtremumOf(isMax, ngroups, col, func(r int) int64 { return vals[r] }, column.NanosValue)
		case column.Float:
			vals := col.Floats()
			return newExtremumOf(isMax, ngroups, col, func(r int) float64 { return vals[r] }, column.FloatValue)
		case column.Bool:
			vals := col.Bools()
			return newExtremumOf(isMax, ngroups, col, func(r int) int64 {
				if vals[r] {
					return 1
				}
				return 0
			}, func(v int64) column.Value { return column.BoolValue(v == 1) })
		default:
			return newExtremumOf(isMax, ngroups, col, col.Text, column.StringValue)
		}
	}
}

func newExtremumOf[T cmp.Ordered](isMax bool, ngroups int, col *column.Column, get func(int) T, wrap func(T) column.Value) *extremumAcc[T] {
	return &extremumAcc[T]{
		max:  isMax,
		vals: make([]T, ngroups),
		has:  make([]bool, ngroups),
		get:  get,
		wrap: wrap,
		col:  col,
	}
}

func (a *extremumAcc[T]) offer(g int32, x T) {
	if !a.has[g] {
		a.vals[g], a.has[g] = x, true
		return
	}
	c := cmp.Compare(x, a.vals[g])
	if (a.max && c > 0) || (!a.max && c < 0) {
		a.vals[g] = x
	}
}

func (a *extremumAcc[T]) add(gids []int32, lo, hi int) {
	for r := lo; r < hi; r++ {
		if !a.col.IsMissing(r) {
			a.offer(gids[r], a.get(r))
		}
	}
}

func (a *extremumAcc[T]) merge(o accumulator) {
	b := o.(*extremumAcc[T])
	for g, ok := range b.has {
		if ok {
			a.offer(int32(g), b.vals[g])
		}
	}
}

func (a *extremumAcc[T]) value(g int) column.Value {
	if !a.has[g] {
		return column.Null()
	}
	return a.wrap(a.vals[g])
}

// positionAcc remembers the first or last row of each group. Missing values
// are not skipped: first of a group whose first row is missing is missing.
type positionAcc struct {
	col  *column.Column
	last bool
	rows []int
}

func newPosition(last bool) func(int, *column.Column) accumulator {
	return func(ngroups int, col *column.Column) accumulator {
		rows := make([]int, ngroups)
		for g := range rows {
			rows[g] = -1
		}
		return &positionAcc{col: col, last: last, rows: rows}
	}
}

func (a *positionAcc) offer(g int32, r int) {
	cur := a.rows[g]
	if cur < 0 || (a.last && r > cur) || (!a.last && r < cur) {
		a.rows[g] = r
	}
}

func (a *positionAcc) add(gids []int32, lo, hi int) {
	for r := lo; r < hi; r++ {
		a.offer(gids[r], r)
	}
}

func (a *positionAcc) merge(o accumulator) {
	for g, r := range o.(*positionAcc).rows {
		if r >= 0 {
			a.offer(int32(g), r)
		}
	}
}

func (a *positionAcc) value(g int) column.Value {
	if a.rows[g] < 0 {
		return column.Null()
	}
	return a.col.Get(a.rows[g])
}

// medianAcc buffers values; the median is not combinable from summaries.
type medianAcc struct {
	col  *column.Column
	vals [][]float64
}

func newMedian(ngroups int, col *column.Column) accumulator {
	return &medianAcc{col: col, vals: make([][]float64, ngroups)}
}

func (a *medianAcc) add(gids []int32, lo, hi int) {
	for r := lo; r < hi; r++ {
		if !a.col.IsMissing(r) {
			g := gids[r]
			a.vals[g] = append(a.vals[g], a.col.Float(r))
		}
	}
}

func (a *medianAcc) merge(o accumulator) {
	for g, vs := range o.(*medianAcc).vals {
		a.vals[g] = append(a.vals[g], vs...)
	}
}

func (a *medianAcc) value(g int) column.Value {
	vs := a.vals[g]
	if len(vs) == 0 {
		return column.Null()
	}
	s := slices.Clone(vs)
	slices.Sort(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return column.FloatValue(s[mid])
	}
	return column.FloatValue((s[mid-1] + s[mid]) / 2)
}

type nuniqueAcc struct {
	col  *column.Column
	sets []map[string]struct{}
}

func newNUnique(ngroups int, col *column.Column) accumulator {
	return &nuniqueAcc{col: col, sets: make([]map[string]struct{}, ngroups)}
}

func (a *nuniqueAcc) put(g int, key string) {
	if a.sets[g] == nil {
		a.sets[g] = make(map[string]struct{})
	}
	a.sets[g][key] = struct{}{}
}

func (a *nuniqueAcc) add(gids []int32, lo, hi int) {
	for r := lo; r < hi; r++ {
		if !a.col.IsMissing(r) {
			a.put(int(gids[r]), a.col.Get(r).Key())
		}
	}
}

func (a *nuniqueAcc) merge(o accumulator) {
	for g, set := range o.(*nuniqueAcc).sets {
		for k := range set {
			a.put(g, k)
		}
	}
}

func (a *nuniqueAcc) value(g int) column.Value { return column.IntValue(int64(len(a.sets[g]))) }
