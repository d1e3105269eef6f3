package testutil

import (
	"math"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/hupe1980/dtable/column"
	"github.com/hupe1980/dtable/rowset"
	"github.com/hupe1980/dtable/table"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Ints returns n values uniform in [0, max).
func (r *RNG) Ints(n int, max int64) []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int64, n)
	for i := range out {
		out[i] = r.rand.Int63n(max)
	}
	return out
}

// Floats returns n values uniform in [minVal, maxVal).
func (r *RNG) Floats(n int, minVal, maxVal float64) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	span := maxVal - minVal
	out := make([]float64, n)
	for i := range out {
		out[i] = minVal + r.rand.Float64()*span
	}
	return out
}

// Labels returns n labels drawn uniformly from "<prefix>0" .. "<prefix>k-1".
func (r *RNG) Labels(n, k int, prefix string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, n)
	for i := range out {
		out[i] = prefix + strconv.Itoa(r.rand.Intn(k))
	}
	return out
}

// Times returns n ascending timestamps starting at start, spaced by random
// steps in [0, maxStep]. Zero steps produce duplicate timestamps.
func (r *RNG) Times(n int, start time.Time, maxStep time.Duration) []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int64, n)
	ts := start.UnixNano()
	for i := range out {
		out[i] = ts
		ts += r.rand.Int63n(int64(maxStep) + 1)
	}
	return out
}

// Zipf returns a Zipfian-distributed value in [0, n).
// Uses Zipf's law: P(k) ∝ 1/k^s where s is the skew parameter.
// s=1.0 gives standard Zipf, s=1.5 gives a heavy tail.
func (r *RNG) Zipf(n int, s float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zipfLocked(n, s)
}

// zipfLocked is the internal implementation (caller must hold lock).
func (r *RNG) zipfLocked(n int, s float64) int {
	if n <= 1 {
		return 0
	}

	var hns float64
	for i := 1; i <= n; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}

	u := r.rand.Float64() * hns
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1
		}
	}

	return n - 1
}

// ZipfKeys generates n group keys in [0, groups) with a Zipfian skew, so a
// few groups hold most rows.
func (r *RNG) ZipfKeys(n, groups int, s float64) []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := make([]int64, n)
	for i := range n {
		keys[i] = int64(r.zipfLocked(groups, s))
	}

	return keys
}

// MissingRows returns the rows to mark missing, each row with probability rate.
func (r *RNG) MissingRows(n int, rate float64) []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	var rows []int
	for i := range n {
		if r.rand.Float64() < rate {
			rows = append(rows, i)
		}
	}

	return rows
}

// TableSpec describes a random table built by RandomTable.
type TableSpec struct {
	Rows        int
	Groups      int     // distinct values of "g" and "k"
	MissingRate float64 // probability of a missing value in "x" and "k"
}

// RandomTable builds a table with columns:
//
//	id  Int          row number
//	g   Text         group label in g0..g<Groups-1>
//	k   Int          group number in [0, Groups), possibly missing
//	c   Categorical  category in c0..c4
//	x   Float        uniform in [-100, 100), possibly missing
//	ts  Timestamp    ascending with duplicates
func (r *RNG) RandomTable(spec TableSpec) *table.Table {
	n := spec.Rows
	groups := max(spec.Groups, 1)

	ids := make([]int64, n)
	for i := range ids {
		ids[i] = int64(i)
	}
	k := column.NewInt("k", r.Ints(n, int64(groups)))
	x := column.NewFloat("x", r.Floats(n, -100, 100))
	if spec.MissingRate > 0 {
		_ = k.Assign(r.MissingRows(n, spec.MissingRate), column.Null())
		_ = x.Assign(r.MissingRows(n, spec.MissingRate), column.Null())
	}

	return table.MustNew(
		column.NewInt("id", ids),
		column.NewText("g", r.Labels(n, groups, "g")),
		k,
		column.NewCategorical("c", r.Labels(n, 5, "c")),
		x,
		column.NewTimestampNanos("ts", r.Times(n, time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC), time.Second)),
	)
}

// ScanFilter evaluates keep on every row and returns the rows where it holds.
// It is the reference result for predicate evaluation.
func ScanFilter(t *table.Table, keep func(row []column.Value) bool) rowset.RowSet {
	out := rowset.RowSet{}
	for i := range t.NumRows() {
		if keep(t.Row(i)) {
			out = append(out, i)
		}
	}
	return out
}

// Pair is one matched (A row, B row) pair. B is -1 for an unmatched A row.
type Pair struct {
	A, B int
}

// NaiveJoin matches every row of a against every row of b on the named
// columns. Missing values never match. Matches for one A row are in B row
// order; outer adds a {A, -1} pair for A rows without any match.
func NaiveJoin(a, b *table.Table, on []string, outer bool) []Pair {
	aCols := mustResolve(a, on)
	bCols := mustResolve(b, on)

	var out []Pair
	for i := range a.NumRows() {
		matched := false
		for j := range b.NumRows() {
			if rowsEqual(aCols, i, bCols, j) {
				out = append(out, Pair{A: i, B: j})
				matched = true
			}
		}
		if !matched && outer {
			out = append(out, Pair{A: i, B: -1})
		}
	}
	return out
}

// Roll directions understood by NaiveRoll.
const (
	RollBackward = iota
	RollForward
	RollNearest
)

// NaiveRoll returns, for every row of a, the b row a rolling join picks, or -1.
// Backward takes the largest order value <= A's (the last row among ties),
// Forward the smallest >= A's (the first among ties), and Nearest the closer
// of the two, preferring Backward on a tie. limit bounds the distance; pass
// math.Inf(1) for none.
func NaiveRoll(a, b *table.Table, group []string, order string, dir int, limit float64) []int {
	aGroup := mustResolve(a, group)
	bGroup := mustResolve(b, group)
	aOrd := mustResolve(a, []string{order})[0]
	bOrd := mustResolve(b, []string{order})[0]

	out := make([]int, a.NumRows())
	for i := range out {
		out[i] = -1
		if aOrd.IsMissing(i) {
			continue
		}
		av := aOrd.Get(i)
		back, fwd := -1, -1
		for j := range b.NumRows() {
			if bOrd.IsMissing(j) || !rowsEqual(aGroup, i, bGroup, j) {
				continue
			}
			c, _ := column.Compare(bOrd.Get(j), av)
			if c <= 0 && (back < 0 || column.Order(bOrd.Get(j), bOrd.Get(back)) >= 0) {
				back = j
			}
			if c >= 0 && (fwd < 0 || column.Order(bOrd.Get(j), bOrd.Get(fwd)) < 0) {
				fwd = j
			}
		}

		pick := back
		switch dir {
		case RollForward:
			pick = fwd
		case RollNearest:
			if back < 0 || (fwd >= 0 && distance(aOrd, i, bOrd, fwd) < distance(aOrd, i, bOrd, back)) {
				pick = fwd
			}
		}
		if pick >= 0 && distance(aOrd, i, bOrd, pick) > limit {
			pick = -1
		}
		out[i] = pick
	}
	return out
}

// GroupSums returns the sum of value per distinct key value, skipping missing
// values in either column. Keys are Value.Key strings.
func GroupSums(t *table.Table, key, value string) map[string]float64 {
	k := mustResolve(t, []string{key})[0]
	v := mustResolve(t, []string{value})[0]
	out := make(map[string]float64)
	for i := range t.NumRows() {
		kk := k.Get(i).Key()
		if _, ok := out[kk]; !ok {
			out[kk] = 0
		}
		if !v.IsMissing(i) {
			out[kk] += v.Float(i)
		}
	}
	return out
}

func mustResolve(t *table.Table, names []string) []*column.Column {
	cols, err := t.Resolve(names...)
	if err != nil {
		panic(err)
	}
	return cols
}

func rowsEqual(a []*column.Column, i int, b []*column.Column, j int) bool {
	for k := range a {
		if !column.Equal(a[k].Get(i), b[k].Get(j)) {
			return false
		}
	}
	return true
}

func distance(a *column.Column, i int, b *column.Column, j int) float64 {
	return math.Abs(position(a, i) - position(b, j))
}

func position(c *column.Column, i int) float64 {
	if c.Type() == column.Timestamp {
		return float64(c.Ints()[i])
	}
	return c.Float(i)
}
