package table

import (
	"cmp"
	"runtime"
	"slices"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/dtable/column"
	"github.com/hupe1980/dtable/core"
	"github.com/hupe1980/dtable/rowset"
)

// Path is the access path a lookup or predicate takes.
type Path uint8

const (
	// PathScan evaluates every row: O(N).
	PathScan Path = iota
	// PathBinarySearch bisects the active key: O(log N + m).
	PathBinarySearch
)

// String returns the string representation of the Path.
func (p Path) String() string {
	if p == PathBinarySearch {
		return "binary-search"
	}
	return "scan"
}

// Key returns the active key columns, or nil when the table is unkeyed.
func (t *Table) Key() []string { return slices.Clone(t.key) }

// IsKeyed reports whether a key is active.
func (t *Table) IsKeyed() bool { return len(t.key) > 0 }

// ClearKey drops the active key without reordering rows.
func (t *Table) ClearKey() { t.key = nil }

// SetKey physically reorders rows by ascending lexicographic order of the named
// columns (missing values first, ties kept in their current order) and records
// the key. It returns the same handle.
//
// Setting the key the table already has is a no-op. When the rows already
// satisfy the order only the key is recorded. Otherwise the cost is
// O(N log N) plus one gather per column.
func (t *Table) SetKey(cols ...string) (*Table, error) {
	if len(cols) == 0 {
		return nil, core.NewKeyErrorf("key requires at least one column")
	}
	keyCols, err := t.Resolve(cols...)
	if err != nil {
		return nil, err
	}
	if slices.Equal(t.key, cols) {
		return t, nil
	}
	if !sortedBy(keyCols, t.n) {
		perm := sortPermutation(keyCols, t.n)
		if err := t.permute(perm); err != nil {
			return nil, err
		}
	}
	t.key = slices.Clone(cols)
	return t, nil
}

// Keyed is the immutable variant of SetKey: it returns a keyed deep copy and
// leaves t untouched.
func (t *Table) Keyed(cols ...string) (*Table, error) {
	return t.Clone().SetKey(cols...)
}

// AccessPath reports which path an equality lookup on cols takes: binary search
// when cols are exactly the first len(cols) key columns in any order, scan
// otherwise.
func (t *Table) AccessPath(cols ...string) Path {
	if len(cols) == 0 || len(cols) > len(t.key) {
		return PathScan
	}
	prefix := t.key[:len(cols)]
	for _, c := range cols {
		if !slices.Contains(prefix, c) {
			return PathScan
		}
	}
	if hasDuplicates(cols) {
		return PathScan
	}
	return PathBinarySearch
}

// Lookup bisects the active key for the contiguous run of rows whose first
// len(tuple) key columns equal tuple. O(log N + m).
//
// Returns a KeyError when the table is unkeyed or the tuple is longer than the
// key, and a TypeError when a tuple value does not match its key column.
// A tuple containing a missing value matches nothing.
func (t *Table) Lookup(tuple ...column.Value) (rowset.RowSet, error) {
	if !t.IsKeyed() {
		return nil, core.NewKeyErrorf("binary search requested on an unkeyed table")
	}
	if len(tuple) == 0 || len(tuple) > len(t.key) {
		return nil, core.NewKeyErrorf("lookup tuple has %d values, key has %d columns", len(tuple), len(t.key))
	}
	keyCols, err := t.Resolve(t.key[:len(tuple)]...)
	if err != nil {
		return nil, err
	}
	lo, hi, err := equalRange(keyCols, tuple, t.n)
	if err != nil {
		return nil, err
	}
	return rowset.Range(lo, hi), nil
}

// LookupOn finds the rows whose cols equal tuple, choosing binary search when
// AccessPath(cols...) allows it and a full scan otherwise. The returned path
// tells the caller which one ran. Results are ascending in both cases.
func (t *Table) LookupOn(cols []string, tuple []column.Value) (rowset.RowSet, Path, error) {
	if len(cols) != len(tuple) {
		return nil, PathScan, core.NewKeyErrorf("lookup has %d columns but %d values", len(cols), len(tuple))
	}
	lookupCols, err := t.Resolve(cols...)
	if err != nil {
		return nil, PathScan, err
	}
	for i, c := range lookupCols {
		if err := checkComparable(c, tuple[i]); err != nil {
			return nil, PathScan, err
		}
	}
	if t.AccessPath(cols...) == PathBinarySearch {
		ordered := make([]column.Value, len(cols))
		for i, name := range cols {
			ordered[slices.Index(t.key, name)] = tuple[i]
		}
		rs, err := t.Lookup(ordered...)
		return rs, PathBinarySearch, err
	}
	for _, v := range tuple {
		if v.IsNull() {
			return rowset.RowSet{}, PathScan, nil
		}
	}
	out := rowset.RowSet{}
	for r := 0; r < t.n; r++ {
		match := true
		for i, c := range lookupCols {
			if res, ok := c.CompareValue(r, tuple[i]); !ok || res != 0 || c.IsMissing(r) {
				match = false
				break
			}
		}
		if match {
			out = append(out, r)
		}
	}
	return out, PathScan, nil
}

func equalRange(keyCols []*column.Column, tuple []column.Value, n int) (int, int, error) {
	for i, c := range keyCols {
		if err := checkComparable(c, tuple[i]); err != nil {
			return 0, 0, err
		}
	}
	for _, v := range tuple {
		if v.IsNull() {
			return 0, 0, nil
		}
	}
	compareRow := func(r int) int {
		for i, c := range keyCols {
			res, _ := c.CompareValue(r, tuple[i])
			if res != 0 {
				return res
			}
		}
		return 0
	}
	lo := sort.Search(n, func(r int) bool { return compareRow(r) >= 0 })
	hi := lo + sort.Search(n-lo, func(k int) bool { return compareRow(lo+k) > 0 })
	return lo, hi, nil
}

func checkComparable(c *column.Column, v column.Value) error {
	if v.IsNull() {
		return nil
	}
	if !v.IsValid() || !column.Comparable(c.Type(), column.TypeOf(v.Kind)) {
		return core.NewTypeError(c.Name(), "lookup", v.Kind.String(), c.Type().String())
	}
	return nil
}

// InvalidateKey truncates the active key before name. Writers that change a
// column's values in place call it, since the physical order may no longer
// satisfy the key from that column on.
func (t *Table) InvalidateKey(name string) { t.truncateKey(name) }

// truncateKey drops name and every key column after it.
func (t *Table) truncateKey(name string) {
	if i := slices.Index(t.key, name); i >= 0 {
		t.key = t.key[:i]
		if len(t.key) == 0 {
			t.key = nil
		}
	}
}

// permute reorders every column so new row k holds old row perm[k].
// Columns are independent, so they are gathered concurrently.
func (t *Table) permute(perm []int) error {
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, c := range t.cols {
		g.Go(func() error { return c.Permute(perm) })
	}
	return g.Wait()
}

func sortedBy(cols []*column.Column, n int) bool {
	for r := 1; r < n; r++ {
		if compareRows(cols, r-1, r) > 0 {
			return false
		}
	}
	return true
}

func compareRows(cols []*column.Column, i, j int) int {
	for _, c := range cols {
		if res := c.CompareRows(i, j); res != 0 {
			return res
		}
	}
	return 0
}

// sortPermutation returns the stable ascending order of rows under cols.
func sortPermutation(cols []*column.Column, n int) []int {
	perm := rowset.All(n)
	if len(cols) == 1 && !cols[0].HasMissing() {
		switch cols[0].Type() {
		case column.Int, column.Timestamp:
			vals := cols[0].Ints()
			slices.SortStableFunc(perm, func(a, b int) int { return cmp.Compare(vals[a], vals[b]) })
			return perm
		case column.Float:
			vals := cols[0].Floats()
			slices.SortStableFunc(perm, func(a, b int) int { return cmp.Compare(vals[a], vals[b]) })
			return perm
		}
	}
	slices.SortStableFunc(perm, func(a, b int) int { return compareRows(cols, a, b) })
	return perm
}

func hasDuplicates(cols []string) bool {
	seen := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		if _, ok := seen[c]; ok {
			return true
		}
		seen[c] = struct{}{}
	}
	return false
}
