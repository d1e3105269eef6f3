package table

import (
	"slices"

	"github.com/hupe1980/dtable/column"
	"github.com/hupe1980/dtable/core"
	"github.com/hupe1980/dtable/rowset"
)

// Mode selects whether a structural change mutates the receiver or produces a
// new table.
type Mode uint8

const (
	// InPlace mutates the receiver and returns the same handle.
	InPlace Mode = iota
	// Copy leaves the receiver untouched and returns a deep copy with the change.
	Copy
)

// Table is an ordered collection of equal-length columns sharing one row index
// space, plus an optional active key.
//
// Invariants:
//   - every column has exactly NumRows() entries
//   - column order is insertion order
//   - when a key is active, rows are physically ordered so that key tuples are
//     non-decreasing lexicographically (missing values first)
//
// A Table owns its columns exclusively. Mutating calls (SetKey, WithColumn in
// InPlace mode, Rename, Drop and the mutate package) require exclusive access;
// concurrent reads during a mutating call are undefined.
type Table struct {
	cols  []*column.Column
	index map[string]int
	n     int
	key   []string
}

// New creates a table from columns, taking ownership of them.
// Returns a ShapeError if lengths differ and a KeyError on duplicate names.
func New(cols ...*column.Column) (*Table, error) {
	t := &Table{index: make(map[string]int, len(cols))}
	for _, c := range cols {
		if c == nil {
			continue
		}
		if err := t.add(c); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// MustNew is like New but panics on error. Intended for tests and examples.
func MustNew(cols ...*column.Column) *Table {
	t, err := New(cols...)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Table) add(c *column.Column) error {
	if c.Name() == "" {
		return core.NewKeyErrorf("column name must not be empty")
	}
	if _, dup := t.index[c.Name()]; dup {
		return core.NewKeyErrorf("duplicate column %q", c.Name())
	}
	if len(t.cols) == 0 {
		if int64(c.Len()) > core.MaxRows {
			return core.NewShapeErrorf(c.Name(), "%d rows exceed the maximum of %d", c.Len(), core.MaxRows)
		}
		t.n = c.Len()
	} else if c.Len() != t.n {
		return core.NewShapeError(c.Name(), t.n, c.Len())
	}
	t.index[c.Name()] = len(t.cols)
	t.cols = append(t.cols, c)
	return nil
}

// NumRows returns the row count N.
func (t *Table) NumRows() int { return t.n }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.cols) }

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name()
	}
	return names
}

// HasColumn reports whether a column named name exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the named column or a KeyError.
//
// The column remains owned by the table; callers must not mutate it directly.
func (t *Table) Column(name string) (*column.Column, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, core.NewKeyError(name)
	}
	return t.cols[i], nil
}

// ColumnAt returns the i-th column.
func (t *Table) ColumnAt(i int) *column.Column { return t.cols[i] }

// Columns returns the columns in order.
func (t *Table) Columns() []*column.Column { return slices.Clone(t.cols) }

// Resolve returns the named columns, failing with a KeyError on the first
// absent or repeated name.
func (t *Table) Resolve(names ...string) ([]*column.Column, error) {
	out := make([]*column.Column, len(names))
	seen := make(map[string]struct{}, len(names))
	for i, name := range names {
		if _, dup := seen[name]; dup {
			return nil, core.NewKeyErrorf("column %q listed twice", name)
		}
		seen[name] = struct{}{}
		c, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// WithColumn inserts c under its name, replacing an existing column of the same
// name at its position or appending otherwise. A column whose length differs
// from NumRows fails with a ShapeError. Replacing a key column truncates the
// key before that column.
func (t *Table) WithColumn(c *column.Column, mode Mode) (*Table, error) {
	if len(t.cols) > 0 && c.Len() != t.n {
		return nil, core.NewShapeError(c.Name(), t.n, c.Len())
	}
	dst := t
	if mode == Copy {
		dst = t.Clone()
	}
	if i, ok := dst.index[c.Name()]; ok {
		dst.cols[i] = c
		dst.truncateKey(c.Name())
		return dst, nil
	}
	if err := dst.add(c); err != nil {
		return nil, err
	}
	return dst, nil
}

// Drop removes the named column in place. Dropping a key column truncates the key.
func (t *Table) Drop(name string) error {
	i, ok := t.index[name]
	if !ok {
		return core.NewKeyError(name)
	}
	t.cols = slices.Delete(t.cols, i, i+1)
	t.reindex()
	t.truncateKey(name)
	return nil
}

// Rename renames a column in place, carrying the key along.
func (t *Table) Rename(old, name string) error {
	i, ok := t.index[old]
	if !ok {
		return core.NewKeyError(old)
	}
	if old == name {
		return nil
	}
	if _, dup := t.index[name]; dup {
		return core.NewKeyErrorf("duplicate column %q", name)
	}
	t.cols[i].Rename(name)
	t.reindex()
	for k, kc := range t.key {
		if kc == old {
			t.key[k] = name
		}
	}
	return nil
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.cols))
	for i, c := range t.cols {
		t.index[c.Name()] = i
	}
	if len(t.cols) == 0 {
		t.n = 0
	}
}

// Select materializes the given rows, in RowSet order, and optionally a subset
// of columns. The key survives when rows are ascending and the projection keeps
// a key prefix.
func (t *Table) Select(rows rowset.RowSet, cols ...string) (*Table, error) {
	src := t.cols
	if len(cols) > 0 {
		var err error
		if src, err = t.Resolve(cols...); err != nil {
			return nil, err
		}
	}
	for _, r := range rows {
		if r < 0 || r >= t.n {
			return nil, core.NewShapeErrorf("", "row %d out of range [0,%d)", r, t.n)
		}
	}
	out := &Table{index: make(map[string]int, len(src)), n: len(rows)}
	for _, c := range src {
		out.index[c.Name()] = len(out.cols)
		out.cols = append(out.cols, c.Take(rows))
	}
	if rows.IsSorted() {
		out.key = keptPrefix(t.key, out.index)
	}
	return out, nil
}

// Project returns a deep copy holding only the named columns, in the given order.
func (t *Table) Project(cols ...string) (*Table, error) {
	return t.Select(rowset.All(t.n), cols...)
}

// Head returns a copy of the first n rows.
func (t *Table) Head(n int) *Table {
	n = min(max(n, 0), t.n)
	out, _ := t.Select(rowset.Range(0, n))
	return out
}

// Clone returns a deep copy, including the key.
func (t *Table) Clone() *Table {
	out := &Table{
		cols:  make([]*column.Column, len(t.cols)),
		index: make(map[string]int, len(t.cols)),
		n:     t.n,
		key:   slices.Clone(t.key),
	}
	for i, c := range t.cols {
		out.cols[i] = c.Clone()
		out.index[c.Name()] = i
	}
	return out
}

// Row returns the values of row i in column order.
func (t *Table) Row(i int) []column.Value {
	out := make([]column.Value, len(t.cols))
	for k, c := range t.cols {
		out[k] = c.Get(i)
	}
	return out
}

// Equal reports whether two tables hold the same columns, rows and key.
func (t *Table) Equal(o *Table) bool {
	if t.n != o.n || len(t.cols) != len(o.cols) || !slices.Equal(t.key, o.key) {
		return false
	}
	for i := range t.cols {
		if !t.cols[i].Equal(o.cols[i]) {
			return false
		}
	}
	return true
}

func keptPrefix(key []string, present map[string]int) []string {
	var out []string
	for _, k := range key {
		if _, ok := present[k]; !ok {
			break
		}
		out = append(out, k)
	}
	return out
}
