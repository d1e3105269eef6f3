package mutate

import (
	"context"

	"github.com/hupe1980/dtable/column"
	"github.com/hupe1980/dtable/core"
	"github.com/hupe1980/dtable/expr"
	"github.com/hupe1980/dtable/rowset"
	"github.com/hupe1980/dtable/selection"
	"github.com/hupe1980/dtable/table"
)

// Assign writes src into column name at the given rows of t.
//
// src is one of:
//   - a column.Value or Go scalar, broadcast to every row
//   - a *column.Column with exactly len(rows) entries, written in RowSet order
//   - an expr.Node, evaluated at rows before any write
//
// A nil rows covers every row. When name exists only the listed positions
// change; no other column is touched or reallocated. When name is new, the
// column is created and rows outside the set hold the missing value.
//
// Values must fit the target column type (ints widen into float columns),
// otherwise a TypeError is returned. Writing to a key column truncates the
// key before that column.
//
// In the default in-place mode the caller needs exclusive access to t for the
// duration of the call.
func Assign(t *table.Table, rows rowset.RowSet, name string, src any, optFns ...func(o *Options)) (*table.Table, error) {
	opts := applyOptions(optFns)
	if name == "" {
		return nil, core.NewKeyErrorf("column name must not be empty")
	}
	if opts.Mode == table.Copy {
		t = t.Clone()
	}
	if rows == nil {
		rows = rowset.All(t.NumRows())
	}
	for _, r := range rows {
		if r < 0 || r >= t.NumRows() {
			return nil, core.NewShapeErrorf(name, "row %d out of range [0,%d)", r, t.NumRows())
		}
	}

	var (
		scalar column.Value
		values *column.Column
		err    error
	)
	switch s := src.(type) {
	case *column.Column:
		values = s
		if values.Len() != len(rows) {
			return nil, core.NewShapeError(name, len(rows), values.Len())
		}
	case expr.Literal:
		scalar = s.Value
	case expr.Node:
		if values, err = expr.EvalValues(t, s, rows); err != nil {
			return nil, err
		}
	default:
		scalar = column.Of(src)
		if !scalar.IsValid() {
			return nil, core.NewTypeError(name, "assign", "unsupported", "scalar, *column.Column or expr.Node")
		}
	}

	if t.HasColumn(name) {
		dst, _ := t.Column(name)
		if values != nil {
			err = dst.AssignFrom(rows, values)
		} else {
			err = dst.Assign(rows, scalar)
		}
		if err != nil {
			return nil, err
		}
		t.InvalidateKey(name)
		opts.Logger.Debug("column assigned", "column", name, "rows", len(rows))
		return t, nil
	}

	col, err := newColumn(t.NumRows(), rows, name, scalar, values, opts.Type)
	if err != nil {
		return nil, err
	}
	if _, err := t.WithColumn(col, table.InPlace); err != nil {
		return nil, err
	}
	opts.Logger.Debug("column created", "column", name, "type", col.Type().String(), "rows", len(rows))
	return t, nil
}

func newColumn(n int, rows rowset.RowSet, name string, scalar column.Value, values *column.Column, typ column.Type) (*column.Column, error) {
	if typ == column.Invalid {
		if values != nil {
			typ = values.Type()
		} else {
			typ = column.TypeOf(scalar.Kind)
		}
	}
	if typ == column.Invalid {
		return nil, core.NewTypeError(name, "assign", scalar.Kind.String(), "typed value for a new column")
	}

	if values != nil && rows.IsAll(n) && values.Type() == typ {
		col := values.Clone()
		col.Rename(name)
		return col, nil
	}

	col := column.NewMissing(name, typ, n)
	var err error
	if values != nil {
		err = col.AssignFrom(rows, values)
	} else {
		err = col.Assign(rows, scalar)
	}
	if err != nil {
		return nil, err
	}
	return col, nil
}

// AssignWhere is Assign over the rows where pred is true.
func AssignWhere(ctx context.Context, t *table.Table, pred expr.Node, name string, src any, optFns ...func(o *Options)) (*table.Table, error) {
	opts := applyOptions(optFns)
	rows, err := selection.Evaluate(ctx, t, pred, func(so *selection.Options) {
		so.Parallelism = opts.Parallelism
		so.Logger = opts.Logger
	})
	if err != nil {
		return nil, err
	}
	return Assign(t, rows, name, src, optFns...)
}

// Drop removes the named columns. Dropping a key column truncates the key
// before it. An absent name returns a KeyError and leaves t unchanged.
func Drop(t *table.Table, names []string, optFns ...func(o *Options)) (*table.Table, error) {
	opts := applyOptions(optFns)
	if _, err := t.Resolve(names...); err != nil {
		return nil, err
	}
	if opts.Mode == table.Copy {
		t = t.Clone()
	}
	for _, name := range names {
		if err := t.Drop(name); err != nil {
			return nil, err
		}
	}
	opts.Logger.Debug("columns dropped", "columns", names)
	return t, nil
}
