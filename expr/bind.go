package expr

import (
	"github.com/hupe1980/dtable/column"
	"github.com/hupe1980/dtable/core"
	"github.com/hupe1980/dtable/table"
)

// BindPredicate checks a predicate against a table schema: every referenced
// column must exist (KeyError) and every operator must accept its operand
// types (TypeError). Evaluation functions bind implicitly.
func BindPredicate(schema table.Reader, n Node) error {
	typ, err := typeOf(schema, n)
	if err != nil {
		return err
	}
	if typ != column.Bool && typ != column.Invalid {
		return core.NewTypeError("", "predicate "+n.String(), typ.String(), column.Bool.String())
	}
	return nil
}

// BindValue checks a value expression against a table schema and returns the
// type it produces. column.Invalid means the expression is a bare missing
// literal and adopts the target column's type.
func BindValue(schema table.Reader, n Node) (column.Type, error) {
	return typeOf(schema, n)
}

func typeOf(schema table.Reader, n Node) (column.Type, error) {
	switch x := n.(type) {
	case ColRef:
		c, err := schema.Col(x.Name)
		if err != nil {
			return column.Invalid, err
		}
		return c.Type(), nil

	case Literal:
		if !x.Value.IsValid() {
			return column.Invalid, core.NewTypeError("", "literal", "unsupported", "scalar")
		}
		return column.TypeOf(x.Value.Kind), nil

	case Compare:
		lt, err := typeOf(schema, x.Left)
		if err != nil {
			return column.Invalid, err
		}
		rt, err := typeOf(schema, x.Right)
		if err != nil {
			return column.Invalid, err
		}
		if _, ok := symbols[x.Op]; !ok {
			return column.Invalid, core.NewTypeError("", "compare", string(x.Op), "comparison operator")
		}
		if x.Op == OpContains {
			if !acceptsString(lt) || !acceptsString(rt) {
				return column.Invalid, core.NewTypeError(colName(x.Left), "contains", lt.String()+"/"+rt.String(), "text")
			}
			return column.Bool, nil
		}
		if lt != column.Invalid && rt != column.Invalid && !column.Comparable(lt, rt) {
			return column.Invalid, core.NewTypeError(colName(x.Left), x.String(), rt.String(), lt.String())
		}
		return column.Bool, nil

	case Logical:
		if x.Op != OpAnd && x.Op != OpOr {
			return column.Invalid, core.NewTypeError("", "logical", string(x.Op), "and/or")
		}
		for _, a := range x.Args {
			if err := BindPredicate(schema, a); err != nil {
				return column.Invalid, err
			}
		}
		return column.Bool, nil

	case Not:
		if err := BindPredicate(schema, x.Arg); err != nil {
			return column.Invalid, err
		}
		return column.Bool, nil

	case In:
		at, err := typeOf(schema, x.Arg)
		if err != nil {
			return column.Invalid, err
		}
		for _, v := range x.Values {
			if v.IsNull() {
				continue
			}
			if !v.IsValid() || !column.Comparable(at, column.TypeOf(v.Kind)) {
				return column.Invalid, core.NewTypeError(colName(x.Arg), "in", v.Kind.String(), at.String())
			}
		}
		return column.Bool, nil

	case IsMissing:
		if _, err := typeOf(schema, x.Arg); err != nil {
			return column.Invalid, err
		}
		return column.Bool, nil

	case Arith:
		lt, err := typeOf(schema, x.Left)
		if err != nil {
			return column.Invalid, err
		}
		rt, err := typeOf(schema, x.Right)
		if err != nil {
			return column.Invalid, err
		}
		return arithType(x.Op, lt, rt, x)

	case Negate:
		at, err := typeOf(schema, x.Arg)
		if err != nil {
			return column.Invalid, err
		}
		if at != column.Invalid && !at.IsNumeric() {
			return column.Invalid, core.NewTypeError(colName(x.Arg), "negate", at.String(), "numeric")
		}
		if at == column.Invalid {
			return column.Float, nil
		}
		return at, nil

	default:
		return column.Invalid, core.NewTypeError("", "expression", "unknown node", "expression")
	}
}

func arithType(op Operator, lt, rt column.Type, n Node) (column.Type, error) {
	switch op {
	case OpAdd, OpSub, OpMul, OpDiv:
	default:
		return column.Invalid, core.NewTypeError("", "arith", string(op), "+ - * /")
	}
	for _, t := range []column.Type{lt, rt} {
		if t != column.Invalid && !t.IsNumeric() {
			return column.Invalid, core.NewTypeError("", n.String(), t.String(), "numeric")
		}
	}
	if op == OpDiv || lt == column.Float || rt == column.Float || lt == column.Invalid || rt == column.Invalid {
		return column.Float, nil
	}
	return column.Int, nil
}

func acceptsString(t column.Type) bool {
	return t == column.Invalid || t.IsStringLike()
}

func colName(n Node) string {
	if c, ok := n.(ColRef); ok {
		return c.Name
	}
	return ""
}
