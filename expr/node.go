package expr

import (
	"fmt"
	"strings"

	"github.com/hupe1980/dtable/column"
)

// Operator names a comparison, logical or arithmetic operation.
type Operator string

const (
	// OpEqual represents the equality operator.
	OpEqual Operator = "eq"
	// OpNotEqual represents the inequality operator.
	OpNotEqual Operator = "ne"
	// OpGreaterThan represents the greater than operator.
	OpGreaterThan Operator = "gt"
	// OpGreaterEqual represents the greater than or equal operator.
	OpGreaterEqual Operator = "gte"
	// OpLessThan represents the less than operator.
	OpLessThan Operator = "lt"
	// OpLessEqual represents the less than or equal operator.
	OpLessEqual Operator = "lte"
	// OpContains represents the contains substring operator.
	OpContains Operator = "contains"

	// OpAnd is n-ary conjunction.
	OpAnd Operator = "and"
	// OpOr is n-ary disjunction.
	OpOr Operator = "or"

	// OpAdd is addition.
	OpAdd Operator = "+"
	// OpSub is subtraction.
	OpSub Operator = "-"
	// OpMul is multiplication.
	OpMul Operator = "*"
	// OpDiv is division; the result is always float.
	OpDiv Operator = "/"
)

var symbols = map[Operator]string{
	OpEqual:        "==",
	OpNotEqual:     "!=",
	OpGreaterThan:  ">",
	OpGreaterEqual: ">=",
	OpLessThan:     "<",
	OpLessEqual:    "<=",
	OpContains:     "contains",
}

// flip returns the operator that gives the same result with operands swapped.
func (op Operator) flip() Operator {
	switch op {
	case OpGreaterThan:
		return OpLessThan
	case OpGreaterEqual:
		return OpLessEqual
	case OpLessThan:
		return OpGreaterThan
	case OpLessEqual:
		return OpGreaterEqual
	default:
		return op
	}
}

// holds reports whether a three-way comparison result satisfies op.
func (op Operator) holds(c int) bool {
	switch op {
	case OpEqual:
		return c == 0
	case OpNotEqual:
		return c != 0
	case OpGreaterThan:
		return c > 0
	case OpGreaterEqual:
		return c >= 0
	case OpLessThan:
		return c < 0
	case OpLessEqual:
		return c <= 0
	default:
		return false
	}
}

// Node is an expression tree node. Value nodes (ColRef, Literal, Arith,
// Negate) produce a column of values; predicate nodes (Compare, Logical, Not,
// In, IsMissing) produce a boolean mask. A Bool-typed value node is accepted
// wherever a predicate is expected.
type Node interface {
	fmt.Stringer
	node()
}

// ColRef references a column by name.
type ColRef struct {
	Name string
}

// Literal is a constant value.
type Literal struct {
	Value column.Value
}

// Compare applies a comparison operator to two value nodes.
type Compare struct {
	Op          Operator
	Left, Right Node
}

// Logical combines predicates with OpAnd or OpOr.
type Logical struct {
	Op   Operator
	Args []Node
}

// Not negates a predicate. Unknown stays unknown.
type Not struct {
	Arg Node
}

// In tests membership of a value node in a literal set.
type In struct {
	Arg    Node
	Values []column.Value
}

// IsMissing is true where a value node is missing. It is never unknown.
type IsMissing struct {
	Arg Node
}

// Arith applies an arithmetic operator to two numeric value nodes.
type Arith struct {
	Op          Operator
	Left, Right Node
}

// Negate is arithmetic negation of a numeric value node.
type Negate struct {
	Arg Node
}

func (ColRef) node()    {}
func (Literal) node()   {}
func (Compare) node()   {}
func (Logical) node()   {}
func (Not) node()       {}
func (In) node()        {}
func (IsMissing) node() {}
func (Arith) node()     {}
func (Negate) node()    {}

func (c ColRef) String() string  { return c.Name }
func (l Literal) String() string {
	if l.Value.Kind == column.KindString {
		return fmt.Sprintf("%q", l.Value.Str())
	}
	return l.Value.String()
}
func (c Compare) String() string {
	return fmt.Sprintf("(%s %s %s)", c.Left, symbols[c.Op], c.Right)
}
func (l Logical) String() string {
	parts := make([]string, len(l.Args))
	for i, a := range l.Args {
		parts[i] = a.String()
	}
	return "(" + strings.Join(parts, " "+string(l.Op)+" ") + ")"
}
func (n Not) String() string { return "!" + n.Arg.String() }
func (in In) String() string {
	parts := make([]string, len(in.Values))
	for i, v := range in.Values {
		parts[i] = Literal{Value: v}.String()
	}
	return fmt.Sprintf("(%s in [%s])", in.Arg, strings.Join(parts, ", "))
}
func (m IsMissing) String() string { return fmt.Sprintf("is_na(%s)", m.Arg) }
func (a Arith) String() string     { return fmt.Sprintf("(%s %s %s)", a.Left, a.Op, a.Right) }
func (n Negate) String() string    { return "-" + n.Arg.String() }

// Col references column name.
func Col(name string) ColRef { return ColRef{Name: name} }

// Lit wraps a Go scalar or column.Value as a literal.
func Lit(v any) Literal { return Literal{Value: column.Of(v)} }

// Cmp builds a comparison between two arbitrary value nodes.
func Cmp(op Operator, left, right Node) Compare {
	return Compare{Op: op, Left: left, Right: right}
}

// Eq is column == value.
func Eq(col string, v any) Compare { return Cmp(OpEqual, Col(col), Lit(v)) }

// Ne is column != value.
func Ne(col string, v any) Compare { return Cmp(OpNotEqual, Col(col), Lit(v)) }

// Gt is column > value.
func Gt(col string, v any) Compare { return Cmp(OpGreaterThan, Col(col), Lit(v)) }

// Gte is column >= value.
func Gte(col string, v any) Compare { return Cmp(OpGreaterEqual, Col(col), Lit(v)) }

// Lt is column < value.
func Lt(col string, v any) Compare { return Cmp(OpLessThan, Col(col), Lit(v)) }

// Lte is column <= value.
func Lte(col string, v any) Compare { return Cmp(OpLessEqual, Col(col), Lit(v)) }

// Contains is substring match on a text or categorical column.
func Contains(col string, sub string) Compare {
	return Cmp(OpContains, Col(col), Lit(sub))
}

// Between is lo <= column <= hi.
func Between(col string, lo, hi any) Logical {
	return And(Gte(col, lo), Lte(col, hi))
}

// InSet is column in values.
func InSet(col string, values ...any) In {
	vals := make([]column.Value, len(values))
	for i, v := range values {
		vals[i] = column.Of(v)
	}
	return In{Arg: Col(col), Values: vals}
}

// IsNA is true where column is missing.
func IsNA(col string) IsMissing { return IsMissing{Arg: Col(col)} }

// And is the conjunction of args.
func And(args ...Node) Logical { return Logical{Op: OpAnd, Args: args} }

// Or is the disjunction of args.
func Or(args ...Node) Logical { return Logical{Op: OpOr, Args: args} }

// NotOf negates a predicate.
func NotOf(arg Node) Not { return Not{Arg: arg} }

// Add is left + right.
func Add(left, right Node) Arith { return Arith{Op: OpAdd, Left: left, Right: right} }

// Sub is left - right.
func Sub(left, right Node) Arith { return Arith{Op: OpSub, Left: left, Right: right} }

// Mul is left * right.
func Mul(left, right Node) Arith { return Arith{Op: OpMul, Left: left, Right: right} }

// Div is left / right as float.
func Div(left, right Node) Arith { return Arith{Op: OpDiv, Left: left, Right: right} }

// Neg is -arg.
func Neg(arg Node) Negate { return Negate{Arg: arg} }

// Conjuncts flattens nested ANDs into their operands.
func Conjuncts(n Node) []Node {
	l, ok := n.(Logical)
	if !ok || l.Op != OpAnd {
		return []Node{n}
	}
	var out []Node
	for _, a := range l.Args {
		out = append(out, Conjuncts(a)...)
	}
	return out
}

// Columns returns the distinct column names referenced by n, in first-seen order.
func Columns(n Node) []string {
	var out []string
	seen := map[string]struct{}{}
	var walk func(Node)
	walk = func(n Node) {
		switch x := n.(type) {
		case ColRef:
			if _, ok := seen[x.Name]; !ok {
				seen[x.Name] = struct{}{}
				out = append(out, x.Name)
			}
		case Compare:
			walk(x.Left)
			walk(x.Right)
		case Logical:
			for _, a := range x.Args {
				walk(a)
			}
		case Not:
			walk(x.Arg)
		case In:
			walk(x.Arg)
		case IsMissing:
			walk(x.Arg)
		case Arith:
			walk(x.Left)
			walk(x.Right)
		case Negate:
			walk(x.Arg)
		}
	}
	walk(n)
	return out
}
