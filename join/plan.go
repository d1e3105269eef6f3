package join

import (
	"fmt"
	"slices"

	"github.com/hupe1980/dtable/table"
)

// Kind is the join strategy.
type Kind uint8

const (
	// KindInner keeps only A rows with at least one match.
	KindInner Kind = iota
	// KindOuter keeps every A row; unmatched rows get missing B values.
	KindOuter
	// KindRolling matches each A row to the nearest B row by an order column.
	KindRolling
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindInner:
		return "inner"
	case KindOuter:
		return "outer"
	case KindRolling:
		return "rolling"
	default:
		return "unknown"
	}
}

// Alignment relates B's active key to A's.
type Alignment uint8

const (
	// AlignNone means at least one side is unkeyed or the keys diverge.
	AlignNone Alignment = iota
	// AlignEqual means both keys are the same column list.
	AlignEqual
	// AlignSubset means B's key is a proper prefix of A's.
	AlignSubset
	// AlignSuperset means A's key is a proper prefix of B's.
	AlignSuperset
)

// String returns the string representation of the Alignment.
func (a Alignment) String() string {
	switch a {
	case AlignEqual:
		return "equal"
	case AlignSubset:
		return "subset"
	case AlignSuperset:
		return "superset"
	default:
		return "none"
	}
}

// Plan describes how two tables line up for a join. It is computed per call
// and never stored.
type Plan struct {
	Kind Kind
	// On lists the columns matched by equality, then the order column for a
	// rolling join.
	On []string
	// AKeyed and BKeyed report whether each table's active key starts with On.
	AKeyed, BKeyed bool
	// Alignment relates the two active keys.
	Alignment Alignment
}

// String renders the plan for logs.
func (p Plan) String() string {
	probe := "transient index"
	if p.BKeyed {
		probe = "active key"
	}
	return fmt.Sprintf("%s join on %v (B via %s, keys %s)", p.Kind, p.On, probe, p.Alignment)
}

// Explain reports how a join of a and b on the given columns will run.
func Explain(a, b *table.Table, kind Kind, on ...string) Plan {
	return Plan{
		Kind:      kind,
		On:        slices.Clone(on),
		AKeyed:    a.KeyStartsWith(on...),
		BKeyed:    b.KeyStartsWith(on...),
		Alignment: align(a.Key(), b.Key()),
	}
}

func align(ak, bk []string) Alignment {
	switch {
	case len(ak) == 0 || len(bk) == 0:
		return AlignNone
	case slices.Equal(ak, bk):
		return AlignEqual
	case len(bk) < len(ak) && slices.Equal(ak[:len(bk)], bk):
		return AlignSubset
	case len(ak) < len(bk) && slices.Equal(bk[:len(ak)], ak):
		return AlignSuperset
	default:
		return AlignNone
	}
}
