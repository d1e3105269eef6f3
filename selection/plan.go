package selection

import (
	"strings"

	"github.com/hupe1980/dtable/column"
	"github.com/hupe1980/dtable/expr"
	"github.com/hupe1980/dtable/table"
)

// Plan describes how Evaluate will answer a predicate.
type Plan struct {
	// Path is PathBinarySearch when a key prefix is pinned by equality
	// conjuncts, PathScan otherwise.
	Path table.Path
	// KeyColumns is the pinned key prefix, in key order.
	KeyColumns []string
	// Tuple holds the pinned values, aligned with KeyColumns.
	Tuple []column.Value
	// Residual is what remains to be evaluated over the candidate rows, or nil.
	Residual expr.Node
}

// String renders the plan for logs and debugging.
func (p Plan) String() string {
	var b strings.Builder
	b.WriteString(p.Path.String())
	if len(p.KeyColumns) > 0 {
		b.WriteString(" key=[")
		for i, c := range p.KeyColumns {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(c)
			b.WriteString("=")
			b.WriteString(p.Tuple[i].String())
		}
		b.WriteString("]")
	}
	if p.Residual != nil {
		b.WriteString(" residual=")
		b.WriteString(p.Residual.String())
	}
	return b.String()
}

// Explain reports the access path Evaluate takes for pred on t without
// evaluating it. The predicate is not bound; Evaluate reports schema errors.
func Explain(t *table.Table, pred expr.Node) Plan {
	conjuncts := expr.Conjuncts(pred)
	if !t.IsKeyed() {
		return Plan{Path: table.PathScan, Residual: pred}
	}

	eq := make(map[string]int, len(conjuncts))
	for i, c := range conjuncts {
		if name, _, ok := equality(c); ok {
			if _, seen := eq[name]; !seen {
				eq[name] = i
			}
		}
	}

	var (
		keyCols []string
		tuple   []column.Value
		used    = map[int]struct{}{}
	)
	for _, k := range t.Key() {
		i, ok := eq[k]
		if !ok {
			break
		}
		_, v, _ := equality(conjuncts[i])
		keyCols = append(keyCols, k)
		tuple = append(tuple, v)
		used[i] = struct{}{}
	}
	if len(keyCols) == 0 {
		return Plan{Path: table.PathScan, Residual: pred}
	}

	var rest []expr.Node
	for i, c := range conjuncts {
		if _, ok := used[i]; !ok {
			rest = append(rest, c)
		}
	}
	p := Plan{Path: table.PathBinarySearch, KeyColumns: keyCols, Tuple: tuple}
	switch len(rest) {
	case 0:
	case 1:
		p.Residual = rest[0]
	default:
		p.Residual = expr.And(rest...)
	}
	return p
}

// equality matches `col == literal` in either operand order.
func equality(n expr.Node) (string, column.Value, bool) {
	c, ok := n.(expr.Compare)
	if !ok || c.Op != expr.OpEqual {
		return "", column.Value{}, false
	}
	if ref, ok := c.Left.(expr.ColRef); ok {
		if lit, ok := c.Right.(expr.Literal); ok {
			return ref.Name, lit.Value, true
		}
	}
	if ref, ok := c.Right.(expr.ColRef); ok {
		if lit, ok := c.Left.(expr.Literal); ok {
			return ref.Name, lit.Value, true
		}
	}
	return "", column.Value{}, false
}
