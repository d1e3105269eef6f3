// Package selection evaluates predicates against a table and returns the
// matching row ids in ascending order.
//
// Use Explain to see whether a predicate will bisect the active key or scan:
//
//	plan := selection.Explain(t, expr.And(expr.Eq("asset", "X"), expr.Gt("price", 10)))
//	fmt.Println(plan) // binary-search key=[asset=X] residual=(price > 10)
package selection
