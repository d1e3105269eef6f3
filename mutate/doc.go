// Package mutate updates table columns in place for a subset of rows.
//
//	rows, _ := selection.Evaluate(ctx, t, expr.Eq("region", "EU"))
//	_, err := mutate.Assign(t, rows, "vat", expr.Mul(expr.Col("amount"), expr.Lit(0.2)))
//
// Writes touch only the target column. Use WithCopy to leave the input table
// unchanged.
package mutate
