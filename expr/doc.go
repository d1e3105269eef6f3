// Package expr provides the expression trees used by selection and mutation.
//
// Predicates are built from comparisons, set membership and missing checks
// combined with And, Or and Not:
//
//	pred := expr.And(expr.Eq("region", "EU"), expr.Gt("amount", 100))
//
// Evaluation uses three-valued logic. A comparison with a missing operand is
// unknown; Not keeps unknown unknown; a row is selected only when the whole
// predicate is true.
//
// Value expressions (column references, literals and arithmetic) evaluate to
// a column and feed Assign in the mutate package.
package expr
