// Package join combines two tables by equality of key columns (Inner, Outer)
// or by nearest order value within groups (Roll).
//
// A rolling join attaching the latest quote to every trade:
//
//	out, err := join.Roll(ctx, trades, quotes, []string{"asset"}, "time", join.Backward)
//
// Neither input is reordered. When B's active key starts with the join
// columns it is bisected directly; otherwise a transient sorted index is
// built for the call.
package join
