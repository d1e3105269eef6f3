// Package agg groups table rows by key columns and reduces each group.
//
//	out, err := agg.Aggregate(ctx, trades, []string{"asset"}, []agg.Spec{
//		agg.Count(),
//		agg.Mean("price"),
//		agg.SD("price").Named("price_sd"),
//	})
//
// Builtin reducers are combinable and run over row partitions in parallel.
// Custom reducers registered with Registry.Register receive each group's
// column slice and run once per group.
package agg
