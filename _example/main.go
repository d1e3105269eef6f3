package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hupe1980/dtable"
	"github.com/hupe1980/dtable/agg"
	"github.com/hupe1980/dtable/column"
	"github.com/hupe1980/dtable/expr"
	"github.com/hupe1980/dtable/table"
	"github.com/hupe1980/dtable/testutil"
)

func main() {
	seed := int64(4711)
	size := 10_000_000
	groups := 1000

	rng := testutil.NewRNG(seed)
	eng := dtable.New()
	ctx := context.Background()

	fmt.Println("--- Build ---")
	fmt.Println("Rows:", size)
	fmt.Println("Groups:", groups)

	start := time.Now()
	t := table.MustNew(
		column.NewInt("g", rng.ZipfKeys(size, groups, 1.1)),
		column.NewFloat("v", rng.Floats(size, 0, 1)),
	)
	fmt.Println("Seconds:", time.Since(start).Seconds())

	fmt.Println("--- Aggregate ---")
	start = time.Now()
	out, err := eng.Aggregate(ctx, t, []string{"g"}, []agg.Spec{agg.Count(), agg.Sum("v")})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("Groups:", out.NumRows())
	fmt.Println("Seconds:", time.Since(start).Seconds())

	fmt.Println("--- SetKey ---")
	start = time.Now()
	if _, err := eng.SetKey(ctx, t, "g"); err != nil {
		log.Fatal(err)
	}
	fmt.Println("Seconds:", time.Since(start).Seconds())

	fmt.Println("--- Select ---")
	for _, pred := range []expr.Node{expr.Eq("g", 500), expr.Gt("v", 0.999)} {
		start = time.Now()
		rows, err := eng.Select(ctx, t, pred)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%s: %d rows via %s in %v\n", pred, rows.Len(), eng.Explain(t, pred).Path, time.Since(start))
	}
}
