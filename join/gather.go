package join

import (
	"context"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/dtable/column"
	"github.com/hupe1980/dtable/core"
	"github.com/hupe1980/dtable/table"
)

// resolvePair looks up cols in both tables and checks that each pair can be
// compared.
func resolvePair(a, b *table.Table, cols []string) ([]*column.Column, []*column.Column, error) {
	aCols := make([]*column.Column, len(cols))
	bCols := make([]*column.Column, len(cols))
	seen := make(map[string]struct{}, len(cols))
	for i, name := range cols {
		if _, dup := seen[name]; dup {
			return nil, nil, core.NewJoinError(name, "listed more than once")
		}
		seen[name] = struct{}{}

		ac, err := a.Column(name)
		if err != nil {
			return nil, nil, core.NewJoinError(name, "absent from the left table")
		}
		bc, err := b.Column(name)
		if err != nil {
			return nil, nil, core.NewJoinError(name, "absent from the right table")
		}
		if !column.Comparable(ac.Type(), bc.Type()) {
			return nil, nil, core.NewJoinError(name, "left type %s does not match right type %s", ac.Type(), bc.Type())
		}
		aCols[i], bCols[i] = ac, bc
	}
	return aCols, bCols, nil
}

type gatherTask struct {
	src  *column.Column
	idx  []int
	name string
}

// assemble builds the output table: every column of a gathered at aIdx, then
// every column of b not in exclude gathered at bIdx (-1 yields a missing
// value). B names already taken get opts.Suffix appended.
func assemble(ctx context.Context, a, b *table.Table, aIdx, bIdx []int, exclude []string, opts Options) (*table.Table, error) {
	taken := make(map[string]struct{}, a.NumCols()+b.NumCols())
	var tasks []gatherTask
	for _, c := range a.Columns() {
		taken[c.Name()] = struct{}{}
		tasks = append(tasks, gatherTask{src: c, idx: aIdx, name: c.Name()})
	}
	for _, c := range b.Columns() {
		if slices.Contains(exclude, c.Name()) {
			continue
		}
		name := c.Name()
		for {
			if _, ok := taken[name]; !ok {
				break
			}
			name += opts.Suffix
		}
		taken[name] = struct{}{}
		tasks = append(tasks, gatherTask{src: c, idx: bIdx, name: name})
	}

	bytes := int64(len(aIdx)) * int64(len(tasks)) * 8
	if err := opts.Controller.AcquireMemory(ctx, bytes); err != nil {
		return nil, err
	}
	defer opts.Controller.ReleaseMemory(bytes)

	cols := make([]*column.Column, len(tasks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Controller.MaxWorkers())
	for i, task := range tasks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c := task.src.Take(task.idx)
			c.Rename(task.name)
			cols[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out, err := table.New(cols...)
	if err != nil {
		return nil, err
	}
	if a.IsKeyed() {
		// aIdx is non-decreasing, so A's key order carries over.
		if _, err := out.SetKey(a.Key()...); err != nil {
			return nil, err
		}
	}
	return out, nil
}
