package agg

import (
	"maps"
	"slices"
	"sync"

	"github.com/hupe1980/dtable/column"
	"github.com/hupe1980/dtable/core"
)

// Func is an opaque reducer: it maps one group's slice of a column to a
// scalar. The engine only checks that the results of all groups share a type.
// Func reducers are not combinable and run single-threaded, once per group.
type Func func(c *column.Column) (column.Value, error)

// Registry maps reducer names to implementations. The zero value is not usable;
// use NewRegistry. A Registry is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	builtins map[string]builtin
	funcs    map[string]Func
}

// NewRegistry returns a registry holding the builtin reducers: count, sum,
// mean, var, sd, min, max, first, last, median and nunique.
func NewRegistry() *Registry {
	return &Registry{
		builtins: builtins(),
		funcs:    make(map[string]Func),
	}
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry used when Options.Registry
// is nil.
func DefaultRegistry() *Registry { return defaultRegistry }

// Register adds a named reducer. Builtin names cannot be replaced; registering
// an existing custom name replaces it.
func (r *Registry) Register(name string, fn Func) error {
	if name == "" || fn == nil {
		return core.NewReducerErrorf(name, "", nil, "reducer needs a name and a function")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.builtins[name]; ok {
		return core.NewReducerErrorf(name, "", nil, "cannot replace builtin reducer")
	}
	r.funcs[name] = fn
	return nil
}

// Names returns every registered reducer name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := slices.Collect(maps.Keys(r.builtins))
	names = append(names, slices.Collect(maps.Keys(r.funcs))...)
	slices.Sort(names)
	return names
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, _, ok := r.lookup(name)
	return ok
}

func (r *Registry) lookup(name string) (*builtin, Func, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if b, ok := r.builtins[name]; ok {
		return &b, nil, true
	}
	if fn, ok := r.funcs[name]; ok {
		return nil, fn, true
	}
	return nil, nil, false
}
