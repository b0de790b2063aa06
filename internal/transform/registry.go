// Package transform holds the named value transformers applied while
// shaping payload records. Lookup is by string key so mapping exports stay
// portable across runs and installations.
package transform

import (
	"fmt"
	"sort"
)

// Func converts one raw value. A nil or empty input passes through
// untouched so optional fields never fail on absence.
type Func func(value any) (any, error)

// Error reports a transformer failure on one value. Callers isolate it to
// the owning row rather than aborting the batch.
type Error struct {
	Transformer string
	Value       any
	Reason      string
}

func (e *Error) Error() string {
	return fmt.Sprintf("transformer %s rejected value %v: %s", e.Transformer, e.Value, e.Reason)
}

// Registry maps transformer names to implementations. The zero value is not
// usable; NewRegistry pre-populates the builtins.
type Registry struct {
	funcs map[string]Func
}

func NewRegistry() *Registry {
	r := &Registry{funcs: make(map[string]Func, 8)}
	for name, fn := range builtins {
		r.funcs[name] = fn
	}

	return r
}

// Register adds or replaces a transformer.
func (r *Registry) Register(name string, fn Func) {
	r.funcs[name] = fn
}

// Get returns the named transformer. An empty name or unknown name yields
// the identity transformer, matching how exported mappings treat a missing
// transformer entry.
func (r *Registry) Get(name string) Func {
	if fn, ok := r.funcs[name]; ok {
		return fn
	}

	return identity
}

// Known reports whether the name resolves to a registered transformer.
func (r *Registry) Known(name string) bool {
	_, ok := r.funcs[name]
	return ok || name == ""
}

// Names returns the registered transformer names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Apply runs the named transformer over the value.
func (r *Registry) Apply(name string, value any) (any, error) {
	return r.Get(name)(value)
}
