package schema

import (
	"errors"
	"fmt"
)

// ErrNotLoaded is returned when mapping operations are attempted before both
// the source and target schemas have been registered for the run.
var ErrNotLoaded = errors.New("schema not loaded")

// NotFoundError reports a lookup of a table or endpoint that does not exist
// in the registered schemas.
type NotFoundError struct {
	Kind string // "source table" | "target endpoint"
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

// Registry holds the discovered source schema and the target schema for one
// migration run. Both are registered once and read-only thereafter; the
// registry itself performs no I/O.
type Registry struct {
	source *Source
	target *Target
}

func NewRegistry() *Registry {
	return &Registry{}
}

// RegisterSource stores the discovered source schema.
func (r *Registry) RegisterSource(s *Source) {
	r.source = s
}

// LoadTarget stores the target schema (typically produced by the schema
// cache or a fresh introspection sync).
func (r *Registry) LoadTarget(t *Target) {
	r.target = t
}

// Ready returns ErrNotLoaded unless both schemas are registered.
func (r *Registry) Ready() error {
	switch {
	case r.source == nil && r.target == nil:
		return fmt.Errorf("%w: register source and sync target first", ErrNotLoaded)
	case r.source == nil:
		return fmt.Errorf("%w: source schema not registered", ErrNotLoaded)
	case r.target == nil:
		return fmt.Errorf("%w: target schema not synced", ErrNotLoaded)
	}

	return nil
}

// Source returns the registered source schema, or nil.
func (r *Registry) Source() *Source { return r.source }

// Target returns the registered target schema, or nil.
func (r *Registry) Target() *Target { return r.target }

// SourceTable looks up a source table by name.
func (r *Registry) SourceTable(name string) (*SourceTable, error) {
	if r.source == nil {
		return nil, fmt.Errorf("%w: source schema not registered", ErrNotLoaded)
	}

	if t := r.source.Table(name); t != nil {
		return t, nil
	}

	return nil, &NotFoundError{Kind: "source table", Name: name}
}

// TargetEndpoint looks up a target endpoint by path.
func (r *Registry) TargetEndpoint(path string) (*TargetEndpoint, error) {
	if r.target == nil {
		return nil, fmt.Errorf("%w: target schema not synced", ErrNotLoaded)
	}

	if e := r.target.Endpoint(path); e != nil {
		return e, nil
	}

	return nil, &NotFoundError{Kind: "target endpoint", Name: path}
}
