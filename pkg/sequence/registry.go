package sequence

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownStep is returned when a name is not in the Registry.
var ErrUnknownStep = errors.New("unknown step")

// Factory builds a fresh Step.
type Factory func() Step

// Registry maps symbolic step names to factories. It is immutable once
// created.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates a Registry from a copy of factories.
func NewRegistry(factories map[string]Factory) *Registry {
	r := &Registry{factories: make(map[string]Factory, len(factories))}
	for name, f := range factories {
		r.factories[name] = f
	}
	return r
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.factories[name]
	return ok
}

// New builds a fresh Step for name.
func (r *Registry) New(name string) (Step, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStep, name)
	}
	return f(), nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build assembles a Sequence from names. Unknown names are left out and
// returned so the caller can report them.
func (r *Registry) Build(names []string) (*Sequence, []string) {
	seq := NewSequence()
	var unknown []string
	for _, name := range names {
		step, err := r.New(name)
		if err != nil {
			unknown = append(unknown, name)
			continue
		}
		seq.Append(step)
	}
	return seq, unknown
}
