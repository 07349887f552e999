package table

import (
	"context"
	"sync"
)

// DefinitionFactory returns the registration input for a table definition.
type DefinitionFactory func() RegisterDefinitionInput

// DataFactory can generate data rows for a table instance when the caller
// provides none, e.g. built-in tables backed by a server-side source.
type DataFactory func(ctx context.Context, definition *Definition, input CreateInstanceInput) ([]map[string]any, error)

// Registration bundles a definition factory with an optional data factory.
type Registration struct {
	Definition  DefinitionFactory
	DataFactory DataFactory
}

// Registry stores built-in and host-defined table registrations.
type Registry struct {
	mu            sync.RWMutex
	registrations map[string]Registration
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		registrations: make(map[string]Registration),
	}
}

// Register adds a static definition input to the registry
func (r *Registry) Register(input RegisterDefinitionInput) {
	r.RegisterFactory(input.Name, Registration{
		Definition: func() RegisterDefinitionInput { return input },
	})
}

// RegisterFactory adds a definition factory (and optional data factory) to the registry
func (r *Registry) RegisterFactory(key string, registration Registration) {
	if registration.Definition == nil {
		return
	}
	name := canonicalName(key)
	if name == "" {
		next := registration.Definition()
		name = canonicalName(next.Name)
	}
	if name == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.registrations == nil {
		r.registrations = make(map[string]Registration)
	}
	r.registrations[name] = registration
}

// List returns all registered table definition inputs.
func (r *Registry) List() []RegisterDefinitionInput {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]RegisterDefinitionInput, 0, len(r.registrations))
	for _, registration := range r.registrations {
		if registration.Definition == nil {
			continue
		}
		out = append(out, registration.Definition())
	}
	return out
}

// DataFactory resolves a registered data factory by table name.
func (r *Registry) DataFactory(name string) DataFactory {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.registrations == nil {
		return nil
	}
	entry, ok := r.registrations[canonicalName(name)]
	if !ok {
		return nil
	}
	return entry.DataFactory
}
