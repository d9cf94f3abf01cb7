package adapter

import "fmt"

// Registry holds the domain adapters in an explicit, fixed order configured at
// startup. The order encodes dependency direction: domains owning dependent
// records register before the domains their records hang off. Iterating the
// registry and collecting a result per adapter replaces the original design's
// late-bound "broadcast to all listeners" dispatch with something a reader can
// trace.
type Registry struct {
	ordered []Adapter
	byName  map[string]Adapter
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Adapter)}
}

// Register appends an adapter to the iteration order. Registering the same
// domain name twice is a wiring bug and is refused.
func (r *Registry) Register(a Adapter) error {
	name := a.Name()
	if name == "" {
		return fmt.Errorf("adapter name must not be empty")
	}
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("adapter %q already registered", name)
	}
	r.byName[name] = a
	r.ordered = append(r.ordered, a)
	return nil
}

// MustRegister is Register for startup wiring, where a duplicate registration
// should stop the process.
func (r *Registry) MustRegister(a Adapter) {
	if err := r.Register(a); err != nil {
		panic(err)
	}
}

// Ordered returns the adapters in registration order. Callers must not mutate
// the returned slice.
func (r *Registry) Ordered() []Adapter {
	return r.ordered
}

// Lookup returns the adapter for a domain name.
func (r *Registry) Lookup(name string) (Adapter, bool) {
	a, ok := r.byName[name]
	return a, ok
}
