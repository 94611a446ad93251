package render

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry stores engine factories by template file extension, providing
// discovery and duplication safeguards. A view renderer asks it which
// extensions it can render and builds one engine per template root.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a factory for ext ("tpl" and ".tpl" are equivalent).
// Duplicate extensions return an error.
func (r *Registry) Register(ext string, factory Factory) error {
	if factory == nil {
		return fmt.Errorf("render: engine factory is required")
	}
	name := normalizeExtension(ext)
	if name == "" {
		return fmt.Errorf("render: engine extension is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("render: engine for %q already registered", name)
	}

	r.factories[name] = factory
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(ext string, factory Factory) {
	if err := r.Register(ext, factory); err != nil {
		panic(err)
	}
}

// Get retrieves a factory by extension.
func (r *Registry) Get(ext string) (Factory, error) {
	name := normalizeExtension(ext)

	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("render: engine for %q not found", name)
	}
	return factory, nil
}

// MustGet panics if the factory is missing.
func (r *Registry) MustGet(ext string) Factory {
	factory, err := r.Get(ext)
	if err != nil {
		panic(err)
	}
	return factory
}

// List returns the sorted registered extensions, without leading dots.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether an engine is registered for ext.
func (r *Registry) Has(ext string) bool {
	name := normalizeExtension(ext)

	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.factories[name]
	return ok
}

func normalizeExtension(ext string) string {
	return strings.TrimPrefix(strings.TrimSpace(ext), ".")
}
