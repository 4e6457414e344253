package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry maps connector type names to constructors. Instances are owned by the
// composition root and handed to whatever needs name-based construction; nothing
// in this module registers into package-global state.
type Registry[C any] struct {
	mu           sync.RWMutex
	constructors map[string]C
}

// New allocates an empty registry.
func New[C any]() *Registry[C] {
	return &Registry[C]{constructors: make(map[string]C)}
}

// Register adds a constructor under a type name. Names are case-insensitive and
// duplicates are rejected.
func (r *Registry[C]) Register(name string, constructor C) error {
	if name == "" {
		return fmt.Errorf("registry: connector type name required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := normalize(name)
	if _, exists := r.constructors[key]; exists {
		return fmt.Errorf("registry: connector type %s already registered", name)
	}

	r.constructors[key] = constructor
	return nil
}

// Get fetches a constructor by type name.
func (r *Registry[C]) Get(name string) (C, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	constructor, ok := r.constructors[normalize(name)]
	return constructor, ok
}

// Names returns the sorted type names known to this registry.
func (r *Registry[C]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.constructors))
	for name := range r.constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalize(name string) string {
	return strings.ToLower(name)
}
