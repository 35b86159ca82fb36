// Package registry provides an ordered engine registry with a guarded
// current-engine selector. Availability is fixed when the registry is
// built: engines that fail to construct are simply never registered, so
// a selection can only name a working backend.
package registry

import (
	"fmt"
	"sync"
)

// Registry holds an ordered set of engines keyed by id.
// Register calls happen at startup; Set/Next/Current may race with a
// running loop and are guarded.
type Registry[T any] struct {
	mu      sync.RWMutex
	ids     []string
	items   map[string]T
	current string
}

// New creates an empty registry.
func New[T any]() *Registry[T] {
	return &Registry[T]{items: make(map[string]T)}
}

// Register adds an engine under id. The first registered engine becomes
// current. Registration order defines the Next() cycle order.
func (r *Registry[T]) Register(id string, item T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[id]; !exists {
		r.ids = append(r.ids, id)
	}
	r.items[id] = item
	if r.current == "" {
		r.current = id
	}
}

// Len returns the number of registered engines.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ids)
}

// IDs returns registered ids in registration order.
func (r *Registry[T]) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.ids))
	copy(out, r.ids)
	return out
}

// Has reports whether id is registered.
func (r *Registry[T]) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.items[id]
	return ok
}

// Get returns the engine registered under id.
func (r *Registry[T]) Get(id string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	return item, ok
}

// Current returns the current id and engine.
func (r *Registry[T]) Current() (string, T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var zero T
	if r.current == "" {
		return "", zero, fmt.Errorf("registry is empty")
	}
	return r.current, r.items[r.current], nil
}

// CurrentID returns the current id, or "" for an empty registry.
func (r *Registry[T]) CurrentID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Set switches the current engine. Unknown ids are rejected.
func (r *Registry[T]) Set(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return fmt.Errorf("unknown engine %q", id)
	}
	r.current = id
	return nil
}

// Next cycles to the engine after the current one in registration order,
// wrapping at the end, and returns its id.
func (r *Registry[T]) Next() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.ids) == 0 {
		return "", fmt.Errorf("registry is empty")
	}
	idx := 0
	for i, id := range r.ids {
		if id == r.current {
			idx = i
			break
		}
	}
	r.current = r.ids[(idx+1)%len(r.ids)]
	return r.current, nil
}
