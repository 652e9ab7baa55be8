// Package registry provides a generic thread-safe registry for values indexed by key.
package registry

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sync"
)

// Sentinel errors for registry operations.
var (
	// ErrNotFound indicates no value is registered under the key.
	ErrNotFound = errors.New("not registered")

	// ErrDuplicate indicates Register was called twice for one key.
	ErrDuplicate = errors.New("already registered")
)

// Registry is a thread-safe registry for values indexed by key.
// It uses sync.RWMutex for read-heavy workloads: values are registered
// at startup and looked up when pipelines are constructed.
type Registry[K cmp.Ordered, V any] struct {
	mu      sync.RWMutex
	entries map[K]V
}

// New creates a new empty registry.
func New[K cmp.Ordered, V any]() *Registry[K, V] {
	return &Registry[K, V]{
		entries: make(map[K]V),
	}
}

// Register adds a value. It fails if the key is already taken.
func (r *Registry[K, V]) Register(key K, value V) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[key]; exists {
		return fmt.Errorf("%v: %w", key, ErrDuplicate)
	}
	r.entries[key] = value
	return nil
}

// MustRegister is Register that panics on duplicates.
// Intended for package init.
func (r *Registry[K, V]) MustRegister(key K, value V) {
	if err := r.Register(key, value); err != nil {
		panic("registry: " + err.Error())
	}
}

// Put adds or replaces a value.
func (r *Registry[K, V]) Put(key K, value V) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key] = value
}

// Get returns the value for a key and whether it exists.
func (r *Registry[K, V]) Get(key K) (V, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.entries[key]
	return v, ok
}

// Lookup returns the value for a key or an error wrapping ErrNotFound.
func (r *Registry[K, V]) Lookup(key K) (V, error) {
	v, ok := r.Get(key)
	if !ok {
		return v, fmt.Errorf("%v: %w", key, ErrNotFound)
	}
	return v, nil
}

// Keys returns all keys in ascending order.
func (r *Registry[K, V]) Keys() []K {
	r.mu.RLock()
	keys := make([]K, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	r.mu.RUnlock()
	slices.Sort(keys)
	return keys
}
