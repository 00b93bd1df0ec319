package syncs

import (
	"slices"
	"sync"
)

// Map is a mutex guarded map for read-mostly registries.
type Map[K comparable, V any] struct {
	m  map[K]V
	mu *sync.RWMutex
}

func New[K comparable, V any]() Map[K, V] {
	return Map[K, V]{
		m:  make(map[K]V),
		mu: &sync.RWMutex{},
	}
}

func (m *Map[K, V]) Delete(key K) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.m, key)
}

func (m *Map[K, V]) Load(key K) (value V, ok bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok = m.m[key]
	return value, ok
}

// LoadOrStore stores value only if key is absent.
// Loaded is true if the value was already present.
func (m *Map[K, V]) LoadOrStore(key K, value V) (actual V, loaded bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.m[key]
	if !ok {
		m.m[key] = value
		return value, false
	}
	return v, true
}

func (m *Map[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.m)
}

// Keys returns a sorted snapshot of keys.
func Keys[K interface {
	comparable
	~string
}, V any](m *Map[K, V]) []K {
	m.mu.RLock()
	keys := make([]K, 0, len(m.m))
	for k := range m.m {
		keys = append(keys, k)
	}
	m.mu.RUnlock()

	slices.Sort(keys)
	return keys
}
