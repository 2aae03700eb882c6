package filesystem

import "slices"

// orderedMap is a name-keyed map that remembers insertion order.
// Re-storing an existing key keeps its original position.
type orderedMap[V any] struct {
	keys []string
	vals map[string]V
}

func newOrderedMap[V any]() *orderedMap[V] {
	return &orderedMap[V]{vals: make(map[string]V)}
}

func (m *orderedMap[V]) Load(key string) (v V, ok bool) {
	v, ok = m.vals[key]
	return
}

func (m *orderedMap[V]) Has(key string) bool {
	_, ok := m.vals[key]
	return ok
}

func (m *orderedMap[V]) Store(key string, v V) {
	if _, ok := m.vals[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = v
}

// Delete removes key and reports whether it was present.
func (m *orderedMap[V]) Delete(key string) bool {
	if _, ok := m.vals[key]; !ok {
		return false
	}
	delete(m.vals, key)
	if i := slices.Index(m.keys, key); i >= 0 {
		m.keys = slices.Delete(m.keys, i, i+1)
	}
	return true
}

func (m *orderedMap[V]) Len() int {
	return len(m.keys)
}

// Keys returns a copy of the keys in insertion order.
func (m *orderedMap[V]) Keys() []string {
	return slices.Clone(m.keys)
}
