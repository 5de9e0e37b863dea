// Package typed provides small generic collection wrappers shared across
// the front end's passes.
package typed

import "fmt"

// Map is a keyed store for per-node bookkeeping that a pass wants to
// accumulate once and consult many times afterwards — the annotator's
// declared/hint/mangled-callee tables being the motivating case. Generalized
// from the teacher's node-keyed source map (source.Map[T comparable], which
// fixes its value type to Span) into a map generic over both key and value,
// since AstIds key several different value types here rather than just
// source spans.
type Map[K comparable, V any] struct {
	items map[K]V
}

// NewMap constructs an empty typed map.
func NewMap[K comparable, V any]() Map[K, V] {
	return Map[K, V]{items: make(map[K]V)}
}

// Put registers val under key, panicking if key is already present. Mirrors
// the teacher's source.Map.Put: a pass computing a node's value once and
// recording it is a logic error if it ever recomputes and re-records, and
// that error is worth surfacing immediately rather than silently
// overwriting a prior answer.
func (m *Map[K, V]) Put(key K, val V) {
	if _, ok := m.items[key]; ok {
		panic(fmt.Sprintf("typed map key already exists: %v", key))
	}

	m.items[key] = val
}

// Has checks whether key has a recorded value.
func (m *Map[K, V]) Has(key K) bool {
	_, ok := m.items[key]
	return ok
}

// Get looks up the value recorded under key. Unlike the teacher's
// source.Map.Get, this never panics on a miss: callers here (e.g.
// Annotator.TypeOf) query nodes that legitimately may not have been
// annotated yet, so a missing key is an ordinary negative result rather
// than a programming error.
func (m *Map[K, V]) Get(key K) (V, bool) {
	v, ok := m.items[key]
	return v, ok
}

// Len returns the number of entries recorded.
func (m *Map[K, V]) Len() int {
	return len(m.items)
}
