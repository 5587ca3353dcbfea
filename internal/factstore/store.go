// Package factstore accumulates externally supplied facts, keyed by resource
// identifier, for replay into the compiler as reference data.
//
// The store is single-writer: exactly one test drives a given store at a time,
// so no locking is carried.
package factstore

// Store maps resource identifiers to named fact values.
type Store struct {
	facts map[string]map[string]any
}

// New creates a new, empty fact store.
func New() *Store {
	return &Store{facts: make(map[string]map[string]any)}
}

// Add records a fact for a resource. Facts accumulate across calls; a repeated
// (resource, name) pair overwrites the previous value.
func (s *Store) Add(resourceID, name string, value any) {
	m, ok := s.facts[resourceID]
	if !ok {
		m = make(map[string]any)
		s.facts[resourceID] = m
	}
	m[name] = value
}

// ForResource returns a copy of the facts recorded for a resource.
func (s *Store) ForResource(resourceID string) map[string]any {
	out := make(map[string]any, len(s.facts[resourceID]))
	for k, v := range s.facts[resourceID] {
		out[k] = v
	}
	return out
}

// All returns a deep copy of every recorded fact.
func (s *Store) All() map[string]map[string]any {
	out := make(map[string]map[string]any, len(s.facts))
	for id := range s.facts {
		out[id] = s.ForResource(id)
	}
	return out
}

// Reset drops every recorded fact.
func (s *Store) Reset() {
	s.facts = make(map[string]map[string]any)
}
