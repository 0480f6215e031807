package scenario

import "sync"

// Store exposes scenario retrieval and the in-memory custom set.
type Store interface {
	List() []Scenario
	FindByID(id string) (Scenario, bool)
	ReplaceCustom(items []Scenario)
	SaveCustom(item Scenario)
	UpdateCustom(id string, item Scenario) bool
	DeleteCustom(id string) bool
}

// MemoryStore keeps the built-in scenarios plus a mutable custom set.
// Custom mutations touch memory only; the persistence collaborator stays
// the source of truth and is read through ReplaceCustom.
type MemoryStore struct {
	mu      sync.RWMutex
	builtin []Scenario
	custom  []Scenario
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied built-ins.
func NewMemoryStore(builtin []Scenario) *MemoryStore {
	return &MemoryStore{builtin: append([]Scenario(nil), builtin...)}
}

// List returns built-in scenarios followed by the custom set.
func (s *MemoryStore) List() []Scenario {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Scenario, 0, len(s.builtin)+len(s.custom))
	out = append(out, s.builtin...)
	out = append(out, s.custom...)
	return out
}

// FindByID looks up a scenario by identifier, built-ins first.
func (s *MemoryStore) FindByID(id string) (Scenario, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.builtin {
		if item.ID == id {
			return item, true
		}
	}
	for _, item := range s.custom {
		if item.ID == id {
			return item, true
		}
	}
	return Scenario{}, false
}

// ReplaceCustom swaps in a freshly fetched custom set.
func (s *MemoryStore) ReplaceCustom(items []Scenario) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.custom = append([]Scenario(nil), items...)
}

// SaveCustom appends a custom scenario to the in-memory set.
func (s *MemoryStore) SaveCustom(item Scenario) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.custom = append(s.custom, item)
}

// UpdateCustom replaces the custom scenario with the given id.
func (s *MemoryStore) UpdateCustom(id string, item Scenario) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.custom {
		if s.custom[i].ID == id {
			item.ID = id
			s.custom[i] = item
			return true
		}
	}
	return false
}

// DeleteCustom removes the custom scenario with the given id.
func (s *MemoryStore) DeleteCustom(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.custom {
		if s.custom[i].ID == id {
			s.custom = append(s.custom[:i], s.custom[i+1:]...)
			return true
		}
	}
	return false
}
