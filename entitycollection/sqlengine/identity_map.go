package sqlengine

import "sync"

type identityKey struct {
	kind string
	id   any
}

// IdentityMap tracks one instance per (kind, identity) pair.
// It implements entitycollection.EntityTracker and is safe for concurrent use.
// Identities must be comparable, e.g. uuid.UUID, strings or integers.
type IdentityMap struct {
	mu       sync.RWMutex
	entities map[identityKey]any
}

// NewIdentityMap creates an empty IdentityMap.
func NewIdentityMap() *IdentityMap {
	return &IdentityMap{entities: make(map[identityKey]any)}
}

// Attach starts tracking entity. An already tracked instance is replaced.
func (m *IdentityMap) Attach(kind string, id any, entity any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entities[identityKey{kind: kind, id: id}] = entity
}

// Lookup returns the tracked instance.
func (m *IdentityMap) Lookup(kind string, id any) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entity, ok := m.entities[identityKey{kind: kind, id: id}]

	return entity, ok
}

// Detach stops tracking; unknown identities are ignored.
func (m *IdentityMap) Detach(kind string, id any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entities, identityKey{kind: kind, id: id})
}

func (m *IdentityMap) Contains(kind string, id any) bool {
	_, ok := m.Lookup(kind, id)
	return ok
}

// Len returns the number of tracked entities.
func (m *IdentityMap) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entities)
}

// Clear detaches everything.
func (m *IdentityMap) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	clear(m.entities)
}
