package gems

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps gems in process memory. Used for development and
// tests.
type MemoryStore struct {
	mu   sync.RWMutex
	gems []Gem
	byID map[string]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]int)}
}

func (m *MemoryStore) Create(_ context.Context, gem Gem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.byID[gem.ID] = len(m.gems)
	m.gems = append(m.gems, gem)
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Gem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	gem := m.gems[i]
	return &gem, nil
}

// List returns the newest gems first; ties keep the latest insert first.
func (m *MemoryStore) List(_ context.Context, limit int) ([]Gem, error) {
	m.mu.RLock()
	out := slices.Clone(m.gems)
	m.mu.RUnlock()

	slices.Reverse(out)
	slices.SortStableFunc(out, func(a, b Gem) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Len returns the number of stored gems.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.gems)
}
