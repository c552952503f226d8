package subscription

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps subscriptions in process memory. Used for development
// and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	byEmail map[string]Subscription
	byKey   map[string]string
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byEmail: make(map[string]Subscription),
		byKey:   make(map[string]string),
		now:     time.Now,
	}
}

func (m *MemoryStore) Upsert(_ context.Context, sub Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if prev, ok := m.byEmail[sub.Email]; ok {
		sub.CreatedAt = prev.CreatedAt
		if prev.APIKey != sub.APIKey {
			delete(m.byKey, prev.APIKey)
		}
	}
	m.byEmail[sub.Email] = sub
	m.byKey[sub.APIKey] = sub.Email
	return nil
}

func (m *MemoryStore) GetByEmail(_ context.Context, email string) (*Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sub, ok := m.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	return &sub, nil
}

func (m *MemoryStore) GetByAPIKey(_ context.Context, apiKey string) (*Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	email, ok := m.byKey[apiKey]
	if !ok {
		return nil, ErrNotFound
	}
	sub := m.byEmail[email]
	return &sub, nil
}

func (m *MemoryStore) APIKeyExists(_ context.Context, apiKey string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.byKey[apiKey]
	return ok, nil
}

func (m *MemoryStore) ReserveUsage(_ context.Context, email string, limit int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sub, ok := m.byEmail[email]
	if !ok {
		return ErrNotFound
	}
	if !QuotaLeft(sub.GemsUsed, limit) {
		return ErrQuotaExceeded
	}
	sub.GemsUsed++
	sub.UpdatedAt = m.now().UTC()
	m.byEmail[email] = sub
	return nil
}

func (m *MemoryStore) ReleaseUsage(_ context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sub, ok := m.byEmail[email]
	if !ok {
		return ErrNotFound
	}
	if sub.GemsUsed > 0 {
		sub.GemsUsed--
		sub.UpdatedAt = m.now().UTC()
		m.byEmail[email] = sub
	}
	return nil
}

// Len returns the number of stored subscriptions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byEmail)
}
