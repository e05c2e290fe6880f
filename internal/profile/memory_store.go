package profile

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory profile store intended for tests and dev.
type MemoryStore struct {
	mutex    sync.Mutex
	profiles map[string]Profile
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string]Profile)}
}

// Get returns the profile for an account ID.
func (store *MemoryStore) Get(ctx context.Context, accountID string) (Profile, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	record, ok := store.profiles[accountID]
	if !ok {
		return Profile{}, ErrProfileNotFound
	}
	return record, nil
}

// Put writes the profile for an account ID, replacing any previous record.
func (store *MemoryStore) Put(ctx context.Context, accountID string, record Profile) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	store.profiles[accountID] = record
	return nil
}
