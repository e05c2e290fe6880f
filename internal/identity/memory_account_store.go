package identity

import (
	"context"
	"strings"
	"sync"
)

// MemoryAccountStore is an in-memory store intended for tests and dev.
type MemoryAccountStore struct {
	mutex   sync.Mutex
	byID    map[string]Account
	byEmail map[string]string
}

// NewMemoryAccountStore creates a new in-memory account store.
func NewMemoryAccountStore() *MemoryAccountStore {
	return &MemoryAccountStore{
		byID:    make(map[string]Account),
		byEmail: make(map[string]string),
	}
}

// Create inserts a new account, rejecting duplicate emails.
func (store *MemoryAccountStore) Create(ctx context.Context, account Account) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	emailKey := strings.ToLower(account.Email)
	if _, exists := store.byEmail[emailKey]; exists {
		return ErrAccountExists
	}
	store.byID[account.ID] = account
	store.byEmail[emailKey] = account.ID
	return nil
}

// GetByEmail returns the account for an email address.
func (store *MemoryAccountStore) GetByEmail(ctx context.Context, email string) (Account, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	accountID, ok := store.byEmail[strings.ToLower(email)]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return store.byID[accountID], nil
}

// GetByID returns the account for an identifier.
func (store *MemoryAccountStore) GetByID(ctx context.Context, accountID string) (Account, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	account, ok := store.byID[accountID]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return account, nil
}

// MarkVerified flips the email-verified flag. Idempotent.
func (store *MemoryAccountStore) MarkVerified(ctx context.Context, accountID string) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	account, ok := store.byID[accountID]
	if !ok {
		return ErrAccountNotFound
	}
	account.EmailVerified = true
	store.byID[accountID] = account
	return nil
}
