package identity

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"
)

// TokenPurpose distinguishes the flows a one-time token may serve.
type TokenPurpose string

const (
	// TokenPurposeVerifyEmail marks tokens mailed for email verification.
	TokenPurposeVerifyEmail TokenPurpose = "verify_email"
	// TokenPurposePasswordReset marks tokens mailed for password resets.
	TokenPurposePasswordReset TokenPurpose = "password_reset"
)

// TokenStore issues consume-once tokens that bind a mailed link to an account.
type TokenStore interface {
	// Issue creates a new token for the account with the configured TTL.
	Issue(ctx context.Context, accountID string, purpose TokenPurpose) (string, error)
	// Consume validates and invalidates an issued token, returning its account.
	Consume(ctx context.Context, token string, purpose TokenPurpose) (string, error)
}

type memoryTokenEntry struct {
	accountID string
	purpose   TokenPurpose
	expiresAt time.Time
}

type memoryTokenStore struct {
	mutex     sync.Mutex
	entries   map[string]memoryTokenEntry
	ttl       time.Duration
	now       func() time.Time
	tokenSize int
}

// NewMemoryTokenStore constructs an in-memory TokenStore with the provided TTL.
func NewMemoryTokenStore(ttl time.Duration) TokenStore {
	return &memoryTokenStore{
		entries:   make(map[string]memoryTokenEntry),
		ttl:       ttl,
		now:       time.Now,
		tokenSize: 32,
	}
}

func (store *memoryTokenStore) Issue(ctx context.Context, accountID string, purpose TokenPurpose) (string, error) {
	token, err := store.randomToken()
	if err != nil {
		return "", err
	}
	store.mutex.Lock()
	defer store.mutex.Unlock()
	store.purgeExpiredLocked()
	store.entries[token] = memoryTokenEntry{
		accountID: accountID,
		purpose:   purpose,
		expiresAt: store.now().Add(store.ttl),
	}
	return token, nil
}

func (store *memoryTokenStore) Consume(ctx context.Context, token string, purpose TokenPurpose) (string, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	entry, ok := store.entries[token]
	if !ok || entry.purpose != purpose {
		store.purgeExpiredLocked()
		return "", ErrTokenNotFound
	}
	delete(store.entries, token)
	if store.now().After(entry.expiresAt) {
		store.purgeExpiredLocked()
		return "", ErrTokenExpired
	}
	store.purgeExpiredLocked()
	return entry.accountID, nil
}

func (store *memoryTokenStore) purgeExpiredLocked() {
	if len(store.entries) == 0 {
		return
	}
	now := store.now()
	for token, entry := range store.entries {
		if now.After(entry.expiresAt) {
			delete(store.entries, token)
		}
	}
}

func (store *memoryTokenStore) randomToken() (string, error) {
	buffer := make([]byte, store.tokenSize)
	if _, err := rand.Read(buffer); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buffer), nil
}
