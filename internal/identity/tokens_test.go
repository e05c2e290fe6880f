package identity

import (
	"context"
	"testing"
	"time"
)

func TestMemoryTokenStoreIssueAndConsume(t *testing.T) {
	t.Parallel()
	store := NewMemoryTokenStore(2 * time.Minute).(*memoryTokenStore)
	store.now = func() time.Time { return time.Unix(1000, 0) }

	token, err := store.Issue(context.Background(), "account-1", TokenPurposeVerifyEmail)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token")
	}

	accountID, consumeErr := store.Consume(context.Background(), token, TokenPurposeVerifyEmail)
	if consumeErr != nil {
		t.Fatalf("consume token: %v", consumeErr)
	}
	if accountID != "account-1" {
		t.Fatalf("expected account-1, got %q", accountID)
	}

	if _, err := store.Consume(context.Background(), token, TokenPurposeVerifyEmail); err != ErrTokenNotFound {
		t.Fatalf("expected ErrTokenNotFound on second consume, got %v", err)
	}
}

func TestMemoryTokenStorePurposeMismatch(t *testing.T) {
	t.Parallel()
	store := NewMemoryTokenStore(2 * time.Minute)

	token, err := store.Issue(context.Background(), "account-1", TokenPurposeVerifyEmail)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	if _, err := store.Consume(context.Background(), token, TokenPurposePasswordReset); err != ErrTokenNotFound {
		t.Fatalf("expected ErrTokenNotFound for wrong purpose, got %v", err)
	}
}

func TestMemoryTokenStoreExpiry(t *testing.T) {
	t.Parallel()
	store := NewMemoryTokenStore(time.Minute).(*memoryTokenStore)
	current := time.Unix(1000, 0)
	store.now = func() time.Time { return current }

	token, err := store.Issue(context.Background(), "account-1", TokenPurposePasswordReset)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	current = current.Add(2 * time.Minute)

	if _, err := store.Consume(context.Background(), token, TokenPurposePasswordReset); err != ErrTokenExpired {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}
