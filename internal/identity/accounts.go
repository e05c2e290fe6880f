package identity

import (
	"context"
	"time"
)

// Account is the persisted credential record behind a Session.
type Account struct {
	ID            string
	Email         string
	PasswordHash  string
	EmailVerified bool
	PhotoURL      string
	CreatedAt     time.Time
}

// AccountStore persists and retrieves credential accounts.
type AccountStore interface {
	Create(ctx context.Context, account Account) error
	GetByEmail(ctx context.Context, email string) (Account, error)
	GetByID(ctx context.Context, accountID string) (Account, error)
	MarkVerified(ctx context.Context, accountID string) error
}
