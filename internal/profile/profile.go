// Package profile stores application-owned user profiles, keyed by the
// session identifier of the account they describe. Profiles live in the
// "users" namespace, at most one per account; they are written once by
// profile setup and read by the login bootstrap.
package profile

import (
	"context"
	"errors"
	"time"
)

// ErrProfileNotFound distinguishes a missing profile from a lookup failure.
// The login bootstrap branches on it.
var ErrProfileNotFound = errors.New("profile_store.not_found")

// Namespace is the fixed collection name for profile records.
const Namespace = "users"

// Profile describes a user, distinct from the identity provider's session.
type Profile struct {
	Name      string
	Username  string
	DOB       string
	Email     string
	CreatedAt time.Time
}

// Store reads and writes profiles by account ID. Always one-shot reads,
// no listeners, no transactions.
type Store interface {
	Get(ctx context.Context, accountID string) (Profile, error)
	Put(ctx context.Context, accountID string, record Profile) error
}
