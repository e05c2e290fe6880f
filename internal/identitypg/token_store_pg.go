// Package identitypg holds PostgreSQL-native pieces of the identity
// provider. Unlike the GORM account store, the one-time token store is
// latency-sensitive (every mailed link hits it) and keeps plain SQL on a
// pgx pool.
package identitypg

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/includeshubhamgenius/skill-share/internal/identity"
)

const tokenByteLength = 32

// PostgresTokenStore persists consume-once tokens in PostgreSQL.
type PostgresTokenStore struct {
	pool *pgxpool.Pool
	ttl  time.Duration
}

// NewPostgresTokenStore constructs a Postgres store with the given token TTL.
func NewPostgresTokenStore(pool *pgxpool.Pool, ttl time.Duration) *PostgresTokenStore {
	return &PostgresTokenStore{pool: pool, ttl: ttl}
}

// Issue inserts a new token row and returns the token text.
func (store *PostgresTokenStore) Issue(ctx context.Context, accountID string, purpose identity.TokenPurpose) (string, error) {
	token, tokenErr := store.randomToken()
	if tokenErr != nil {
		return "", tokenErr
	}
	now := time.Now().UTC()
	_, execErr := store.pool.Exec(ctx, `
INSERT INTO onetime_tokens (token, account_id, purpose, expires_unix, issued_at_unix)
VALUES ($1, $2, $3, $4, $5)
`, token, accountID, string(purpose), now.Add(store.ttl).Unix(), now.Unix())
	if execErr != nil {
		return "", execErr
	}
	return token, nil
}

// Consume deletes the token row and returns its account, enforcing purpose
// and expiry. Deletion first makes the consume-once guarantee atomic.
func (store *PostgresTokenStore) Consume(ctx context.Context, token string, purpose identity.TokenPurpose) (string, error) {
	var accountID string
	var storedPurpose string
	var expiresUnix int64
	row := store.pool.QueryRow(ctx, `
DELETE FROM onetime_tokens
WHERE token = $1
RETURNING account_id, purpose, expires_unix
`, token)
	if scanErr := row.Scan(&accountID, &storedPurpose, &expiresUnix); scanErr != nil {
		if errors.Is(scanErr, pgx.ErrNoRows) {
			return "", identity.ErrTokenNotFound
		}
		return "", scanErr
	}
	if storedPurpose != string(purpose) {
		return "", identity.ErrTokenNotFound
	}
	if time.Unix(expiresUnix, 0).Before(time.Now().UTC()) {
		return "", identity.ErrTokenExpired
	}
	return accountID, nil
}

func (store *PostgresTokenStore) randomToken() (string, error) {
	randomBytes := make([]byte, tokenByteLength)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(randomBytes), nil
}
