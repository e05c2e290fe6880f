package identitypg

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates tables if they do not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS onetime_tokens (
    token TEXT PRIMARY KEY,
    account_id TEXT NOT NULL,
    purpose TEXT NOT NULL,
    expires_unix BIGINT NOT NULL,
    issued_at_unix BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_onetime_tokens_account ON onetime_tokens (account_id);
`)
	return err
}
