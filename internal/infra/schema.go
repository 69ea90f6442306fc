package infra

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Statements run one at a time: pgx uses the extended query protocol, which
// rejects multi-statement strings.
var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS users (
        id          UUID PRIMARY KEY,
        name        TEXT NOT NULL,
        phone       TEXT NOT NULL UNIQUE,
        pin_hash    BYTEA NOT NULL,
        language    TEXT NOT NULL DEFAULT 'en',
        created_at  TIMESTAMPTZ NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS accounts (
        id              UUID PRIMARY KEY,
        user_id         UUID NOT NULL REFERENCES users (id),
        account_number  TEXT NOT NULL UNIQUE,
        balance         NUMERIC(14,2) NOT NULL DEFAULT 0,
        account_type    TEXT NOT NULL DEFAULT 'savings'
    )`,
	`CREATE INDEX IF NOT EXISTS accounts_user_idx ON accounts (user_id)`,
	`CREATE TABLE IF NOT EXISTS transactions (
        id          UUID PRIMARY KEY,
        account_id  UUID NOT NULL REFERENCES accounts (id),
        type        TEXT NOT NULL,
        amount      NUMERIC(14,2) NOT NULL,
        recipient   TEXT NOT NULL DEFAULT '',
        description TEXT NOT NULL DEFAULT '',
        created_at  TIMESTAMPTZ NOT NULL,
        status      TEXT NOT NULL DEFAULT 'completed'
    )`,
	`CREATE INDEX IF NOT EXISTS transactions_account_created_idx
        ON transactions (account_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS auth_logs (
        id           UUID PRIMARY KEY,
        user_id      UUID NOT NULL REFERENCES users (id),
        attempted_at TIMESTAMPTZ NOT NULL,
        success      BOOLEAN NOT NULL,
        method       TEXT NOT NULL DEFAULT 'pin'
    )`,
	`CREATE INDEX IF NOT EXISTS auth_logs_user_idx ON auth_logs (user_id)`,
}

// EnsureSchema creates the application tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	for _, ddl := range schemaDDL {
		if _, err := db.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
