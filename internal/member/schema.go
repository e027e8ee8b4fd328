package member

import (
	"context"
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS members (
	id UUID PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	phone_number TEXT NOT NULL,
	zipcode TEXT NOT NULL DEFAULT '',
	street_address TEXT NOT NULL DEFAULT '',
	detailed_address TEXT NOT NULL DEFAULT '',
	version INT NOT NULL DEFAULT 1,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS credentials (
	member_id UUID PRIMARY KEY REFERENCES members(id) ON DELETE CASCADE,
	password_hash TEXT NOT NULL
);
`

// Migrate creates the member read model tables if they do not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create member tables: %w", err)
	}
	return nil
}
