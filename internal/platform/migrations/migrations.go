// Package migrations applies the portal's database schema in order. Each
// statement is idempotent so Apply can run at every startup.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

var statements = []string{
	`CREATE TABLE IF NOT EXISTS portal_users (
		id            TEXT PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL DEFAULT 'citizen',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS portal_schemes (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		eligibility TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS portal_applications (
		id            TEXT PRIMARY KEY,
		user_id       TEXT NOT NULL REFERENCES portal_users(id),
		scheme_id     TEXT NOT NULL REFERENCES portal_schemes(id),
		form_data     TEXT NOT NULL DEFAULT '',
		status        TEXT NOT NULL DEFAULT 'pending',
		admin_remarks TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		reviewed_at   TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_portal_applications_user ON portal_applications(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_portal_applications_status ON portal_applications(status)`,
}

// Apply executes all migration statements against db.
func Apply(ctx context.Context, db *sql.DB) error {
	for i, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
