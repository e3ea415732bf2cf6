package postgres

import (
	"context"
	"fmt"
)

// schemaStatements create the entity tables. Idempotent so startup can run
// them unconditionally; real migrations would replace this once the schema
// starts changing.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		email_address TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		status      TEXT NOT NULL DEFAULT 'PENDING',
		modified    TIMESTAMPTZ NOT NULL DEFAULT now(),
		created     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS contents (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		slug        TEXT NOT NULL UNIQUE,
		content     TEXT NOT NULL,
		cover_image TEXT NOT NULL DEFAULT '',
		tags        TEXT NOT NULL DEFAULT '',
		meta        TEXT NOT NULL DEFAULT '',
		category_id TEXT NOT NULL REFERENCES categories(id),
		status      TEXT NOT NULL DEFAULT 'PENDING',
		user_id     TEXT NOT NULL REFERENCES users(id),
		modified    TIMESTAMPTZ NOT NULL DEFAULT now(),
		created     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS images (
		id           TEXT PRIMARY KEY,
		description  TEXT NOT NULL DEFAULT '',
		content_type TEXT NOT NULL,
		size         BIGINT NOT NULL,
		tags         TEXT NOT NULL DEFAULT '',
		path         TEXT NOT NULL,
		preview_path TEXT NOT NULL,
		status       TEXT NOT NULL DEFAULT 'PENDING',
		user_id      TEXT NOT NULL REFERENCES users(id),
		modified     TIMESTAMPTZ NOT NULL DEFAULT now(),
		created      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_contents_status ON contents (status)`,
	`CREATE INDEX IF NOT EXISTS idx_contents_user ON contents (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_contents_modified ON contents (modified DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_categories_status ON categories (status)`,
	`CREATE INDEX IF NOT EXISTS idx_images_user ON images (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_images_modified ON images (modified DESC)`,
}

// EnsureSchema creates the tables and indexes if they do not exist.
func (s *Storage) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
