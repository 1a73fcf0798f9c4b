package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

const schemaDeals = `
CREATE TABLE IF NOT EXISTS deals (
	asin TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	price_cents INTEGER NOT NULL,
	original_price_cents INTEGER NOT NULL,
	discount_percent INTEGER NOT NULL,
	url TEXT NOT NULL,
	image_url TEXT NOT NULL DEFAULT '',
	posted INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL,
	posted_at INTEGER
)`

const schemaSweepRuns = `
CREATE TABLE IF NOT EXISTS sweep_runs (
	id TEXT PRIMARY KEY,
	started_at INTEGER NOT NULL,
	finished_at INTEGER NOT NULL,
	keywords TEXT NOT NULL,
	deals_found INTEGER NOT NULL,
	deals_saved INTEGER NOT NULL
)`

const indexUnposted = `
CREATE INDEX IF NOT EXISTS idx_deals_unposted ON deals (posted, discount_percent)`

// Migrate creates or upgrades the database schema. It is idempotent and
// safe to run on every startup.
func (s *Store) Migrate(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return fmt.Errorf("store is not open")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	statements := []string{schemaDeals, schemaSweepRuns, indexUnposted}
	for _, stmt := range statements {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}

	// Columns added after the initial release. Existing databases pick
	// them up here without a migration table.
	if err := s.ensureColumn(ctx, "deals", "image_url", "TEXT NOT NULL DEFAULT ''"); err != nil {
		return err
	}
	if err := s.ensureColumn(ctx, "deals", "posted_at", "INTEGER"); err != nil {
		return err
	}

	return nil
}

func (s *Store) ensureColumn(ctx context.Context, table, column, definition string) error {
	rows, err := s.DB.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return fmt.Errorf("inspect table %s: %w", table, err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup

	for rows.Next() {
		var (
			cid        int
			name       string
			colType    string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &defaultVal, &pk); err != nil {
			return fmt.Errorf("scan table info for %s: %w", table, err)
		}
		if strings.EqualFold(name, column) {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate table info for %s: %w", table, err)
	}

	alter := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition)
	if _, err := s.DB.ExecContext(ctx, alter); err != nil {
		return fmt.Errorf("add column %s.%s: %w", table, column, err)
	}
	return nil
}
