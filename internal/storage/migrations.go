package storage

import (
	"context"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/jmoiron/sqlx"
)

const (
	// CurrentSchemaVersion tracks the database schema version
	CurrentSchemaVersion = "1.1.0"
)

// Migration represents a database schema migration
type Migration struct {
	Version string
	Up      string
	Down    string
}

// AllMigrations contains all database migrations in order
var AllMigrations = []Migration{
	{
		Version: "1.0.0",
		Up:      migrationV1Up,
		Down:    migrationV1Down,
	},
	{
		Version: "1.1.0",
		Up:      migrationV11Up,
		Down:    migrationV11Down,
	},
}

const migrationV1Up = `
CREATE TABLE IF NOT EXISTS schema_version (
    version TEXT PRIMARY KEY,
    applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS tag_categories (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS tags (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    category INTEGER NOT NULL,
    FOREIGN KEY (category) REFERENCES tag_categories(id),
    UNIQUE(category, name)
);

CREATE INDEX IF NOT EXISTS idx_tags_category ON tags(category);

-- AUTOINCREMENT keeps ids of deleted items from being handed out again.
CREATE TABLE IF NOT EXISTS items (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    path TEXT NOT NULL UNIQUE,
    extension TEXT NOT NULL DEFAULT '',
    title TEXT NOT NULL,
    description TEXT,
    thumbnail TEXT,
    added DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    last_verified DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

const migrationV1Down = `
DROP TABLE IF EXISTS items;
DROP INDEX IF EXISTS idx_tags_category;
DROP TABLE IF EXISTS tags;
DROP TABLE IF EXISTS tag_categories;
DROP TABLE IF EXISTS schema_version;
`

// Unfiltered search orders by (added DESC, id DESC).
const migrationV11Up = `
CREATE INDEX IF NOT EXISTS idx_items_added ON items(added DESC, id DESC);
CREATE INDEX IF NOT EXISTS idx_items_title ON items(title COLLATE NOCASE);
`

const migrationV11Down = `
DROP INDEX IF EXISTS idx_items_title;
DROP INDEX IF EXISTS idx_items_added;
`

// SchemaVersion returns the highest applied migration version, or 0.0.0 on a
// fresh database.
func SchemaVersion(ctx context.Context, db *sqlx.DB) (*semver.Version, error) {
	var tableName string
	err := db.GetContext(ctx, &tableName, "SELECT name FROM sqlite_master WHERE type='table' AND name='schema_version'")
	if isNoRows(err) {
		return semver.MustParse("0.0.0"), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check schema_version table: %w", err)
	}

	var applied []string
	if err := db.SelectContext(ctx, &applied, "SELECT version FROM schema_version"); err != nil {
		return nil, fmt.Errorf("failed to read schema_version: %w", err)
	}

	// applied_at has one-second resolution, so order by semver, not by time.
	current := semver.MustParse("0.0.0")
	for _, v := range applied {
		parsed, err := semver.NewVersion(v)
		if err != nil {
			return nil, fmt.Errorf("invalid schema version %s: %w", v, err)
		}
		if parsed.GreaterThan(current) {
			current = parsed
		}
	}
	return current, nil
}

// ApplyMigrations runs all pending migrations, each in its own transaction
func ApplyMigrations(ctx context.Context, db *sqlx.DB) error {
	currentVersion, err := SchemaVersion(ctx, db)
	if err != nil {
		return err
	}

	for _, migration := range AllMigrations {
		migrationVersion, err := semver.NewVersion(migration.Version)
		if err != nil {
			return fmt.Errorf("invalid migration version %s: %w", migration.Version, err)
		}

		if !currentVersion.LessThan(migrationVersion) {
			continue
		}

		if err := applyMigration(ctx, db, migration); err != nil {
			return err
		}

		log.WithField("version", migration.Version).Info("applied schema migration")
		currentVersion = migrationVersion
	}

	return nil
}

func applyMigration(ctx context.Context, db *sqlx.DB, migration Migration) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration %s: %w", migration.Version, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, migration.Up); err != nil {
		return fmt.Errorf("failed to apply migration %s: %w", migration.Version, err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
		return fmt.Errorf("failed to record migration %s: %w", migration.Version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %s: %w", migration.Version, err)
	}
	return nil
}

// RollbackMigration rolls back the most recent migration and returns its version
func RollbackMigration(ctx context.Context, db *sqlx.DB) (string, error) {
	current, err := SchemaVersion(ctx, db)
	if err != nil {
		return "", err
	}
	if current.Equal(semver.MustParse("0.0.0")) {
		return "", fmt.Errorf("no migrations to rollback")
	}

	var migration *Migration
	for i := range AllMigrations {
		v, err := semver.NewVersion(AllMigrations[i].Version)
		if err == nil && v.Equal(current) {
			migration = &AllMigrations[i]
			break
		}
	}
	if migration == nil {
		return "", fmt.Errorf("migration %s not found", current)
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin rollback of %s: %w", migration.Version, err)
	}
	defer func() { _ = tx.Rollback() }()

	// The first migration's Down drops schema_version itself.
	if _, err := tx.ExecContext(ctx, "DELETE FROM schema_version WHERE version = ?", migration.Version); err != nil {
		return "", fmt.Errorf("failed to remove migration record %s: %w", migration.Version, err)
	}
	if _, err := tx.ExecContext(ctx, migration.Down); err != nil {
		return "", fmt.Errorf("failed to rollback migration %s: %w", migration.Version, err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit rollback of %s: %w", migration.Version, err)
	}

	log.WithField("version", migration.Version).Warn("rolled back schema migration")
	return migration.Version, nil
}
