// Package storage provides SQLite-based persistence for the media catalog.
//
// The storage layer manages:
//   - Items (tracked filesystem paths)
//   - Tags and tag categories
//   - Schema migrations
//   - Verbatim statement execution for the raw query gateway
//
// # Database Schema
//
// Tables:
//   - items: one row per tracked path; path is UNIQUE, id is AUTOINCREMENT
//   - tags: tag name plus a category reference
//   - tag_categories: named groups of tags
//   - schema_version: applied migration versions
//
// # Basic Usage
//
//	store, err := storage.NewSQLiteStorage(ctx, storage.DefaultOptions("/var/lib/mediacat/database.db"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	item := types.NewItem("/media/beach.mp4")
//	id, err := store.InsertItem(ctx, item)
//
//	ids, err := store.SearchItemIDs(ctx, "beach")
//	items, err := store.GetItemsByIDs(ctx, ids)
//
// # Connections
//
// The database runs in WAL mode with a small connection pool. Journal mode,
// busy timeout and foreign key enforcement are passed in the DSN so that
// every pooled connection is configured identically. There are no
// multi-statement transactions outside of migrations; concurrent writers are
// serialized by SQLite itself and wait up to the busy timeout.
//
// # Build Modes
//
// Two drivers are supported, selected at build time:
//
//	// Pure Go (default, no C compiler required)
//	CGO_ENABLED=0 go build ./...
//
//	// CGO with mattn/go-sqlite3
//	CGO_ENABLED=1 go build -tags "cgo_sqlite" ./...
//
// Each build file also supplies the driver-specific classification of
// constraint errors, so callers see a types.KindConstraintViolation error
// regardless of driver.
//
// # Migrations
//
// Migrations are ordered by semantic version and recorded in schema_version.
// ApplyMigrations runs on open; RollbackMigration undoes the newest one.
package storage
