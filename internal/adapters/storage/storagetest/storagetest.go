// Package storagetest opens migrated in-memory databases for store tests.
package storagetest

import (
	"context"
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"communityhub/internal/adapters/http/perf"
	"communityhub/internal/adapters/storage"
)

// Open returns a TimedDB over a fresh in-memory SQLite database with all migrations applied.
// The pool is pinned to one connection so the in-memory database is shared by every query.
func Open(t testing.TB) *storage.TimedDB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	tdb := storage.NewTimedDB(db, perf.NewCollector(100), 0)
	if err := storage.MigrateDB(ctx, tdb); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return tdb
}
