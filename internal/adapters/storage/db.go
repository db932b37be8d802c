package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// TimeFormat is used for every timestamp column.
const TimeFormat = time.RFC3339Nano

// DateFormat is used for date-only columns.
const DateFormat = "2006-01-02"

// migration is one forward-only schema step.
type migration struct {
	version int
	name    string
	stmts   []string
}

// migrations are applied in order. Never edit a released step; append a new one.
var migrations = []migration{
	{
		version: 1,
		name:    "volunteers_and_schedule",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS volunteers (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL,
				email TEXT NOT NULL UNIQUE,
				phone TEXT NOT NULL,
				password_hash TEXT NOT NULL,
				created_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS slots (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				slot TEXT NOT NULL UNIQUE,
				booked_by TEXT
			)`,
			`CREATE INDEX IF NOT EXISTS idx_slots_booked_by ON slots(booked_by)`,
			`CREATE TABLE IF NOT EXISTS schedule_config (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				week_start TEXT NOT NULL,
				active_days TEXT NOT NULL,
				created_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS unavailable_dates (
				date TEXT PRIMARY KEY
			)`,
		},
	},
	{
		version: 2,
		name:    "donations",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS donation_packages (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				package_id TEXT NOT NULL UNIQUE,
				name TEXT NOT NULL,
				description TEXT NOT NULL,
				price_cents INTEGER NOT NULL CHECK (price_cents > 0),
				impact_description TEXT NOT NULL,
				icon TEXT NOT NULL DEFAULT '',
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS donations (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				transaction_id TEXT NOT NULL UNIQUE,
				donor_id INTEGER REFERENCES volunteers(id) ON DELETE SET NULL,
				donor_email TEXT NOT NULL,
				donor_name TEXT NOT NULL DEFAULT '',
				total_cents INTEGER NOT NULL,
				status TEXT NOT NULL,
				card_name TEXT NOT NULL DEFAULT '',
				card_last4 TEXT NOT NULL DEFAULT '',
				expiry_month TEXT NOT NULL DEFAULT '',
				expiry_year TEXT NOT NULL DEFAULT '',
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_donations_donor_email ON donations(donor_email)`,
			`CREATE TABLE IF NOT EXISTS donation_items (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				donation_id INTEGER NOT NULL REFERENCES donations(id) ON DELETE CASCADE,
				package_id TEXT NOT NULL,
				name TEXT NOT NULL,
				price_cents INTEGER NOT NULL,
				impact TEXT NOT NULL DEFAULT '',
				quantity INTEGER NOT NULL CHECK (quantity > 0),
				subtotal_cents INTEGER NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_donation_items_donation ON donation_items(donation_id)`,
		},
	},
	{
		version: 3,
		name:    "events",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS events (
				id TEXT PRIMARY KEY,
				title TEXT NOT NULL,
				description TEXT NOT NULL,
				date TEXT NOT NULL,
				location TEXT NOT NULL,
				poster TEXT,
				published INTEGER NOT NULL DEFAULT 1,
				created_by TEXT NOT NULL DEFAULT '',
				modified_by TEXT NOT NULL DEFAULT '',
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_events_published_date ON events(published, date)`,
		},
	},
}

// LatestSchemaVersion returns the version reached after all migrations.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// SchemaVersion returns the applied schema version, or 0 for an empty database.
// PRE: db is a valid database connection
func SchemaVersion(ctx context.Context, db SQLDB) (int, error) {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return 0, fmt.Errorf("create schema_version: %w", err)
	}
	var v int
	if err := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema_version: %w", err)
	}
	return v, nil
}

// MigrateDB applies every pending migration, each in its own transaction.
// PRE: db is a valid database connection with foreign keys enabled
// POST: schema is at LatestSchemaVersion; re-running is a no-op
func MigrateDB(ctx context.Context, db SQLDB) error {
	current, err := SchemaVersion(ctx, db)
	if err != nil {
		return err
	}
	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		err := WithTx(ctx, db, func(tx *sql.Tx) error {
			for _, stmt := range m.stmts {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return err
				}
			}
			_, err := tx.ExecContext(ctx,
				"INSERT INTO schema_version (version, name, applied_at) VALUES (?, ?, ?)",
				m.version, m.name, time.Now().UTC().Format(TimeFormat))
			return err
		})
		if err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
		slog.Info("schema_migrated", "version", m.version, "name", m.name)
	}
	return nil
}

// WithTx runs fn inside a transaction, committing on nil and rolling back otherwise.
// PRE: fn uses only tx for database access
// POST: either every statement in fn is committed or none is
func WithTx(ctx context.Context, db SQLDB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Classify(err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.Error("tx_rollback_failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return Classify(err)
	}
	return nil
}

// FormatTime renders a timestamp for storage.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

// ParseTime reads a stored timestamp, returning the zero time for malformed values.
func ParseTime(s string) time.Time {
	t, err := time.Parse(TimeFormat, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
