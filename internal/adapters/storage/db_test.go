package storage

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"sort"
	"testing"

	_ "modernc.org/sqlite"
)

// openTestDB creates an in-memory SQLite database for testing.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	return db
}

// getTableNames returns sorted table names from sqlite_master, excluding internal tables.
func getTableNames(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		t.Fatalf("failed to query sqlite_master: %v", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("failed to scan table name: %v", err)
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// expectedTables is the sorted list of tables after all migrations.
var expectedTables = []string{
	"donation_items",
	"donation_packages",
	"donations",
	"events",
	"schedule_config",
	"schema_version",
	"slots",
	"unavailable_dates",
	"volunteers",
}

// TestMigrateDB_Fresh verifies all migrations apply cleanly to an empty database.
func TestMigrateDB_Fresh(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := MigrateDB(ctx, db); err != nil {
		t.Fatalf("MigrateDB failed on fresh db: %v", err)
	}
	version, err := SchemaVersion(ctx, db)
	if err != nil {
		t.Fatalf("SchemaVersion failed: %v", err)
	}
	if version != LatestSchemaVersion() {
		t.Errorf("version = %d, want %d", version, LatestSchemaVersion())
	}
	if got := getTableNames(t, db); !reflect.DeepEqual(got, expectedTables) {
		t.Errorf("tables = %v, want %v", got, expectedTables)
	}
}

// TestMigrateDB_Idempotent verifies that running MigrateDB twice produces no errors
// and records each version once.
func TestMigrateDB_Idempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := MigrateDB(ctx, db); err != nil {
			t.Fatalf("MigrateDB run %d: %v", i+1, err)
		}
	}
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != len(migrations) {
		t.Errorf("schema_version rows = %d, want %d", n, len(migrations))
	}
}

func TestSchemaVersion_Empty(t *testing.T) {
	db := openTestDB(t)
	v, err := SchemaVersion(context.Background(), db)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0 {
		t.Errorf("version = %d, want 0", v)
	}
}

func TestMigrations_Ordered(t *testing.T) {
	for i := 1; i < len(migrations); i++ {
		if migrations[i].version <= migrations[i-1].version {
			t.Errorf("migration %d is not after %d", migrations[i].version, migrations[i-1].version)
		}
	}
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	if err := MigrateDB(ctx, db); err != nil {
		t.Fatal(err)
	}
	boom := errors.New("boom")
	err := WithTx(ctx, db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "INSERT INTO slots (slot) VALUES ('Mon-9am-12pm')"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx() = %v, want boom", err)
	}
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM slots").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("slots = %d, want 0 after rollback", n)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"no rows", sql.ErrNoRows, ErrNotFound},
		{"unique", errors.New("constraint failed: UNIQUE constraint failed: volunteers.email (2067)"), ErrDuplicate},
		{"primary key", errors.New("PRIMARY KEY constraint failed"), ErrDuplicate},
		{"closed", errors.New("sql: database is closed"), ErrUnavailable},
		{"locked", errors.New("database is locked (5) (SQLITE_BUSY)"), ErrBusy},
		{"conn done", sql.ErrConnDone, ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.in); !errors.Is(got, tt.want) {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
	if errors.Is(Classify(errors.New("database is locked (5) (SQLITE_BUSY)")), ErrUnavailable) {
		t.Error("a lock timeout must not read as an unavailable database")
	}
	if Classify(nil) != nil {
		t.Error("Classify(nil) must be nil")
	}
	other := errors.New("syntax error")
	if Classify(other) != other {
		t.Error("unrelated errors must pass through")
	}
}

func TestForeignKeys_DonorSetNullAndItemsCascade(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	if err := MigrateDB(ctx, db); err != nil {
		t.Fatal(err)
	}
	mustExec := func(q string, args ...any) {
		t.Helper()
		if _, err := db.ExecContext(ctx, q, args...); err != nil {
			t.Fatalf("%s: %v", q, err)
		}
	}
	mustExec("INSERT INTO volunteers (id, name, email, phone, password_hash, created_at) VALUES (1, 'A', 'a@x.com', '0123456789', 'h', 'now')")
	mustExec("INSERT INTO donations (id, transaction_id, donor_id, donor_email, total_cents, status, created_at, updated_at) VALUES (1, 'T1', 1, 'a@x.com', 100, 'completed', 'now', 'now')")
	mustExec("INSERT INTO donation_items (donation_id, package_id, name, price_cents, quantity, subtotal_cents) VALUES (1, 'p', 'P', 100, 1, 100)")

	mustExec("DELETE FROM volunteers WHERE id = 1")
	var donor sql.NullInt64
	if err := db.QueryRow("SELECT donor_id FROM donations WHERE id = 1").Scan(&donor); err != nil {
		t.Fatal(err)
	}
	if donor.Valid {
		t.Errorf("donor_id = %d, want NULL after volunteer delete", donor.Int64)
	}

	mustExec("DELETE FROM donations WHERE id = 1")
	var items int
	if err := db.QueryRow("SELECT COUNT(*) FROM donation_items").Scan(&items); err != nil {
		t.Fatal(err)
	}
	if items != 0 {
		t.Errorf("items = %d, want 0 after cascade", items)
	}
}
