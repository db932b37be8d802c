package slot

import (
	"context"
	"database/sql"
	"fmt"

	"communityhub/internal/adapters/storage"
	domain "communityhub/internal/domain/slot"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SlotStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// List returns every slot row in insertion order.
// PRE: none
// POST: Returns all slots; unbound slots have empty BookedBy
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Slot, error) {
	return s.query(ctx, "SELECT id, slot, booked_by FROM slots ORDER BY id")
}

// Get retrieves a slot by key.
// PRE: key is non-empty
// POST: Returns the slot or storage.ErrNotFound
func (s *SQLiteStore) Get(ctx context.Context, key string) (domain.Slot, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, slot, booked_by FROM slots WHERE slot = ?", key)
	sl, err := scanSlot(row.Scan)
	if err != nil {
		return domain.Slot{}, fmt.Errorf("slot %s: %w", key, storage.Classify(err))
	}
	return sl, nil
}

// Create inserts a slot row, optionally already bound.
// PRE: s.Key is valid
// POST: row inserted; storage.ErrDuplicate when the key exists
func (s *SQLiteStore) Create(ctx context.Context, sl domain.Slot) error {
	_, err := s.db.ExecContext(ctx, "INSERT INTO slots (slot, booked_by) VALUES (?, ?)", sl.Key, nullable(sl.BookedBy))
	return storage.Classify(err)
}

// SetBookedBy moves the slot from booker from to booker to. Empty means free.
// PRE: from is the booker last read for key
// POST: booked_by is to; storage.ErrNotFound when no row matches key,
// storage.ErrStale when the row no longer holds from
func (s *SQLiteStore) SetBookedBy(ctx context.Context, key, from, to string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE slots SET booked_by = ? WHERE slot = ? AND COALESCE(booked_by, '') = ?",
		nullable(to), key, from)
	if err != nil {
		return storage.Classify(err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	if _, err := s.Get(ctx, key); err != nil {
		return err
	}
	return storage.ErrStale
}

// ResetAll clears every booking and reports how many slots were bound.
// PRE: none
// POST: no slot has a booker
func (s *SQLiteStore) ResetAll(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "UPDATE slots SET booked_by = NULL WHERE booked_by IS NOT NULL")
	if err != nil {
		return 0, storage.Classify(err)
	}
	return res.RowsAffected()
}

// ListByBooker returns slots bound to email, ordered by slot key.
// PRE: email is normalized
// POST: Returns matching slots, possibly empty
func (s *SQLiteStore) ListByBooker(ctx context.Context, email string) ([]domain.Slot, error) {
	return s.query(ctx, "SELECT id, slot, booked_by FROM slots WHERE booked_by = ? ORDER BY slot", email)
}

// ListBookings returns every bound slot with the booker's name when the email is registered.
// PRE: none
// POST: Returns bookings ordered by slot key
func (s *SQLiteStore) ListBookings(ctx context.Context) ([]Booking, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.slot, s.booked_by, COALESCE(v.name, '')
		FROM slots s
		LEFT JOIN volunteers v ON v.email = s.booked_by
		WHERE s.booked_by IS NOT NULL
		ORDER BY s.slot`)
	if err != nil {
		return nil, storage.Classify(err)
	}
	defer rows.Close()

	var results []Booking
	for rows.Next() {
		var b Booking
		if err := rows.Scan(&b.Slot, &b.BookedBy, &b.BookerName); err != nil {
			return nil, err
		}
		results = append(results, b)
	}
	return results, rows.Err()
}

func (s *SQLiteStore) query(ctx context.Context, q string, args ...any) ([]domain.Slot, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, storage.Classify(err)
	}
	defer rows.Close()

	var results []domain.Slot
	for rows.Next() {
		sl, err := scanSlot(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, sl)
	}
	return results, rows.Err()
}

func scanSlot(scan func(dest ...any) error) (domain.Slot, error) {
	var sl domain.Slot
	var bookedBy sql.NullString
	if err := scan(&sl.ID, &sl.Key, &bookedBy); err != nil {
		return domain.Slot{}, err
	}
	sl.BookedBy = bookedBy.String
	return sl, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
