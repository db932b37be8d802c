package event

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"communityhub/internal/adapters/storage"
	domain "communityhub/internal/domain/event"
)

const selectColumns = `SELECT id, title, description, date, location, poster, published,
	created_by, modified_by, created_at, updated_at FROM events`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new EventStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// ListPublished returns published events ordered by date ascending.
// PRE: none
// POST: Returns events, possibly empty
func (s *SQLiteStore) ListPublished(ctx context.Context) ([]domain.Event, error) {
	return s.query(ctx, selectColumns+" WHERE published = 1 ORDER BY date ASC, id ASC")
}

// ListAll returns every event including drafts, ordered by date ascending.
// PRE: none
// POST: Returns events, possibly empty
func (s *SQLiteStore) ListAll(ctx context.Context) ([]domain.Event, error) {
	return s.query(ctx, selectColumns+" ORDER BY date ASC, id ASC")
}

// Get retrieves an event by ID.
// PRE: id is non-empty
// POST: Returns the event or storage.ErrNotFound
func (s *SQLiteStore) Get(ctx context.Context, id string) (domain.Event, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	e, err := scanEvent(row.Scan)
	if err != nil {
		return domain.Event{}, fmt.Errorf("event %s: %w", id, storage.Classify(err))
	}
	return e, nil
}

// Create inserts an event.
// PRE: e has been validated
// POST: row inserted; storage.ErrDuplicate when the id exists
func (s *SQLiteStore) Create(ctx context.Context, e domain.Event) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO events
		(id, title, description, date, location, poster, published, created_by, modified_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Title, e.Description, e.Date.Format(domain.DateFormat), e.Location, nullable(e.Poster),
		e.Published, e.CreatedBy, e.ModifiedBy, storage.FormatTime(e.CreatedAt), storage.FormatTime(e.UpdatedAt),
	)
	return storage.Classify(err)
}

// Update rewrites every mutable field of the event.
// PRE: e has been validated
// POST: row updated; storage.ErrNotFound when absent
// INVARIANT: created_by and created_at are untouched
func (s *SQLiteStore) Update(ctx context.Context, e domain.Event) error {
	res, err := s.db.ExecContext(ctx, `UPDATE events
		SET title = ?, description = ?, date = ?, location = ?, poster = ?, published = ?,
		    modified_by = ?, updated_at = ?
		WHERE id = ?`,
		e.Title, e.Description, e.Date.Format(domain.DateFormat), e.Location, nullable(e.Poster),
		e.Published, e.ModifiedBy, storage.FormatTime(e.UpdatedAt), e.ID,
	)
	if err != nil {
		return storage.Classify(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Delete removes an event.
// PRE: id is non-empty
// POST: row removed; storage.ErrNotFound when absent
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM events WHERE id = ?", id)
	if err != nil {
		return storage.Classify(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) query(ctx context.Context, q string, args ...any) ([]domain.Event, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, storage.Classify(err)
	}
	defer rows.Close()

	var results []domain.Event
	for rows.Next() {
		e, err := scanEvent(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, e)
	}
	return results, rows.Err()
}

func scanEvent(scan func(dest ...any) error) (domain.Event, error) {
	var e domain.Event
	var date, created, updated string
	var poster sql.NullString
	if err := scan(&e.ID, &e.Title, &e.Description, &date, &e.Location, &poster, &e.Published,
		&e.CreatedBy, &e.ModifiedBy, &created, &updated); err != nil {
		return domain.Event{}, err
	}
	e.Date, _ = time.Parse(domain.DateFormat, date)
	e.Poster = poster.String
	e.CreatedAt = storage.ParseTime(created)
	e.UpdatedAt = storage.ParseTime(updated)
	return e, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
