package unavailable

import (
	"context"
	"time"

	"communityhub/internal/adapters/storage"
	domain "communityhub/internal/domain/unavailable"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new UnavailableStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// List returns every unavailable date in ascending order.
// PRE: none
// POST: Returns dates, possibly empty; malformed rows are skipped
func (s *SQLiteStore) List(ctx context.Context) ([]domain.UnavailableDate, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT date FROM unavailable_dates ORDER BY date")
	if err != nil {
		return nil, storage.Classify(err)
	}
	defer rows.Close()

	var results []domain.UnavailableDate
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		t, err := time.Parse(domain.DateFormat, raw)
		if err != nil {
			continue
		}
		results = append(results, domain.UnavailableDate{Date: t})
	}
	return results, rows.Err()
}

// Add records d, reporting whether it was newly inserted.
// PRE: d was produced by domain.Parse
// POST: d is in the set; false when it already was
func (s *SQLiteStore) Add(ctx context.Context, d domain.UnavailableDate) (bool, error) {
	res, err := s.db.ExecContext(ctx, "INSERT OR IGNORE INTO unavailable_dates (date) VALUES (?)", d.String())
	if err != nil {
		return false, storage.Classify(err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Remove deletes d, reporting whether it was present.
// PRE: none
// POST: d is not in the set
func (s *SQLiteStore) Remove(ctx context.Context, d domain.UnavailableDate) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM unavailable_dates WHERE date = ?", d.String())
	if err != nil {
		return false, storage.Classify(err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
