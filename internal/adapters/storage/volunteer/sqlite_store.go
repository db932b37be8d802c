package volunteer

import (
	"context"
	"fmt"

	"communityhub/internal/adapters/storage"
	domain "communityhub/internal/domain/volunteer"
)

const selectColumns = "SELECT id, name, email, phone, password_hash, created_at FROM volunteers"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new VolunteerStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Create inserts a new volunteer and returns its ID.
// PRE: v has been validated and carries a password hash
// POST: row inserted; storage.ErrDuplicate when the email exists
func (s *SQLiteStore) Create(ctx context.Context, v domain.Volunteer) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO volunteers (name, email, phone, password_hash, created_at) VALUES (?, ?, ?, ?, ?)",
		v.Name, v.Email, v.Phone, v.PasswordHash, storage.FormatTime(v.CreatedAt),
	)
	if err != nil {
		return 0, storage.Classify(err)
	}
	return res.LastInsertId()
}

// GetByID retrieves a Volunteer by its ID.
// PRE: id > 0
// POST: Returns the entity or storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id int64) (domain.Volunteer, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	v, err := scanVolunteer(row.Scan)
	if err != nil {
		return domain.Volunteer{}, fmt.Errorf("volunteer %d: %w", id, storage.Classify(err))
	}
	return v, nil
}

// GetByEmail retrieves a Volunteer by email.
// PRE: email is normalized
// POST: Returns the entity or storage.ErrNotFound
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.Volunteer, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE email = ?", email)
	v, err := scanVolunteer(row.Scan)
	if err != nil {
		return domain.Volunteer{}, fmt.Errorf("volunteer %s: %w", email, storage.Classify(err))
	}
	return v, nil
}

// UpdateProfile rewrites name, phone and password hash for the volunteer with v.Email.
// PRE: v has been validated
// POST: row updated; storage.ErrNotFound when no row matches
func (s *SQLiteStore) UpdateProfile(ctx context.Context, v domain.Volunteer) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE volunteers SET name = ?, phone = ?, password_hash = ? WHERE email = ?",
		v.Name, v.Phone, v.PasswordHash, v.Email,
	)
	if err != nil {
		return storage.Classify(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Count returns the number of registered volunteers.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM volunteers").Scan(&n)
	return n, storage.Classify(err)
}

func scanVolunteer(scan func(dest ...any) error) (domain.Volunteer, error) {
	var v domain.Volunteer
	var created string
	if err := scan(&v.ID, &v.Name, &v.Email, &v.Phone, &v.PasswordHash, &created); err != nil {
		return domain.Volunteer{}, err
	}
	v.CreatedAt = storage.ParseTime(created)
	return v, nil
}
