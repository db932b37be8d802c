package donation

import (
	"context"
	"fmt"

	"communityhub/internal/adapters/storage"
	domain "communityhub/internal/domain/donation"
)

const selectPackage = `SELECT id, package_id, name, description, price_cents, impact_description, icon,
	created_at, updated_at FROM donation_packages`

// SQLitePackageStore implements PackageStore using SQLite.
type SQLitePackageStore struct {
	db storage.SQLDB
}

// NewSQLitePackageStore creates a new PackageStore.
func NewSQLitePackageStore(db storage.SQLDB) *SQLitePackageStore {
	return &SQLitePackageStore{db: db}
}

// ListByPrice returns the storefront catalogue, cheapest first.
// PRE: none
// POST: Returns packages ordered by price ascending
func (s *SQLitePackageStore) ListByPrice(ctx context.Context) ([]domain.Package, error) {
	return s.query(ctx, selectPackage+" ORDER BY price_cents ASC, id ASC")
}

// ListNewest returns the catalogue for administration, newest first.
// PRE: none
// POST: Returns packages ordered by creation time descending
func (s *SQLitePackageStore) ListNewest(ctx context.Context) ([]domain.Package, error) {
	return s.query(ctx, selectPackage+" ORDER BY created_at DESC, id DESC")
}

// Get retrieves a package by its slug.
// PRE: packageID is non-empty
// POST: Returns the package or storage.ErrNotFound
func (s *SQLitePackageStore) Get(ctx context.Context, packageID string) (domain.Package, error) {
	row := s.db.QueryRowContext(ctx, selectPackage+" WHERE package_id = ?", packageID)
	p, err := scanPackage(row.Scan)
	if err != nil {
		return domain.Package{}, fmt.Errorf("package %s: %w", packageID, storage.Classify(err))
	}
	return p, nil
}

// Create inserts a package.
// PRE: p has been validated
// POST: Returns p with ID set; storage.ErrDuplicate when package_id exists
func (s *SQLitePackageStore) Create(ctx context.Context, p domain.Package) (domain.Package, error) {
	priceCents, err := toCents(p.Price)
	if err != nil {
		return domain.Package{}, err
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO donation_packages
		(package_id, name, description, price_cents, impact_description, icon, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.PackageID, p.Name, p.Description, priceCents, p.ImpactDescription, p.Icon,
		storage.FormatTime(p.CreatedAt), storage.FormatTime(p.UpdatedAt),
	)
	if err != nil {
		return domain.Package{}, storage.Classify(err)
	}
	p.ID, err = res.LastInsertId()
	return p, err
}

// Update rewrites the mutable fields of the package addressed by p.PackageID.
// PRE: p has been validated
// POST: row updated; storage.ErrNotFound when no package matches
// INVARIANT: package_id and created_at are untouched
func (s *SQLitePackageStore) Update(ctx context.Context, p domain.Package) error {
	priceCents, err := toCents(p.Price)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE donation_packages
		SET name = ?, description = ?, price_cents = ?, impact_description = ?, icon = ?, updated_at = ?
		WHERE package_id = ?`,
		p.Name, p.Description, priceCents, p.ImpactDescription, p.Icon,
		storage.FormatTime(p.UpdatedAt), p.PackageID,
	)
	if err != nil {
		return storage.Classify(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Delete removes a package. Donation items keep their snapshots.
// PRE: packageID is non-empty
// POST: row removed; storage.ErrNotFound when absent
func (s *SQLitePackageStore) Delete(ctx context.Context, packageID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM donation_packages WHERE package_id = ?", packageID)
	if err != nil {
		return storage.Classify(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Count returns the number of packages.
func (s *SQLitePackageStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM donation_packages").Scan(&n)
	return n, storage.Classify(err)
}

func (s *SQLitePackageStore) query(ctx context.Context, q string, args ...any) ([]domain.Package, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, storage.Classify(err)
	}
	defer rows.Close()

	var results []domain.Package
	for rows.Next() {
		p, err := scanPackage(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, p)
	}
	return results, rows.Err()
}

func scanPackage(scan func(dest ...any) error) (domain.Package, error) {
	var p domain.Package
	var cents int64
	var created, updated string
	if err := scan(&p.ID, &p.PackageID, &p.Name, &p.Description, &cents, &p.ImpactDescription, &p.Icon,
		&created, &updated); err != nil {
		return domain.Package{}, err
	}
	p.Price = fromCents(cents)
	p.CreatedAt = storage.ParseTime(created)
	p.UpdatedAt = storage.ParseTime(updated)
	return p, nil
}
