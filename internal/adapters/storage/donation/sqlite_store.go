package donation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"communityhub/internal/adapters/storage"
	domain "communityhub/internal/domain/donation"
)

const selectDonation = `SELECT id, transaction_id, donor_id, donor_email, donor_name, total_cents, status,
	card_name, card_last4, expiry_month, expiry_year, created_at, updated_at FROM donations`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new DonationStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Create persists a donation and its items in one transaction. The donor id is resolved
// from the donor email inside the same transaction and left NULL for unknown emails.
// PRE: d has been validated
// POST: Returns d with IDs and DonorID set; storage.ErrDuplicate on a reused transaction id;
// on error nothing is written
func (s *SQLiteStore) Create(ctx context.Context, d domain.Donation) (domain.Donation, error) {
	err := storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var donorID int64
		err := tx.QueryRowContext(ctx, "SELECT id FROM volunteers WHERE email = ?", d.DonorEmail).Scan(&donorID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			d.DonorID = nil
		case err != nil:
			return err
		default:
			d.DonorID = &donorID
		}

		totalCents, err := toCents(d.Total)
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `INSERT INTO donations
			(transaction_id, donor_id, donor_email, donor_name, total_cents, status,
			 card_name, card_last4, expiry_month, expiry_year, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			d.TransactionID, d.DonorID, d.DonorEmail, d.DonorName, totalCents, string(d.Status),
			d.Payment.CardName, d.Payment.CardLast4, d.Payment.ExpiryMonth, d.Payment.ExpiryYear,
			storage.FormatTime(d.CreatedAt), storage.FormatTime(d.UpdatedAt),
		)
		if err != nil {
			return err
		}
		if d.ID, err = res.LastInsertId(); err != nil {
			return err
		}

		for i := range d.Items {
			it := &d.Items[i]
			priceCents, err := toCents(it.Price)
			if err != nil {
				return err
			}
			subtotalCents, err := toCents(it.Subtotal)
			if err != nil {
				return err
			}
			res, err := tx.ExecContext(ctx, `INSERT INTO donation_items
				(donation_id, package_id, name, price_cents, impact, quantity, subtotal_cents)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				d.ID, it.PackageID, it.Name, priceCents, it.Impact, it.Quantity, subtotalCents,
			)
			if err != nil {
				return err
			}
			if it.ID, err = res.LastInsertId(); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Donation{}, fmt.Errorf("create donation %s: %w", d.TransactionID, storage.Classify(err))
	}
	return d, nil
}

// ListByEmail returns the donor's donations with items, newest first.
// PRE: email is normalized
// POST: Returns donations, possibly empty
func (s *SQLiteStore) ListByEmail(ctx context.Context, email string) ([]domain.Donation, error) {
	return s.listWithItems(ctx, "WHERE donor_email = ?", email)
}

// ListAll returns every donation with items, newest first.
// PRE: none
// POST: Returns donations, possibly empty
func (s *SQLiteStore) ListAll(ctx context.Context) ([]domain.Donation, error) {
	return s.listWithItems(ctx, "")
}

// Recent returns the newest donations without their items.
// PRE: limit > 0
// POST: Returns at most limit donations, newest first
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]domain.Donation, error) {
	return s.query(ctx, selectDonation+" ORDER BY created_at DESC, id DESC LIMIT ?", limit)
}

// Totals counts and sums completed donations.
// PRE: none
// POST: Returns zero totals for an empty table
func (s *SQLiteStore) Totals(ctx context.Context) (Totals, error) {
	var t Totals
	var cents int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(total_cents), 0) FROM donations WHERE status = ?",
		string(domain.StatusCompleted),
	).Scan(&t.Count, &cents)
	if err != nil {
		return Totals{}, storage.Classify(err)
	}
	t.Amount = fromCents(cents)
	return t, nil
}

// TopPackages ranks package ids by donated quantity.
// PRE: limit > 0
// POST: Returns at most limit rows, highest quantity first
func (s *SQLiteStore) TopPackages(ctx context.Context, limit int) ([]PackageTotal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT package_id, MAX(name), SUM(quantity), SUM(subtotal_cents)
		FROM donation_items
		GROUP BY package_id
		ORDER BY SUM(quantity) DESC, package_id ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, storage.Classify(err)
	}
	defer rows.Close()

	var results []PackageTotal
	for rows.Next() {
		var pt PackageTotal
		var cents int64
		if err := rows.Scan(&pt.PackageID, &pt.Name, &pt.Quantity, &cents); err != nil {
			return nil, err
		}
		pt.Amount = fromCents(cents)
		results = append(results, pt)
	}
	return results, rows.Err()
}

// Delete removes a donation and its items in one transaction.
// PRE: id > 0
// POST: both rows gone; storage.ErrNotFound when the donation is absent
func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	err := storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM donation_items WHERE donation_id = ?", id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM donations WHERE id = ?", id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return storage.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete donation %d: %w", id, storage.Classify(err))
	}
	return nil
}

// listWithItems loads donations matching where, then their items in a second query.
func (s *SQLiteStore) listWithItems(ctx context.Context, where string, args ...any) ([]domain.Donation, error) {
	donations, err := s.query(ctx, selectDonation+" "+where+" ORDER BY created_at DESC, id DESC", args...)
	if err != nil || len(donations) == 0 {
		return donations, err
	}

	itemWhere := ""
	if where != "" {
		itemWhere = "WHERE donation_id IN (SELECT id FROM donations " + where + ")"
	}
	items, err := s.items(ctx, itemWhere, args...)
	if err != nil {
		return nil, err
	}
	for i := range donations {
		donations[i].Items = items[donations[i].ID]
	}
	return donations, nil
}

func (s *SQLiteStore) items(ctx context.Context, where string, args ...any) (map[int64][]domain.Item, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT donation_id, id, package_id, name, price_cents, impact,
		quantity, subtotal_cents FROM donation_items `+where+" ORDER BY id", args...)
	if err != nil {
		return nil, storage.Classify(err)
	}
	defer rows.Close()

	byDonation := make(map[int64][]domain.Item)
	for rows.Next() {
		var donationID, price, subtotal int64
		var it domain.Item
		if err := rows.Scan(&donationID, &it.ID, &it.PackageID, &it.Name, &price, &it.Impact,
			&it.Quantity, &subtotal); err != nil {
			return nil, err
		}
		it.Price = fromCents(price)
		it.Subtotal = fromCents(subtotal)
		byDonation[donationID] = append(byDonation[donationID], it)
	}
	return byDonation, rows.Err()
}

func (s *SQLiteStore) query(ctx context.Context, q string, args ...any) ([]domain.Donation, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, storage.Classify(err)
	}
	defer rows.Close()

	var results []domain.Donation
	for rows.Next() {
		d, err := scanDonation(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, d)
	}
	return results, rows.Err()
}

func scanDonation(scan func(dest ...any) error) (domain.Donation, error) {
	var d domain.Donation
	var donorID sql.NullInt64
	var cents int64
	var status, created, updated string
	if err := scan(&d.ID, &d.TransactionID, &donorID, &d.DonorEmail, &d.DonorName, &cents, &status,
		&d.Payment.CardName, &d.Payment.CardLast4, &d.Payment.ExpiryMonth, &d.Payment.ExpiryYear,
		&created, &updated); err != nil {
		return domain.Donation{}, err
	}
	if donorID.Valid {
		id := donorID.Int64
		d.DonorID = &id
	}
	d.Total = fromCents(cents)
	d.Status = domain.Status(status)
	d.CreatedAt = storage.ParseTime(created)
	d.UpdatedAt = storage.ParseTime(updated)
	return d, nil
}
