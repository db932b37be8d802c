package schedule

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"communityhub/internal/adapters/storage"
	domain "communityhub/internal/domain/schedule"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new ScheduleStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Latest returns the most recent configuration.
// PRE: none
// POST: Returns the active config or storage.ErrNotFound when none exists
func (s *SQLiteStore) Latest(ctx context.Context) (domain.Config, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, week_start, active_days, created_at FROM schedule_config ORDER BY id DESC LIMIT 1")
	var cfg domain.Config
	var weekStart, days, created string
	if err := row.Scan(&cfg.ID, &weekStart, &days, &created); err != nil {
		return domain.Config{}, fmt.Errorf("schedule config: %w", storage.Classify(err))
	}
	cfg.WeekStart, _ = time.Parse(storage.DateFormat, weekStart)
	if days != "" {
		cfg.ActiveDays = strings.Split(days, ",")
	}
	cfg.CreatedAt = storage.ParseTime(created)
	return cfg, nil
}

// Reconfigure replaces every slot with cfg's slot keys and records cfg as the active
// configuration, all in one transaction.
// PRE: cfg has been validated
// POST: slots table holds exactly cfg.SlotKeys(), all unbound; on error nothing changes
func (s *SQLiteStore) Reconfigure(ctx context.Context, cfg domain.Config) (domain.Config, error) {
	err := storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM slots"); err != nil {
			return err
		}
		stmt, err := tx.PrepareContext(ctx, "INSERT INTO slots (slot) VALUES (?)")
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, key := range cfg.SlotKeys() {
			if _, err := stmt.ExecContext(ctx, key); err != nil {
				return err
			}
		}
		res, err := tx.ExecContext(ctx,
			"INSERT INTO schedule_config (week_start, active_days, created_at) VALUES (?, ?, ?)",
			cfg.WeekStart.Format(storage.DateFormat), strings.Join(cfg.ActiveDays, ","), storage.FormatTime(cfg.CreatedAt),
		)
		if err != nil {
			return err
		}
		cfg.ID, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return domain.Config{}, fmt.Errorf("reconfigure schedule: %w", storage.Classify(err))
	}
	return cfg, nil
}
