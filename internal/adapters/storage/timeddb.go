package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"communityhub/internal/adapters/http/perf"
)

// SQLDB is the database interface used by all stores.
// Both *sql.DB and *TimedDB satisfy this interface.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Compile-time check that *sql.DB satisfies SQLDB.
var _ SQLDB = (*sql.DB)(nil)

// DefaultSlowQueryMs is the default threshold for slow query warnings.
const DefaultSlowQueryMs = 50

// recheckInterval limits how often an unavailable pool is pinged again.
const recheckInterval = time.Second

// TimedDB wraps a *sql.DB to log slow queries, record timings and track availability.
// Satisfies the SQLDB interface so it can be passed to any store constructor.
// INVARIANT: once a connection-class error is seen, the pool reports unavailable until a ping succeeds
type TimedDB struct {
	db          *sql.DB
	collector   *perf.Collector
	threshold   float64
	unavailable atomic.Bool
	lastCheck   atomic.Int64
}

// Compile-time check that *TimedDB satisfies SQLDB.
var _ SQLDB = (*TimedDB)(nil)

// NewTimedDB wraps a *sql.DB with timing instrumentation.
// PRE: db is a valid database handle; thresholdMs <= 0 selects the default
// POST: Returns a TimedDB that logs slow queries and records to collector
func NewTimedDB(db *sql.DB, collector *perf.Collector, thresholdMs float64) *TimedDB {
	if thresholdMs <= 0 {
		thresholdMs = DefaultSlowQueryMs
	}
	return &TimedDB{
		db:        db,
		collector: collector,
		threshold: thresholdMs,
	}
}

// ConnectOptions controls Open.
type ConnectOptions struct {
	DSN            string
	MaxOpenConns   int
	Attempts       int
	Backoff        time.Duration
	ConnectTimeout time.Duration
	SlowQueryMs    float64
	Collector      *perf.Collector
}

// Open opens the SQLite pool and pings it, retrying with linear backoff.
// PRE: opts.DSN is non-empty
// POST: returns a ready TimedDB, or an ErrUnavailable-wrapped error after all attempts fail
func Open(ctx context.Context, opts ConnectOptions) (*TimedDB, error) {
	db, err := sql.Open("sqlite", opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
		db.SetMaxIdleConns(opts.MaxOpenConns)
	}
	attempts := max(opts.Attempts, 1)
	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	var pingErr error
	for i := 1; i <= attempts; i++ {
		pctx, cancel := context.WithTimeout(ctx, timeout)
		pingErr = db.PingContext(pctx)
		cancel()
		if pingErr == nil {
			return NewTimedDB(db, opts.Collector, opts.SlowQueryMs), nil
		}
		slog.Warn("db_connect_failed", "attempt", i, "of", attempts, "error", pingErr)
		if i < attempts {
			select {
			case <-ctx.Done():
				db.Close()
				return nil, ctx.Err()
			case <-time.After(opts.Backoff * time.Duration(i)):
			}
		}
	}
	db.Close()
	return nil, fmt.Errorf("%w: %v", ErrUnavailable, pingErr)
}

// RawDB returns the underlying *sql.DB.
// PRE: none
// POST: returns the unwrapped *sql.DB
func (t *TimedDB) RawDB() *sql.DB {
	return t.db
}

// Available reports the last known availability without touching the database.
func (t *TimedDB) Available() bool {
	return !t.unavailable.Load()
}

// Ready returns nil when the pool can serve requests. An unavailable pool is pinged
// again at most once per recheckInterval.
// PRE: ctx is valid
// POST: returns ErrUnavailable while the database cannot be reached
func (t *TimedDB) Ready(ctx context.Context) error {
	if !t.unavailable.Load() {
		return nil
	}
	now := time.Now().UnixNano()
	last := t.lastCheck.Load()
	if now-last < int64(recheckInterval) || !t.lastCheck.CompareAndSwap(last, now) {
		return ErrUnavailable
	}
	if err := t.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	t.unavailable.Store(false)
	slog.Info("db_available")
	return nil
}

// observe flags the pool unavailable on connection-class errors and wraps them.
func (t *TimedDB) observe(err error) error {
	if err == nil || !isConnectionError(err) {
		return err
	}
	if !t.unavailable.Swap(true) {
		t.lastCheck.Store(time.Now().UnixNano())
		slog.Error("db_unavailable", "error", err)
	}
	if errors.Is(err, ErrUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// logQuery logs and optionally records a query timing.
func (t *TimedDB) logQuery(op, query string, start time.Time) {
	durationMs := float64(time.Since(start).Microseconds()) / 1000.0

	if durationMs >= t.threshold {
		slog.Warn("slow_query",
			"op", op,
			"query", truncate(query, 120),
			"duration_ms", durationMs,
		)
	} else {
		slog.Debug("query",
			"op", op,
			"duration_ms", durationMs,
		)
	}

	if t.collector != nil {
		t.collector.Record(perf.Entry{
			Kind:       perf.KindQuery,
			Path:       op + " " + truncate(query, 60),
			DurationMs: durationMs,
			Timestamp:  start,
		})
	}
}

// ExecContext wraps sql.DB.ExecContext with timing.
// PRE: ctx is valid, query is non-empty
// POST: query executed, timing recorded to collector
func (t *TimedDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	result, err := t.db.ExecContext(ctx, query, args...)
	t.logQuery("exec", query, start)
	return result, t.observe(err)
}

// QueryContext wraps sql.DB.QueryContext with timing.
// PRE: ctx is valid, query is non-empty
// POST: query executed, timing recorded to collector
func (t *TimedDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := t.db.QueryContext(ctx, query, args...)
	t.logQuery("query", query, start)
	return rows, t.observe(err)
}

// QueryRowContext wraps sql.DB.QueryRowContext with timing.
// Errors surface at Scan; stores pass them through Classify.
// PRE: ctx is valid, query is non-empty
// POST: query executed, timing recorded to collector
func (t *TimedDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := t.db.QueryRowContext(ctx, query, args...)
	t.logQuery("query_row", query, start)
	_ = t.observe(row.Err())
	return row
}

// BeginTx wraps sql.DB.BeginTx with timing.
// PRE: ctx is valid
// POST: transaction started, timing recorded to collector
func (t *TimedDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	start := time.Now()
	tx, err := t.db.BeginTx(ctx, opts)
	t.logQuery("begin", "BEGIN", start)
	return tx, t.observe(err)
}

// Close closes the underlying database connection.
// PRE: none
// POST: database connection closed
func (t *TimedDB) Close() error {
	return t.db.Close()
}

// truncate collapses whitespace in a query and cuts it to n bytes for log output.
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= n {
		return s
	}
	return s[:n]
}
