package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
)

// Store-level sentinels. Stores wrap driver errors with these so callers can branch
// without inspecting SQL error text.
var (
	ErrNotFound    = errors.New("record not found")
	ErrDuplicate   = errors.New("record already exists")
	ErrUnavailable = errors.New("database unavailable")
	// ErrBusy is a lock timeout on one statement; the pool itself stays available.
	ErrBusy = errors.New("database busy")
	// ErrStale means a conditional write found the row changed since it was read.
	ErrStale = errors.New("record changed concurrently")
	// ErrOutOfRange means a value cannot be represented in its column.
	ErrOutOfRange = errors.New("value out of storable range")
)

// IsUniqueViolation reports whether err came from a UNIQUE or PRIMARY KEY constraint.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint") || strings.Contains(msg, "PRIMARY KEY constraint")
}

// isConnectionError reports whether err means the database cannot serve requests at all.
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, driver.ErrBadConn) {
		return true
	}
	msg := err.Error()
	for _, s := range []string{
		"database is closed",
		"unable to open database",
		"disk I/O error",
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// isBusyError reports whether err is SQLite giving up on a lock after the busy timeout.
func isBusyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}

// Classify maps a driver error onto the store sentinels, keeping the original in the chain.
// PRE: none
// POST: nil stays nil; sql.ErrNoRows becomes ErrNotFound
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrDuplicate), errors.Is(err, ErrUnavailable),
		errors.Is(err, ErrBusy), errors.Is(err, ErrStale), errors.Is(err, ErrOutOfRange):
		return err
	case errors.Is(err, sql.ErrNoRows):
		return ErrNotFound
	case IsUniqueViolation(err):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	case isBusyError(err):
		return fmt.Errorf("%w: %v", ErrBusy, err)
	case isConnectionError(err), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	default:
		return err
	}
}
