package unavailable

import (
	"errors"
	"strings"
	"time"
)

// DateFormat is the wire and storage format for unavailable dates.
const DateFormat = "2006-01-02"

// Domain errors
var (
	ErrEmptyDate   = errors.New("date is required")
	ErrInvalidDate = errors.New("date must be in YYYY-MM-DD format")
)

// UnavailableDate is a calendar day the administrator has marked as closed.
// It is advisory: bookings are not checked against it.
type UnavailableDate struct {
	Date time.Time
}

// Parse builds an UnavailableDate from its YYYY-MM-DD form.
// PRE: none
// POST: returns a date at midnight UTC, or a domain error
func Parse(s string) (UnavailableDate, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return UnavailableDate{}, ErrEmptyDate
	}
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return UnavailableDate{}, ErrInvalidDate
	}
	return UnavailableDate{Date: t}, nil
}

// String returns the YYYY-MM-DD form.
func (u UnavailableDate) String() string {
	return u.Date.Format(DateFormat)
}

// Contains returns true if the given moment falls on this date.
// INVARIANT: UnavailableDate fields are not mutated
func (u UnavailableDate) Contains(t time.Time) bool {
	return t.Format(DateFormat) == u.String()
}
