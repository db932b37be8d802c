package event

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Max length constants.
const (
	MaxIDLength          = 64
	MaxTitleLength       = 200
	MaxDescriptionLength = 5000
	MaxLocationLength    = 200
)

// DateFormat is the wire and storage format for event dates.
const DateFormat = "2006-01-02"

var idPattern = regexp.MustCompile(`^[a-z0-9]+(?:[-_][a-z0-9]+)*$`)

// Domain errors
var (
	ErrInvalidID          = errors.New("event id must be a lowercase slug")
	ErrEmptyTitle         = errors.New("event title cannot be empty")
	ErrTitleTooLong       = errors.New("event title cannot exceed 200 characters")
	ErrEmptyDescription   = errors.New("event description cannot be empty")
	ErrDescriptionTooLong = errors.New("event description cannot exceed 5000 characters")
	ErrEmptyDate          = errors.New("event date is required")
	ErrEmptyLocation      = errors.New("event location cannot be empty")
	ErrLocationTooLong    = errors.New("event location cannot exceed 200 characters")
)

// Event is a community event shown on the public events page.
// Poster holds an inline data URL and is stored as supplied.
// PRE: ID is slug-shaped. Date is set.
type Event struct {
	ID          string
	Title       string
	Description string
	Date        time.Time
	Location    string
	Poster      string // empty means no poster
	Published   bool
	CreatedBy   string // email
	ModifiedBy  string // email
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks the event's invariants.
// PRE: none
// POST: returns nil if valid, error describing the first violation otherwise
func (e *Event) Validate() error {
	if len(e.ID) > MaxIDLength || !idPattern.MatchString(e.ID) {
		return ErrInvalidID
	}
	if strings.TrimSpace(e.Title) == "" {
		return ErrEmptyTitle
	}
	if len(e.Title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if strings.TrimSpace(e.Description) == "" {
		return ErrEmptyDescription
	}
	if len(e.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	if e.Date.IsZero() {
		return ErrEmptyDate
	}
	if strings.TrimSpace(e.Location) == "" {
		return ErrEmptyLocation
	}
	if len(e.Location) > MaxLocationLength {
		return ErrLocationTooLong
	}
	return nil
}

// GenerateID returns the identifier used when a client omits one.
func GenerateID(now time.Time) string {
	return "event_" + strconv.FormatInt(now.UnixMilli(), 10)
}

// IsPast reports whether the event date is before the day containing now.
func (e *Event) IsPast(now time.Time) bool {
	return e.Date.Format(DateFormat) < now.Format(DateFormat)
}
