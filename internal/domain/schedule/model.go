package schedule

import (
	"errors"
	"time"
)

// Day abbreviations accepted in active day lists.
const (
	Monday    = "Mon"
	Tuesday   = "Tue"
	Wednesday = "Wed"
	Thursday  = "Thu"
	Friday    = "Fri"
	Saturday  = "Sat"
	Sunday    = "Sun"
)

// ValidDays contains all valid day values in week order.
var ValidDays = []string{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// Periods are the fixed daily time ranges every active day is split into.
var Periods = []string{"9am-12pm", "1pm-3pm", "4pm-6pm"}

// DefaultActiveDays is used when the schedule is seeded at first boot.
var DefaultActiveDays = []string{Monday, Tuesday, Wednesday}

// DateFormat is the wire and storage format for week start dates.
const DateFormat = "2006-01-02"

// Domain errors
var (
	ErrEmptyWeekStart  = errors.New("week start date is required")
	ErrNoActiveDays    = errors.New("at least one active day is required")
	ErrInvalidDay      = errors.New("active days must be Mon, Tue, Wed, Thu, Fri, Sat or Sun")
	ErrDuplicateDay    = errors.New("active days cannot repeat")
	ErrInvalidDateForm = errors.New("week start must be a YYYY-MM-DD date")
)

// Config is one schedule configuration. The most recent row is the active week.
type Config struct {
	ID         int64
	WeekStart  time.Time
	ActiveDays []string
	CreatedAt  time.Time
}

// Validate checks if the Config has valid data.
// Week start is not required to fall on a Monday.
// PRE: Config struct is populated
// POST: Returns nil if valid, error otherwise
func (c *Config) Validate() error {
	if c.WeekStart.IsZero() {
		return ErrEmptyWeekStart
	}
	if len(c.ActiveDays) == 0 {
		return ErrNoActiveDays
	}
	seen := make(map[string]bool, len(c.ActiveDays))
	for _, d := range c.ActiveDays {
		if !IsValidDay(d) {
			return ErrInvalidDay
		}
		if seen[d] {
			return ErrDuplicateDay
		}
		seen[d] = true
	}
	return nil
}

// SlotKeys returns the slot keys for every active day and period, in input day order.
// INVARIANT: Config fields are not mutated
func (c *Config) SlotKeys() []string {
	keys := make([]string, 0, len(c.ActiveDays)*len(Periods))
	for _, d := range c.ActiveDays {
		for _, p := range Periods {
			keys = append(keys, SlotKey(d, p))
		}
	}
	return keys
}

// SlotKey joins a day and period into the slot identifier, e.g. "Mon-9am-12pm".
func SlotKey(day, period string) string {
	return day + "-" + period
}

// ParseWeekStart parses a YYYY-MM-DD week start date.
func ParseWeekStart(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, ErrEmptyWeekStart
	}
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, ErrInvalidDateForm
	}
	return t, nil
}

// MondayOf returns the Monday on or before t, truncated to midnight in t's location.
func MondayOf(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	d := t.AddDate(0, 0, -offset)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, t.Location())
}

// IsValidDay reports whether day is one of the seven abbreviations.
func IsValidDay(day string) bool {
	for _, d := range ValidDays {
		if d == day {
			return true
		}
	}
	return false
}
