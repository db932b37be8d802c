package slot

import (
	"errors"
	"strings"
)

// MaxKeyLength bounds slot keys accepted from clients.
const MaxKeyLength = 50

// Domain errors
var (
	ErrEmptyKey      = errors.New("slot cannot be empty")
	ErrKeyTooLong    = errors.New("slot cannot exceed 50 characters")
	ErrEmptyEmail    = errors.New("booking email cannot be empty")
	ErrBookedByOther = errors.New("slot already booked by another user")
)

// Action is the outcome of a toggle.
type Action string

const (
	ActionBooked   Action = "booked"
	ActionReleased Action = "released"
)

// Slot is a bookable unit of the weekly timetable.
// BookedBy is empty when the slot is free.
type Slot struct {
	ID       int64
	Key      string
	BookedBy string
}

// ValidateKey checks a client-supplied slot key.
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	return nil
}

// IsBooked reports whether anyone holds the slot.
func (s *Slot) IsBooked() bool {
	return s.BookedBy != ""
}

// Toggle books a free slot for email or releases it when email already holds it.
// PRE: email is non-empty
// POST: BookedBy is email after ActionBooked, empty after ActionReleased
// INVARIANT: a slot held by another email is never changed
func (s *Slot) Toggle(email string) (Action, error) {
	if email == "" {
		return "", ErrEmptyEmail
	}
	switch s.BookedBy {
	case "":
		s.BookedBy = email
		return ActionBooked, nil
	case email:
		s.BookedBy = ""
		return ActionReleased, nil
	default:
		return "", ErrBookedByOther
	}
}
