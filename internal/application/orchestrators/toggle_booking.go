package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"communityhub/internal/adapters/storage"
	"communityhub/internal/application/apperr"
	"communityhub/internal/application/validate"
	"communityhub/internal/domain/fault"
	"communityhub/internal/domain/identity"
	"communityhub/internal/domain/slot"
	"communityhub/internal/domain/volunteer"
)

// SlotStoreForBooking defines the store interface needed by ToggleBooking.
type SlotStoreForBooking interface {
	Get(ctx context.Context, key string) (slot.Slot, error)
	Create(ctx context.Context, s slot.Slot) error
	SetBookedBy(ctx context.Context, key, from, to string) error
}

// MsgSlotChanged is the conflict returned when a slot moves between the read and the write.
const MsgSlotChanged = "slot was changed by another request, please retry"

// ToggleBookingInput carries input for the booking orchestrator.
// Email, when present, must be the caller's own address. Name is accepted and ignored.
type ToggleBookingInput struct {
	Slot   string            `json:"slot" validate:"required,max=50"`
	Email  string            `json:"email" validate:"omitempty,email"`
	Name   string            `json:"name"`
	Caller identity.Identity `json:"-" validate:"required"`
}

// ToggleBookingResult reports what the toggle did.
type ToggleBookingResult struct {
	Slot     string
	Action   slot.Action
	BookedBy string
}

// ToggleBookingDeps holds dependencies for ToggleBooking.
type ToggleBookingDeps struct {
	Slots SlotStoreForBooking
}

// ExecuteToggleBooking books a free slot for the caller or releases the caller's own booking.
// An unknown slot key is created already bound to the caller. The write only applies while
// the slot still holds the booker that was read, so a concurrent toggle loses with a conflict.
// PRE: Caller is set
// POST: slot bound to the caller after "booked", unbound after "released"
// INVARIANT: a slot held by someone else is never changed
func ExecuteToggleBooking(ctx context.Context, input ToggleBookingInput, deps ToggleBookingDeps) (ToggleBookingResult, error) {
	if err := validate.Struct(input); err != nil {
		return ToggleBookingResult{}, err
	}
	key := strings.TrimSpace(input.Slot)
	if err := slot.ValidateKey(key); err != nil {
		return ToggleBookingResult{}, validate.Domain("slot", err)
	}
	email := input.Caller.Email()
	if input.Email != "" && volunteer.NormalizeEmail(input.Email) != email {
		return ToggleBookingResult{}, fault.Authz("you can only book slots for yourself")
	}

	s, err := deps.Slots.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		if err := deps.Slots.Create(ctx, slot.Slot{Key: key, BookedBy: email}); err != nil {
			return ToggleBookingResult{}, apperr.FromStore(err, "slot not found", slot.ErrBookedByOther.Error())
		}
		slog.Info("booking_event", "event", "slot_created", "slot", key, "email", email)
		return ToggleBookingResult{Slot: key, Action: slot.ActionBooked, BookedBy: email}, nil
	}
	if err != nil {
		return ToggleBookingResult{}, apperr.Internal(err)
	}

	prev := s.BookedBy
	action, err := s.Toggle(email)
	if errors.Is(err, slot.ErrBookedByOther) {
		slog.Info("booking_event", "event", "slot_conflict", "slot", key, "email", email)
		return ToggleBookingResult{}, fault.Conflict(err.Error())
	}
	if err != nil {
		return ToggleBookingResult{}, validate.Domain("email", err)
	}
	if err := deps.Slots.SetBookedBy(ctx, key, prev, s.BookedBy); err != nil {
		if errors.Is(err, storage.ErrStale) {
			slog.Info("booking_event", "event", "slot_conflict", "slot", key, "email", email, "reason", "stale")
		}
		return ToggleBookingResult{}, apperr.FromStore(err, "slot not found", MsgSlotChanged)
	}

	slog.Info("booking_event", "event", "slot_"+string(action), "slot", key, "email", email)
	return ToggleBookingResult{Slot: key, Action: action, BookedBy: s.BookedBy}, nil
}

// SlotStoreForReset defines the store interface needed by ResetBookings.
type SlotStoreForReset interface {
	ResetAll(ctx context.Context) (int64, error)
}

// ResetBookingsDeps holds dependencies for ResetBookings.
type ResetBookingsDeps struct {
	Slots SlotStoreForReset
}

// ExecuteResetBookings clears every booking. Irreversible.
// PRE: caller is the administrator
// POST: no slot has a booker; returns how many bookings were cleared
func ExecuteResetBookings(ctx context.Context, deps ResetBookingsDeps) (int64, error) {
	n, err := deps.Slots.ResetAll(ctx)
	if err != nil {
		return 0, apperr.Internal(err)
	}
	slog.Info("booking_event", "event", "bookings_reset", "cleared", n)
	return n, nil
}
