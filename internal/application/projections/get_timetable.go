package projections

import (
	"context"
	"errors"

	"communityhub/internal/adapters/storage"
	"communityhub/internal/application/apperr"
	"communityhub/internal/domain/fault"
	"communityhub/internal/domain/identity"
	domainSchedule "communityhub/internal/domain/schedule"
	domainSlot "communityhub/internal/domain/slot"
	"communityhub/internal/domain/volunteer"
)

// SlotView is one timetable cell. BookedBy is null when the slot is free.
type SlotView struct {
	Slot     string  `json:"slot"`
	BookedBy *string `json:"booked_by"`
}

// TimetableResult carries the active week.
type TimetableResult struct {
	WeekStart  *string    `json:"weekStart"`
	ActiveDays []string   `json:"activeDays"`
	Slots      []SlotView `json:"slots"`
}

// TimetableDeps holds dependencies for the timetable queries.
type TimetableDeps struct {
	Slots     SlotStore
	Schedules ScheduleStore
}

// QueryTimetable returns the slots of the active configuration in day and period order.
// PRE: none
// POST: WeekStart is nil and every slot row is returned when no configuration exists
func QueryTimetable(ctx context.Context, deps TimetableDeps) (TimetableResult, error) {
	slots, err := deps.Slots.List(ctx)
	if err != nil {
		return TimetableResult{}, apperr.Internal(err)
	}
	byKey := make(map[string]domainSlot.Slot, len(slots))
	for _, s := range slots {
		byKey[s.Key] = s
	}

	cfg, err := deps.Schedules.Latest(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		result := TimetableResult{ActiveDays: []string{}, Slots: make([]SlotView, 0, len(slots))}
		for _, s := range slots {
			result.Slots = append(result.Slots, slotView(s))
		}
		return result, nil
	}
	if err != nil {
		return TimetableResult{}, apperr.Internal(err)
	}

	weekStart := cfg.WeekStart.Format(domainSchedule.DateFormat)
	result := TimetableResult{WeekStart: &weekStart, ActiveDays: cfg.ActiveDays}
	keys := cfg.SlotKeys()
	result.Slots = make([]SlotView, 0, len(keys))
	for _, key := range keys {
		s, ok := byKey[key]
		if !ok {
			s = domainSlot.Slot{Key: key}
		}
		result.Slots = append(result.Slots, slotView(s))
	}
	return result, nil
}

func slotView(s domainSlot.Slot) SlotView {
	v := SlotView{Slot: s.Key}
	if s.IsBooked() {
		v.BookedBy = &s.BookedBy
	}
	return v
}

// BookingView is a bound slot. BookerName is empty when no volunteer row matches.
type BookingView struct {
	Slot       string `json:"slot"`
	BookedBy   string `json:"booked_by"`
	BookerName string `json:"booker_name,omitempty"`
}

// MyBookingsQuery carries the requested email and the caller.
type MyBookingsQuery struct {
	Email  string            `json:"email"`
	Caller identity.Identity `json:"-"`
}

// QueryMyBookings lists the caller's slots ordered by slot key.
// PRE: Caller is set
// POST: Authz fault when Email names someone else; an empty Email means the caller
func QueryMyBookings(ctx context.Context, query MyBookingsQuery, deps TimetableDeps) ([]BookingView, error) {
	if query.Caller == nil {
		return nil, fault.Unauthenticated()
	}
	email := query.Caller.Email()
	if query.Email != "" && volunteer.NormalizeEmail(query.Email) != email {
		return nil, fault.Authz("you can only view your own bookings")
	}
	slots, err := deps.Slots.ListByBooker(ctx, email)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	views := make([]BookingView, 0, len(slots))
	for _, s := range slots {
		views = append(views, BookingView{Slot: s.Key, BookedBy: s.BookedBy})
	}
	return views, nil
}

// QueryAllBookings lists every bound slot with the booker's name.
// PRE: caller is the administrator
// POST: Returns bookings ordered by slot key, possibly empty
func QueryAllBookings(ctx context.Context, deps TimetableDeps) ([]BookingView, error) {
	bookings, err := deps.Slots.ListBookings(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	views := make([]BookingView, 0, len(bookings))
	for _, b := range bookings {
		views = append(views, BookingView{Slot: b.Slot, BookedBy: b.BookedBy, BookerName: b.BookerName})
	}
	return views, nil
}

// QueryUnavailableDates lists unavailable dates ascending as YYYY-MM-DD strings.
func QueryUnavailableDates(ctx context.Context, dates UnavailableStore) ([]string, error) {
	list, err := dates.List(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	out := make([]string, 0, len(list))
	for _, d := range list {
		out = append(out, d.String())
	}
	return out, nil
}
