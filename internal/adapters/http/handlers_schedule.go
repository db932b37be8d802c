package web

import (
	"net/http"
	"time"

	"communityhub/internal/application/orchestrators"
	"communityhub/internal/application/projections"
)

func (s *Server) timetableDeps() projections.TimetableDeps {
	return projections.TimetableDeps{Slots: s.stores.Slots, Schedules: s.stores.Schedules}
}

// handleTimetable handles GET /timetable.
func (s *Server) handleTimetable(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryTimetable(r.Context(), s.timetableDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	okFlat(w, r, result)
}

// handleBook handles POST /book. A second toggle by the same volunteer releases the slot.
func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.ToggleBookingInput
	if err := decodeJSON(w, r, &input, defaultBodyLimit); err != nil {
		writeError(w, r, err)
		return
	}
	input.Caller = caller(r)

	deps := orchestrators.ToggleBookingDeps{Slots: s.stores.Slots}
	result, err := orchestrators.ExecuteToggleBooking(r.Context(), input, deps)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, envelope{
		"action":    result.Action,
		"slot":      result.Slot,
		"booked_by": nullable(result.BookedBy),
	})
}

// handleMyBookings handles POST /myBookings. The body's email is optional.
func (s *Server) handleMyBookings(w http.ResponseWriter, r *http.Request) {
	var query projections.MyBookingsQuery
	if err := decodeOptionalJSON(w, r, &query); err != nil {
		writeError(w, r, err)
		return
	}
	query.Caller = caller(r)

	bookings, err := projections.QueryMyBookings(r.Context(), query, s.timetableDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, envelope{"bookings": bookings})
}

// handleReset handles POST /reset. Irreversible.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	deps := orchestrators.ResetBookingsDeps{Slots: s.stores.Slots}
	cleared, err := orchestrators.ExecuteResetBookings(r.Context(), deps)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, envelope{"message": "all bookings cleared", "cleared": cleared})
}

// handleSetScheduleDates handles POST /setScheduleDates.
// POST: every booking is destroyed and the new week's slots are free
func (s *Server) handleSetScheduleDates(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.ReconfigureScheduleInput
	if err := decodeJSON(w, r, &input, defaultBodyLimit); err != nil {
		writeError(w, r, err)
		return
	}

	deps := orchestrators.ScheduleDeps{Schedules: s.stores.Schedules, Now: s.now}
	cfg, err := orchestrators.ExecuteReconfigureSchedule(r.Context(), input, deps)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, envelope{
		"weekStart":  cfg.WeekStart.Format(time.DateOnly),
		"activeDays": cfg.ActiveDays,
		"slots":      cfg.SlotKeys(),
	})
}

// handleAllBookings handles GET /allBookings.
func (s *Server) handleAllBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := projections.QueryAllBookings(r.Context(), s.timetableDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, envelope{"bookings": bookings})
}

// handleGetUnavailableDates handles GET /getUnavailableDates.
func (s *Server) handleGetUnavailableDates(w http.ResponseWriter, r *http.Request) {
	dates, err := projections.QueryUnavailableDates(r.Context(), s.stores.Unavailable)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, envelope{"dates": dates})
}

// handleSetUnavailableDate handles POST /setUnavailableDate. Re-adding a date succeeds.
func (s *Server) handleSetUnavailableDate(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.UnavailableDateInput
	if err := decodeJSON(w, r, &input, defaultBodyLimit); err != nil {
		writeError(w, r, err)
		return
	}
	added, err := orchestrators.ExecuteSetUnavailableDate(r.Context(), input, s.unavailableDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, envelope{"date": input.Date, "added": added})
}

// handleRemoveUnavailableDate handles POST /removeUnavailableDate. Removing an unknown date succeeds.
func (s *Server) handleRemoveUnavailableDate(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.UnavailableDateInput
	if err := decodeJSON(w, r, &input, defaultBodyLimit); err != nil {
		writeError(w, r, err)
		return
	}
	removed, err := orchestrators.ExecuteRemoveUnavailableDate(r.Context(), input, s.unavailableDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, envelope{"date": input.Date, "removed": removed})
}

func (s *Server) unavailableDeps() orchestrators.UnavailableDeps {
	return orchestrators.UnavailableDeps{Dates: s.stores.Unavailable}
}
