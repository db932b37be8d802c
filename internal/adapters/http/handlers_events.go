package web

import (
	"net/http"

	"communityhub/internal/application/orchestrators"
	"communityhub/internal/application/projections"
)

func (s *Server) eventDeps() orchestrators.EventDeps {
	return orchestrators.EventDeps{Events: s.stores.Events, Now: s.now}
}

func (s *Server) eventsDeps() projections.EventsDeps {
	return projections.EventsDeps{Events: s.stores.Events, Now: s.now}
}

// handleEvents handles GET /events. Drafts are never listed.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	events, err := projections.QueryEvents(r.Context(), s.eventsDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, envelope{"events": events})
}

// handleAdminEvents handles GET /admin/events.
func (s *Server) handleAdminEvents(w http.ResponseWriter, r *http.Request) {
	events, err := projections.QueryAdminEvents(r.Context(), s.eventsDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, envelope{"events": events})
}

// handleCreateEvent handles POST /events.
func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.EventInput
	if err := decodeJSON(w, r, &input, eventBodyLimit); err != nil {
		writeError(w, r, err)
		return
	}
	input.Caller = caller(r)

	e, err := orchestrators.ExecuteCreateEvent(r.Context(), input, s.eventDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusCreated, envelope{"event": projections.NewEventView(e, s.now())})
}

// handleUpdateEvent handles PUT /events/{id}.
func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.EventInput
	if err := decodeJSON(w, r, &input, eventBodyLimit); err != nil {
		writeError(w, r, err)
		return
	}
	input.Caller = caller(r)

	e, err := orchestrators.ExecuteUpdateEvent(r.Context(), r.PathValue("id"), input, s.eventDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, envelope{"event": projections.NewEventView(e, s.now())})
}

// handleDeleteEvent handles DELETE /events/{id}.
func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := orchestrators.ExecuteDeleteEvent(r.Context(), r.PathValue("id"), s.eventDeps()); err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, envelope{"message": "event deleted"})
}
