package web

import (
	"log/slog"
	"net/http"

	"communityhub/internal/adapters/http/middleware"
	"communityhub/internal/application/orchestrators"
	"communityhub/internal/domain/identity"
)

// handleRegisterVolunteer handles POST /registerVolunteer.
// POST: volunteer created; no session is issued
func (s *Server) handleRegisterVolunteer(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.RegisterVolunteerInput
	if err := decodeJSON(w, r, &input, defaultBodyLimit); err != nil {
		writeError(w, r, err)
		return
	}

	deps := orchestrators.RegisterVolunteerDeps{
		Volunteers: s.stores.Volunteers,
		Now:        s.now,
	}
	if s.notifier != nil {
		deps.Welcomer = s.notifier
	}
	v, err := orchestrators.ExecuteRegisterVolunteer(r.Context(), input, deps)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ok(w, http.StatusCreated, envelope{
		"message": "registration successful, please log in",
		"volunteer": map[string]any{
			"id":    v.ID,
			"name":  v.Name,
			"email": v.Email,
			"phone": v.Phone,
		},
	})
}

// handleLogin handles POST /login.
// POST: any prior session on this client is destroyed and a fresh one issued
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.LoginInput
	if err := decodeJSON(w, r, &input, defaultBodyLimit); err != nil {
		writeError(w, r, err)
		return
	}

	deps := orchestrators.LoginDeps{
		Volunteers: s.stores.Volunteers,
		Admin: orchestrators.AdminCredentials{
			Email:    s.cfg.Admin.Email,
			Password: s.cfg.Admin.Password,
		},
	}
	id, err := orchestrators.ExecuteLogin(r.Context(), input, deps)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if old, found := s.cookies.Token(r); found {
		s.sessions.Delete(old)
	}
	token, err := s.sessions.Create(id)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if err := s.cookies.Set(w, token); err != nil {
		s.sessions.Delete(token)
		internalError(w, r, err)
		return
	}

	ok(w, http.StatusOK, envelope{"user": identity.ToPayload(id)})
}

// handleLogout handles POST /logout. Logging out without a session succeeds.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token, found := s.cookies.Token(r); found {
		if sess, live := s.sessions.Get(token); live {
			slog.Info("auth_event", "event", "logout", "email", sess.Identity.Email())
		}
		s.sessions.Delete(token)
	}
	s.cookies.Clear(w)
	ok(w, http.StatusOK, envelope{"message": "logged out"})
}

// handleMe handles GET /me.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	ok(w, http.StatusOK, envelope{"user": identity.ToPayload(caller(r))})
}

// handleUpdateProfile handles POST /updateProfile.
// POST: the live session reflects the new name
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.UpdateProfileInput
	if err := decodeJSON(w, r, &input, defaultBodyLimit); err != nil {
		writeError(w, r, err)
		return
	}
	input.Caller = caller(r)

	deps := orchestrators.UpdateProfileDeps{Volunteers: s.stores.Volunteers}
	v, err := orchestrators.ExecuteUpdateProfile(r.Context(), input, deps)
	if err != nil {
		writeError(w, r, err)
		return
	}

	updated := identity.Volunteer{ID: v.ID, Address: v.Email, Name: v.Name}
	if sess, found := middleware.GetSessionFromContext(r.Context()); found {
		s.sessions.Update(sess.Token, updated)
	}
	ok(w, http.StatusOK, envelope{
		"message": "profile updated",
		"user":    identity.ToPayload(updated),
	})
}
