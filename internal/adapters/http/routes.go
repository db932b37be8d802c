package web

import (
	"net/http"

	"communityhub/internal/adapters/http/middleware"
)

func authed(h http.HandlerFunc) http.Handler { return middleware.RequireAuth(h) }

func adminOnly(h http.HandlerFunc) http.Handler { return middleware.RequireAdmin(h) }

// registerRoutes maps every endpoint to its handler and guard.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /admin/perf", adminOnly(s.handlePerf))

	// Accounts
	mux.HandleFunc("POST /registerVolunteer", s.handleRegisterVolunteer)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /logout", s.handleLogout)
	mux.Handle("GET /me", authed(s.handleMe))
	mux.Handle("POST /updateProfile", authed(s.handleUpdateProfile))

	// Timetable
	mux.Handle("GET /timetable", authed(s.handleTimetable))
	mux.Handle("POST /book", authed(s.handleBook))
	mux.Handle("POST /myBookings", authed(s.handleMyBookings))
	mux.Handle("POST /reset", adminOnly(s.handleReset))
	mux.Handle("POST /setScheduleDates", adminOnly(s.handleSetScheduleDates))
	mux.Handle("GET /allBookings", adminOnly(s.handleAllBookings))

	// Unavailable dates
	mux.HandleFunc("GET /getUnavailableDates", s.handleGetUnavailableDates)
	mux.Handle("POST /setUnavailableDate", adminOnly(s.handleSetUnavailableDate))
	mux.Handle("POST /removeUnavailableDate", adminOnly(s.handleRemoveUnavailableDate))

	// Donation catalogue
	mux.Handle("GET /donationPackages", middleware.NoCache(http.HandlerFunc(s.handleDonationPackages)))
	mux.Handle("GET /getAllDonationPackages", middleware.NoCache(adminOnly(s.handleAllDonationPackages)))
	mux.Handle("POST /createDonationPackage", adminOnly(s.handleCreateDonationPackage))
	mux.Handle("PUT /updateDonationPackage", adminOnly(s.handleUpdateDonationPackage))
	mux.Handle("DELETE /deleteDonationPackage/{id}", adminOnly(s.handleDeleteDonationPackage))

	// Donations
	mux.Handle("POST /processDonation", authed(s.handleProcessDonation))
	mux.Handle("POST /getUserDonations", authed(s.handleUserDonations))
	mux.Handle("GET /donationStats", adminOnly(s.handleDonationStats))
	mux.Handle("GET /getAllDonations", adminOnly(s.handleAllDonations))
	mux.Handle("DELETE /deleteDonation/{id}", adminOnly(s.handleDeleteDonation))

	// Events
	mux.HandleFunc("GET /events", s.handleEvents)
	mux.Handle("GET /admin/events", adminOnly(s.handleAdminEvents))
	mux.Handle("POST /events", adminOnly(s.handleCreateEvent))
	mux.Handle("PUT /events/{id}", adminOnly(s.handleUpdateEvent))
	mux.Handle("DELETE /events/{id}", adminOnly(s.handleDeleteEvent))
}
