package web

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// perfTopN bounds the slowest-path lists in the perf snapshot.
const perfTopN = 10

// handleHealth handles GET /health. It pings a database already flagged unavailable.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ready(r.Context()); err != nil {
		slog.Warn("health_degraded", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, envelope{
			"success":  false,
			"status":   "unavailable",
			"database": "down",
			"message":  "database unavailable",
		})
		return
	}
	ok(w, http.StatusOK, envelope{"status": "ok", "database": "up"})
}

// handlePerf handles GET /admin/perf[?minutes=N]. The window defaults to one hour and
// is measured on the wall clock, which is what request timings are stamped with.
func (s *Server) handlePerf(w http.ResponseWriter, r *http.Request) {
	if s.collector == nil {
		writeJSON(w, http.StatusNotFound, envelope{"success": false, "message": "performance collection disabled"})
		return
	}
	window := time.Hour
	if m, err := strconv.Atoi(r.URL.Query().Get("minutes")); err == nil && m > 0 {
		window = time.Duration(m) * time.Minute
	}
	okFlat(w, r, s.collector.Snapshot(time.Now().Add(-window), perfTopN))
}
