package http

import (
	"log/slog"
	"net/http"
)

// handleStats returns the five-metric snapshot, recomputed from the owner's
// full vehicle set on every call.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request, userID int64) {
	stats, err := s.store.VehicleStats(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Stats computation failed", "error", err, "user_id", userID)
		writeMessage(w, http.StatusInternalServerError, "Failed to fetch analytics")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
