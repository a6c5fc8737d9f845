package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"lotbook/internal/core"
)

type messageResponse struct {
	Message string `json:"message"`
}

type validationResponse struct {
	Message string            `json:"message"`
	Errors  []core.FieldError `json:"errors"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encoding failed", "error", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Message: message})
}

// writeValidationError surfaces the field errors verbatim.
func writeValidationError(w http.ResponseWriter, message string, ve *core.ValidationError) {
	writeJSON(w, http.StatusUnprocessableEntity, validationResponse{
		Message: message,
		Errors:  ve.Fields,
	})
}

// parseID reads the {id} path segment. A non-numeric or non-positive id is
// treated like an id that does not exist.
func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// clientIP extracts the client address, considering proxies.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}
