package http

import (
	"errors"
	"log/slog"
	"net/http"

	"lotbook/internal/core"
)

// handleListExpenses returns an empty array when the vehicle does not resolve
// for this owner; a foreign or missing vehicle is indistinguishable from one
// with no expenses yet.
func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request, userID int64) {
	id, ok := parseID(r)
	if !ok {
		writeJSON(w, http.StatusOK, []core.Expense{})
		return
	}

	expenses, err := s.store.ListVehicleExpenses(r.Context(), id, userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "List expenses failed", "error", err, "vehicle_id", id)
		writeMessage(w, http.StatusInternalServerError, "Failed to fetch vehicle expenses")
		return
	}
	if expenses == nil {
		expenses = []core.Expense{}
	}
	writeJSON(w, http.StatusOK, expenses)
}

// handleAddExpense fails hard on an unresolved vehicle, unlike the list path.
func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request, userID int64) {
	id, ok := parseID(r)
	if !ok {
		writeMessage(w, http.StatusNotFound, "Vehicle not found")
		return
	}

	ne, ve, err := parseExpenseCreate(r, id)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if ve != nil {
		writeValidationError(w, "Invalid expense data", ve)
		return
	}

	expense, err := s.store.AddVehicleExpense(r.Context(), ne, userID)
	if err != nil {
		if errors.Is(err, core.ErrVehicleNotFound) {
			writeMessage(w, http.StatusNotFound, "Vehicle not found")
			return
		}
		slog.ErrorContext(r.Context(), "Add expense failed", "error", err, "vehicle_id", id)
		writeMessage(w, http.StatusInternalServerError, "Failed to create vehicle expense")
		return
	}
	writeJSON(w, http.StatusCreated, expense)
}
