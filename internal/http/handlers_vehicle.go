package http

import (
	"errors"
	"log/slog"
	"net/http"

	"lotbook/internal/core"
)

func (s *Server) handleListVehicles(w http.ResponseWriter, r *http.Request, userID int64) {
	vehicles, err := s.store.ListVehicles(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "List vehicles failed", "error", err, "user_id", userID)
		writeMessage(w, http.StatusInternalServerError, "Failed to fetch vehicles")
		return
	}
	if vehicles == nil {
		vehicles = []core.Vehicle{}
	}
	writeJSON(w, http.StatusOK, vehicles)
}

func (s *Server) handleGetVehicle(w http.ResponseWriter, r *http.Request, userID int64) {
	id, ok := parseID(r)
	if !ok {
		writeMessage(w, http.StatusNotFound, "Vehicle not found")
		return
	}

	vehicle, err := s.store.GetVehicle(r.Context(), id, userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Vehicle not found")
			return
		}
		slog.ErrorContext(r.Context(), "Get vehicle failed", "error", err, "vehicle_id", id)
		writeMessage(w, http.StatusInternalServerError, "Failed to fetch vehicle")
		return
	}
	writeJSON(w, http.StatusOK, vehicle)
}

func (s *Server) handleCreateVehicle(w http.ResponseWriter, r *http.Request, userID int64) {
	nv, ve, err := parseVehicleCreate(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if ve != nil {
		writeValidationError(w, "Invalid vehicle data", ve)
		return
	}

	vehicle, err := s.store.CreateVehicle(r.Context(), nv, userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Create vehicle failed", "error", err, "user_id", userID)
		writeMessage(w, http.StatusInternalServerError, "Failed to create vehicle")
		return
	}
	writeJSON(w, http.StatusCreated, vehicle)
}

func (s *Server) handleUpdateVehicle(w http.ResponseWriter, r *http.Request, userID int64) {
	id, ok := parseID(r)
	if !ok {
		writeMessage(w, http.StatusNotFound, "Vehicle not found")
		return
	}

	patch, ve, err := parseVehiclePatch(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if ve != nil {
		writeValidationError(w, "Invalid vehicle data", ve)
		return
	}

	vehicle, err := s.store.UpdateVehicle(r.Context(), id, patch, userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Vehicle not found")
			return
		}
		slog.ErrorContext(r.Context(), "Update vehicle failed", "error", err, "vehicle_id", id)
		writeMessage(w, http.StatusInternalServerError, "Failed to update vehicle")
		return
	}
	writeJSON(w, http.StatusOK, vehicle)
}

func (s *Server) handleDeleteVehicle(w http.ResponseWriter, r *http.Request, userID int64) {
	id, ok := parseID(r)
	if !ok {
		writeMessage(w, http.StatusNotFound, "Vehicle not found")
		return
	}

	deleted, err := s.store.DeleteVehicle(r.Context(), id, userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Delete vehicle failed", "error", err, "vehicle_id", id)
		writeMessage(w, http.StatusInternalServerError, "Failed to delete vehicle")
		return
	}
	if !deleted {
		writeMessage(w, http.StatusNotFound, "Vehicle not found")
		return
	}
	writeMessage(w, http.StatusOK, "Vehicle deleted successfully")
}
