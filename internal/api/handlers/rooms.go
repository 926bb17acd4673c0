package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/room-scheduler/backend/internal/api/middleware"
	"github.com/room-scheduler/backend/internal/storage"
	"github.com/room-scheduler/backend/internal/storage/models"
)

// RoomRequest is the body for creating or updating a room.
type RoomRequest struct {
	Name         string `json:"name"`
	Color        string `json:"color"`
	AllowOverlap bool   `json:"allow_overlap"`
	IsActive     *bool  `json:"is_active,omitempty"`
}

// ListRooms returns all rooms.
func ListRooms(rooms *storage.RoomRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := rooms.List(r.Context())
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query rooms")
			return
		}
		if list == nil {
			list = []models.Room{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(list)
	}
}

// CreateRoom creates a new room. Admin only.
func CreateRoom(rooms *storage.RoomRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFrom(r.Context())
		if !ok || !actor.IsAdmin() {
			middleware.WriteError(w, http.StatusForbidden, middleware.ErrForbidden, "Managing rooms requires admin")
			return
		}

		var req RoomRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}
		if req.Name == "" {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Room name is required")
			return
		}

		room := &models.Room{
			Name:         req.Name,
			Color:        req.Color,
			AllowOverlap: req.AllowOverlap,
			IsActive:     true,
		}
		if req.IsActive != nil {
			room.IsActive = *req.IsActive
		}

		if err := rooms.Create(r.Context(), room); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to create room")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(room)
	}
}

// GetRoom returns a single room by ID.
func GetRoom(rooms *storage.RoomRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room, err := rooms.GetByID(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query room")
			return
		}
		if room == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Room not found")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(room)
	}
}

// UpdateRoom updates a room's fields. Admin only.
func UpdateRoom(rooms *storage.RoomRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFrom(r.Context())
		if !ok || !actor.IsAdmin() {
			middleware.WriteError(w, http.StatusForbidden, middleware.ErrForbidden, "Managing rooms requires admin")
			return
		}

		room, err := rooms.GetByID(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query room")
			return
		}
		if room == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Room not found")
			return
		}

		var req RoomRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}
		if req.Name != "" {
			room.Name = req.Name
		}
		if req.Color != "" {
			room.Color = req.Color
		}
		room.AllowOverlap = req.AllowOverlap
		if req.IsActive != nil {
			room.IsActive = *req.IsActive
		}

		if err := rooms.Update(r.Context(), room); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to update room")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(room)
	}
}

// DeleteRoom removes a room. Admin only.
func DeleteRoom(rooms *storage.RoomRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFrom(r.Context())
		if !ok || !actor.IsAdmin() {
			middleware.WriteError(w, http.StatusForbidden, middleware.ErrForbidden, "Managing rooms requires admin")
			return
		}

		if err := rooms.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Room not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
