package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/room-scheduler/backend/internal/api/middleware"
	"github.com/room-scheduler/backend/internal/event"
	"github.com/room-scheduler/backend/internal/storage"
	"github.com/room-scheduler/backend/internal/storage/models"
)

// ListEvents returns event definitions, optionally filtered by room,
// status or creator.
func ListEvents(svc *event.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := storage.EventFilter{
			RoomID:           q.Get("room_id"),
			Status:           models.EventStatus(q.Get("status")),
			CreatedBy:        q.Get("created_by"),
			IncludeInstances: q.Get("include_instances") == "true",
		}
		if filter.Status != "" && !models.ValidStatus(filter.Status) {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Unknown status filter")
			return
		}

		events, err := svc.List(r.Context(), filter)
		if err != nil {
			middleware.WriteServiceError(w, err)
			return
		}
		if events == nil {
			events = []models.Event{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(events)
	}
}

// CreateEvent creates a new draft event owned by the caller.
func CreateEvent(svc *event.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFrom(r.Context())
		if !ok {
			middleware.WriteError(w, http.StatusUnauthorized, middleware.ErrUnauthorized, "Authentication required")
			return
		}

		var in event.EventInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		created, err := svc.Create(r.Context(), actor, in)
		if err != nil {
			middleware.WriteServiceError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(created)
	}
}

// GetEvent returns a single event by ID.
func GetEvent(svc *event.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ev, err := svc.Get(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			middleware.WriteServiceError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ev)
	}
}

// UpdateEvent edits an event's definition fields under the edit rules.
func UpdateEvent(svc *event.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFrom(r.Context())
		if !ok {
			middleware.WriteError(w, http.StatusUnauthorized, middleware.ErrUnauthorized, "Authentication required")
			return
		}

		var in event.EventInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		updated, err := svc.Update(r.Context(), actor, mux.Vars(r)["id"], in)
		if err != nil {
			middleware.WriteServiceError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(updated)
	}
}

// TransitionRequest is the body for lifecycle transition endpoints. The
// expected status is the one the caller last observed; the transition is
// rejected when the stored status has moved on since.
type TransitionRequest struct {
	ExpectedStatus models.EventStatus `json:"expected_status"`
	Notes          string             `json:"notes,omitempty"`
}

// TransitionEvent returns a handler applying the given lifecycle action.
func TransitionEvent(svc *event.Service, action event.Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFrom(r.Context())
		if !ok {
			middleware.WriteError(w, http.StatusUnauthorized, middleware.ErrUnauthorized, "Authentication required")
			return
		}

		var req TransitionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}
		if req.ExpectedStatus != "" && !models.ValidStatus(req.ExpectedStatus) {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Unknown expected_status")
			return
		}

		updated, err := svc.Transition(r.Context(), actor, mux.Vars(r)["id"], action, req.ExpectedStatus, req.Notes)
		if err != nil {
			middleware.WriteServiceError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(updated)
	}
}
