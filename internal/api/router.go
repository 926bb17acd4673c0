// Package api provides HTTP routing and handlers for the REST API.
package api

import (
	"github.com/gorilla/mux"
	"github.com/room-scheduler/backend/internal/api/handlers"
	"github.com/room-scheduler/backend/internal/api/middleware"
	"github.com/room-scheduler/backend/internal/config"
	"github.com/room-scheduler/backend/internal/event"
	"github.com/room-scheduler/backend/internal/storage"
	"github.com/room-scheduler/backend/internal/websocket"
)

// Deps bundles the services the router wires into handlers.
type Deps struct {
	DB       *storage.DB
	Rooms    *storage.RoomRepository
	Events   *storage.EventRepository
	Settings *storage.SettingsRepository
	Service  *event.Service
	Hub      *websocket.Hub
	Config   *config.Config
}

// NewRouter creates and configures the HTTP router with all API routes.
func NewRouter(d Deps) *mux.Router {
	r := mux.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logging)
	r.Use(middleware.ErrorRecovery)

	// Endpoints outside bearer auth: health probe, ICS feeds (consumed
	// by calendar clients that cannot send headers) and the WebSocket
	// upgrade.
	r.HandleFunc("/api/health", handlers.HealthCheck(d.DB)).Methods("GET")
	r.HandleFunc("/api/rooms/{id}/calendar.ics", handlers.RoomCalendar(d.Rooms, d.Events)).Methods("GET")
	r.HandleFunc("/api/ws", handlers.WebSocketUpgrade(d.Hub)).Methods("GET")

	// Authenticated API subrouter
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.Auth([]byte(d.Config.JWTSecret)))

	api.HandleFunc("/status", handlers.Status(d.DB, d.Hub)).Methods("GET")

	// Room endpoints
	api.HandleFunc("/rooms", handlers.ListRooms(d.Rooms)).Methods("GET")
	api.HandleFunc("/rooms", handlers.CreateRoom(d.Rooms)).Methods("POST")
	api.HandleFunc("/rooms/{id}", handlers.GetRoom(d.Rooms)).Methods("GET")
	api.HandleFunc("/rooms/{id}", handlers.UpdateRoom(d.Rooms)).Methods("PUT")
	api.HandleFunc("/rooms/{id}", handlers.DeleteRoom(d.Rooms)).Methods("DELETE")
	api.HandleFunc("/rooms/{id}/occurrences", handlers.RoomOccurrences(d.Service)).Methods("GET")
	api.HandleFunc("/rooms/{id}/layout", handlers.RoomLayout(d.Service, d.Config.Layout)).Methods("GET")
	api.HandleFunc("/rooms/{id}/conflicts/check", handlers.CheckConflicts(d.Service)).Methods("POST")

	// Event endpoints
	api.HandleFunc("/events", handlers.ListEvents(d.Service)).Methods("GET")
	api.HandleFunc("/events", handlers.CreateEvent(d.Service)).Methods("POST")
	api.HandleFunc("/events/{id}", handlers.GetEvent(d.Service)).Methods("GET")
	api.HandleFunc("/events/{id}", handlers.UpdateEvent(d.Service)).Methods("PUT")

	// Lifecycle transition endpoints
	transitions := map[string]event.Action{
		"submit":    event.ActionSubmit,
		"approve":   event.ActionApprove,
		"reject":    event.ActionReject,
		"publish":   event.ActionPublish,
		"unapprove": event.ActionUnapprove,
		"unpublish": event.ActionUnpublish,
		"resubmit":  event.ActionResubmit,
	}
	for path, action := range transitions {
		api.HandleFunc("/events/{id}/"+path, handlers.TransitionEvent(d.Service, action)).Methods("POST")
	}

	// Settings endpoints
	api.HandleFunc("/settings", handlers.GetSettings(d.Settings)).Methods("GET")
	api.HandleFunc("/settings", handlers.UpdateSettings(d.Settings)).Methods("PUT")

	return r
}
