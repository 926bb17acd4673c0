// Package handlers implements the REST API endpoints.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/room-scheduler/backend/internal/storage"
	ws "github.com/room-scheduler/backend/internal/websocket"
)

// HealthResponse is the health check payload.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// StatusResponse is the status endpoint payload.
type StatusResponse struct {
	Status           string    `json:"status"`
	Database         string    `json:"database"`
	WebSocketClients int       `json:"websocket_clients"`
	Time             time.Time `json:"time"`
}

// HealthCheck returns a handler reporting service and database health.
func HealthCheck(db *storage.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{Status: "ok", Database: "ok"}
		status := http.StatusOK

		if err := db.PingContext(r.Context()); err != nil {
			resp.Status = "degraded"
			resp.Database = "unreachable"
			status = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(resp)
	}
}

// Status returns a handler with runtime details for the UI.
func Status(db *storage.DB, hub *ws.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := StatusResponse{
			Status:   "ok",
			Database: "ok",
			Time:     time.Now().UTC(),
		}
		if hub != nil {
			resp.WebSocketClients = hub.ClientCount()
		}
		if err := db.PingContext(r.Context()); err != nil {
			resp.Status = "degraded"
			resp.Database = "unreachable"
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}
