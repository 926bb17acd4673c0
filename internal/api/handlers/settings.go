package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/room-scheduler/backend/internal/api/middleware"
	"github.com/room-scheduler/backend/internal/storage"
)

// SettingsResponse represents the runtime scheduling policy.
type SettingsResponse struct {
	PendingReserves      bool `json:"pending_reserves"`
	AutoPublishOnApprove bool `json:"auto_publish_on_approve"`
}

// GetSettings returns the scheduling policy flags.
func GetSettings(settings *storage.SettingsRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		resp := SettingsResponse{
			PendingReserves:      settings.GetBool(ctx, storage.SettingPendingReserves, false),
			AutoPublishOnApprove: settings.GetBool(ctx, storage.SettingAutoPublishOnApprove, false),
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

// UpdateSettings updates the scheduling policy flags. Admin only; the new
// values apply to subsequent transitions without a restart.
func UpdateSettings(settings *storage.SettingsRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFrom(r.Context())
		if !ok || !actor.IsAdmin() {
			middleware.WriteError(w, http.StatusForbidden, middleware.ErrForbidden, "Changing settings requires admin")
			return
		}

		var req SettingsResponse
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		ctx := r.Context()
		values := map[string]bool{
			storage.SettingPendingReserves:      req.PendingReserves,
			storage.SettingAutoPublishOnApprove: req.AutoPublishOnApprove,
		}
		for key, value := range values {
			if err := settings.Set(ctx, key, strconv.FormatBool(value)); err != nil {
				middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to store setting")
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(req)
	}
}
