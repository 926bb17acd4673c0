package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/room-scheduler/backend/internal/api/middleware"
	"github.com/room-scheduler/backend/internal/config"
	"github.com/room-scheduler/backend/internal/event"
	"github.com/room-scheduler/backend/internal/ics"
	"github.com/room-scheduler/backend/internal/schedule"
	"github.com/room-scheduler/backend/internal/storage"
	"github.com/room-scheduler/backend/internal/storage/models"
)

func parseWindow(r *http.Request) (schedule.Window, error) {
	q := r.URL.Query()
	from, err := time.Parse(time.RFC3339, q.Get("from"))
	if err != nil {
		return schedule.Window{}, schedule.NewValidationError("invalid or missing from parameter (RFC3339)")
	}
	to, err := time.Parse(time.RFC3339, q.Get("to"))
	if err != nil {
		return schedule.Window{}, schedule.NewValidationError("invalid or missing to parameter (RFC3339)")
	}
	if !to.After(from) {
		return schedule.Window{}, schedule.NewValidationError("to must be after from")
	}
	return schedule.Window{From: from.UTC(), To: to.UTC()}, nil
}

// RoomOccurrences expands a room's schedule over the query window.
func RoomOccurrences(svc *event.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		window, err := parseWindow(r)
		if err != nil {
			middleware.WriteServiceError(w, err)
			return
		}

		occs, err := svc.RoomOccurrences(r.Context(), mux.Vars(r)["id"], window)
		if err != nil {
			middleware.WriteServiceError(w, err)
			return
		}
		if occs == nil {
			occs = []schedule.RoomOccurrence{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(occs)
	}
}

// PositionedOccurrence pairs layout coordinates with the occurrence's
// status for styling.
type PositionedOccurrence struct {
	schedule.Positioned
	Title  string             `json:"title"`
	Status models.EventStatus `json:"status"`
}

// RoomLayout computes overlap-free time-grid coordinates for one
// room-day. Grid parameters default from the server config and can be
// overridden per request.
func RoomLayout(svc *event.Service, defaults config.LayoutConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		day, err := time.Parse("2006-01-02", q.Get("date"))
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Invalid or missing date parameter (YYYY-MM-DD)")
			return
		}

		origin := defaults.GridOriginMinute
		if v := q.Get("origin_minute"); v != "" {
			if origin, err = strconv.Atoi(v); err != nil {
				middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Invalid origin_minute")
				return
			}
		}
		ppm := defaults.PixelsPerMinute
		if v := q.Get("pixels_per_minute"); v != "" {
			if ppm, err = strconv.ParseFloat(v, 64); err != nil || ppm <= 0 {
				middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Invalid pixels_per_minute")
				return
			}
		}
		minHeight := defaults.MinHeightPx
		if v := q.Get("min_height_px"); v != "" {
			if minHeight, err = strconv.ParseFloat(v, 64); err != nil || minHeight < 0 {
				middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Invalid min_height_px")
				return
			}
		}

		dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
		window := schedule.Window{From: dayStart, To: dayStart.AddDate(0, 0, 1)}

		occs, err := svc.RoomOccurrences(r.Context(), mux.Vars(r)["id"], window)
		if err != nil {
			middleware.WriteServiceError(w, err)
			return
		}

		// The layout packs plain occurrences; statuses are joined back
		// for styling afterwards.
		plain := make([]schedule.Occurrence, len(occs))
		meta := make(map[string]*schedule.RoomOccurrence, len(occs))
		for i := range occs {
			plain[i] = occs[i].Occurrence
			meta[occurrenceKey(occs[i].Occurrence)] = &occs[i]
		}

		positioned := schedule.Layout(plain, origin, ppm, minHeight)
		out := make([]PositionedOccurrence, 0, len(positioned))
		for _, p := range positioned {
			entry := PositionedOccurrence{Positioned: p}
			if m := meta[occurrenceKey(p.Occurrence)]; m != nil {
				entry.Title = m.Title
				entry.Status = m.Status
			}
			out = append(out, entry)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(out)
	}
}

func occurrenceKey(o schedule.Occurrence) string {
	return o.SourceEventID + "/" + o.StartsAt.UTC().Format(time.RFC3339)
}

// CheckConflicts is a dry run: it reports the conflicts a candidate
// definition would have in the room if it were approved.
func CheckConflicts(svc *event.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			event.EventInput
			ExcludeEventID string `json:"exclude_event_id,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}
		req.RoomID = mux.Vars(r)["id"]

		conflicts, err := svc.CheckConflicts(r.Context(), req.EventInput, req.ExcludeEventID, models.StatusApproved)
		if err != nil {
			middleware.WriteServiceError(w, err)
			return
		}
		if conflicts == nil {
			conflicts = []schedule.Conflict{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"has_conflict": len(conflicts) > 0,
			"conflicts":    conflicts,
		})
	}
}

// RoomCalendar serves the room's schedule as an iCalendar feed.
func RoomCalendar(rooms *storage.RoomRepository, events *storage.EventRepository) http.HandlerFunc {
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

		list, err := events.List(r.Context(), storage.EventFilter{RoomID: room.ID})
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query events")
			return
		}

		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.Write([]byte(ics.ExportRoom(room, list)))
	}
}
