package event

import (
	"context"
	"database/sql"
	"time"

	"github.com/room-scheduler/backend/internal/auth"
	"github.com/room-scheduler/backend/internal/schedule"
	"github.com/room-scheduler/backend/internal/storage"
	"github.com/room-scheduler/backend/internal/storage/models"
	"github.com/room-scheduler/backend/internal/websocket"
)

// DefaultHorizonDays bounds conflict checks and instance materialization
// for open-ended recurring rules.
const DefaultHorizonDays = 60

// Service applies the lifecycle machine and conflict detection against
// storage. Transitions run inside one database transaction so the
// conflict check and the conditional status write form a single atomic
// unit.
type Service struct {
	db          *storage.DB
	events      *storage.EventRepository
	rooms       *storage.RoomRepository
	settings    *storage.SettingsRepository
	expander    *schedule.Expander
	broadcaster *websocket.EventBroadcaster
	horizonDays int
}

// NewService creates an event service. hub may be nil when no WebSocket
// notifications are wanted.
func NewService(
	db *storage.DB,
	events *storage.EventRepository,
	rooms *storage.RoomRepository,
	settings *storage.SettingsRepository,
	expander *schedule.Expander,
	hub *websocket.Hub,
	horizonDays int,
) *Service {
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}
	var broadcaster *websocket.EventBroadcaster
	if hub != nil {
		broadcaster = websocket.NewEventBroadcaster(hub)
	}
	return &Service{
		db:          db,
		events:      events,
		rooms:       rooms,
		settings:    settings,
		expander:    expander,
		broadcaster: broadcaster,
		horizonDays: horizonDays,
	}
}

// Policy reads the current scheduling policy from the settings table, so
// policy flips take effect without a restart.
func (s *Service) Policy(ctx context.Context) schedule.Policy {
	return schedule.Policy{
		PendingReserves:      s.settings.GetBool(ctx, storage.SettingPendingReserves, false),
		AutoPublishOnApprove: s.settings.GetBool(ctx, storage.SettingAutoPublishOnApprove, false),
	}
}

// EventInput carries the caller-editable definition fields.
type EventInput struct {
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	RoomID         string    `json:"room_id"`
	StartsAt       time.Time `json:"starts_at"`
	EndsAt         time.Time `json:"ends_at"`
	RecurrenceRule string    `json:"recurrence_rule,omitempty"`
}

func (s *Service) validateInput(ctx context.Context, in EventInput) error {
	if in.Title == "" {
		return schedule.NewValidationError("title is required")
	}
	if !in.EndsAt.After(in.StartsAt) {
		return schedule.NewValidationError("ends_at must be after starts_at")
	}
	if _, err := schedule.DecodeRule(in.RecurrenceRule); err != nil {
		return err
	}

	room, err := s.rooms.GetByID(ctx, in.RoomID)
	if err != nil {
		return err
	}
	if room == nil {
		return schedule.NewNotFoundError("room %s not found", in.RoomID)
	}
	if !room.IsActive {
		return schedule.NewValidationError("room %q is not active", room.Name)
	}
	return nil
}

// Create stores a new draft event definition owned by the actor.
func (s *Service) Create(ctx context.Context, actor auth.Actor, in EventInput) (*models.Event, error) {
	if err := s.validateInput(ctx, in); err != nil {
		return nil, err
	}

	ev := &models.Event{
		Title:       in.Title,
		Description: in.Description,
		RoomID:      in.RoomID,
		StartsAt:    in.StartsAt.UTC(),
		EndsAt:      in.EndsAt.UTC(),
		Status:      models.StatusDraft,
		CreatedBy:   actor.ID,
	}
	if in.RecurrenceRule != "" {
		rule := in.RecurrenceRule
		ev.RecurrenceRule = &rule
	}

	if err := s.events.Create(ctx, ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// Update edits a definition's fields under the edit rules: draft events
// by owner or admin, anything past draft by admin only. Edits to a
// published event take effect immediately. Changing the time range or
// rule of a recurring event drops its materialized instances so the next
// materializer pass regenerates them.
func (s *Service) Update(ctx context.Context, actor auth.Actor, id string, in EventInput) (*models.Event, error) {
	ev, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ev == nil {
		return nil, schedule.NewNotFoundError("event %s not found", id)
	}
	if ev.ParentEventID != nil {
		return nil, schedule.NewValidationError("event %s is a recurring instance; edit its parent definition", id)
	}
	if !CanEdit(actor, ev) {
		return nil, schedule.NewPermissionError("editing an event in status %q requires admin", ev.Status)
	}
	if err := s.validateInput(ctx, in); err != nil {
		return nil, err
	}

	scheduleChanged := !ev.StartsAt.Equal(in.StartsAt.UTC()) ||
		!ev.EndsAt.Equal(in.EndsAt.UTC()) ||
		ev.Rule() != in.RecurrenceRule ||
		ev.RoomID != in.RoomID

	ev.Title = in.Title
	ev.Description = in.Description
	ev.RoomID = in.RoomID
	ev.StartsAt = in.StartsAt.UTC()
	ev.EndsAt = in.EndsAt.UTC()
	ev.RecurrenceRule = nil
	if in.RecurrenceRule != "" {
		rule := in.RecurrenceRule
		ev.RecurrenceRule = &rule
	}

	if err := s.events.Update(ctx, ev); err != nil {
		return nil, err
	}
	if scheduleChanged {
		if err := s.events.DeleteInstances(ctx, ev.ID); err != nil {
			return nil, err
		}
	}
	return ev, nil
}

// Get retrieves one event definition.
func (s *Service) Get(ctx context.Context, id string) (*models.Event, error) {
	ev, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ev == nil {
		return nil, schedule.NewNotFoundError("event %s not found", id)
	}
	return ev, nil
}

// List retrieves event definitions matching the filter.
func (s *Service) List(ctx context.Context, filter storage.EventFilter) ([]models.Event, error) {
	return s.events.List(ctx, filter)
}

// Transition applies a lifecycle action. expected is the status the
// caller last observed; a mismatch with the stored status is rejected
// without mutation. Approve and publish re-validate room conflicts inside
// the same transaction as the status write.
func (s *Service) Transition(ctx context.Context, actor auth.Actor, id string, action Action, expected models.EventStatus, notes string) (*models.Event, error) {
	var updated *models.Event
	var previous models.EventStatus

	err := s.db.Transaction(ctx, func(tx *sql.Tx) error {
		ev, err := s.events.GetByIDTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if ev == nil {
			return schedule.NewNotFoundError("event %s not found", id)
		}
		if ev.ParentEventID != nil {
			return schedule.NewValidationError("event %s is a recurring instance; transition its parent definition", id)
		}
		if expected != "" && ev.Status != expected {
			return schedule.NewStateError("event %s is %q, expected %q", id, ev.Status, expected)
		}

		machine := NewMachine(s.Policy(ctx))
		tr, err := machine.Resolve(actor, ev.Status, action, ev)
		if err != nil {
			return err
		}

		if tr.ChecksConflict() {
			if err := s.checkConflicts(ctx, tx, ev, tr.To()); err != nil {
				return err
			}
		}

		var reviewerID, reviewerNotes *string
		if tr.SetsReviewer() {
			actorID := actor.ID
			reviewerID = &actorID
			if notes != "" {
				n := notes
				reviewerNotes = &n
			}
			ev.ReviewerID = reviewerID
			ev.ReviewerNotes = reviewerNotes
		}

		ok, err := s.events.UpdateStatusIf(ctx, tx, ev.ID, ev.Status, tr.To(), reviewerID, reviewerNotes)
		if err != nil {
			return err
		}
		if !ok {
			return schedule.NewStateError("event %s status changed concurrently", id)
		}

		previous = ev.Status
		ev.Status = tr.To()
		updated = ev
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcaster.BroadcastStatusChanged(updated, previous, actor.ID)
	return updated, nil
}

// CheckConflicts is the dry-run used by the API before submitting: it
// reports the conflicts a candidate definition would have in its room
// when held against the given status.
func (s *Service) CheckConflicts(ctx context.Context, in EventInput, excludeID string, as models.EventStatus) ([]schedule.Conflict, error) {
	if err := s.validateInput(ctx, in); err != nil {
		return nil, err
	}
	cfg, err := schedule.DecodeRule(in.RecurrenceRule)
	if err != nil {
		return nil, err
	}
	def := schedule.Definition{
		ID:         excludeID,
		StartsAt:   in.StartsAt.UTC(),
		EndsAt:     in.EndsAt.UTC(),
		Recurrence: cfg,
	}
	room, err := s.rooms.GetByID(ctx, in.RoomID)
	if err != nil {
		return nil, err
	}
	return s.conflictsWithin(ctx, s.db, def, in.RoomID, room, as)
}

// checkConflicts aborts a reserving transition when the event's
// occurrences collide with another reserving event in the room.
func (s *Service) checkConflicts(ctx context.Context, q storage.Queryable, ev *models.Event, target models.EventStatus) error {
	room, err := s.rooms.GetByID(ctx, ev.RoomID)
	if err != nil {
		return err
	}
	if room == nil {
		return schedule.NewNotFoundError("room %s not found", ev.RoomID)
	}

	cfg, err := schedule.DecodeRule(ev.Rule())
	if err != nil {
		return err
	}
	def := schedule.Definition{
		ID:         ev.ID,
		StartsAt:   ev.StartsAt,
		EndsAt:     ev.EndsAt,
		Recurrence: cfg,
	}

	conflicts, err := s.conflictsWithin(ctx, q, def, ev.RoomID, room, target)
	if err != nil {
		return err
	}
	if len(conflicts) == 0 {
		return nil
	}

	first := conflicts[0]
	s.broadcaster.BroadcastConflictDetected(websocket.ConflictPayload{
		EventID:      ev.ID,
		RoomID:       ev.RoomID,
		OtherEventID: first.EventID,
		OverlapStart: first.OverlapStart,
		OverlapEnd:   first.OverlapEnd,
	})
	return schedule.NewConflictError("room %q is already booked by %q from %s to %s",
		room.Name, first.Title,
		first.OverlapStart.Format(time.RFC3339), first.OverlapEnd.Format(time.RFC3339))
}

func (s *Service) conflictsWithin(ctx context.Context, q storage.Queryable, def schedule.Definition, roomID string, room *models.Room, as models.EventStatus) ([]schedule.Conflict, error) {
	checker := schedule.NewChecker(s.Policy(ctx))
	if room != nil && room.AllowOverlap {
		return nil, nil
	}

	window := schedule.Window{
		From: def.StartsAt,
		To:   def.StartsAt.AddDate(0, 0, s.horizonDays),
	}

	candidates, err := s.expander.Expand(def, window)
	if err != nil {
		return nil, err
	}

	others, err := s.events.ListDefinitionsForConflict(ctx, q, roomID, window.From, window.To, def.ID)
	if err != nil {
		return nil, err
	}

	var existing []schedule.RoomOccurrence
	for i := range others {
		other := &others[i]
		if !checker.Reserves(other.Status) {
			continue
		}
		otherCfg, err := schedule.DecodeRule(other.Rule())
		if err != nil {
			// A stored rule that no longer parses must not silently
			// unblock the room.
			return nil, err
		}
		occs, err := s.expander.Expand(schedule.Definition{
			ID:         other.ID,
			StartsAt:   other.StartsAt,
			EndsAt:     other.EndsAt,
			Recurrence: otherCfg,
		}, window)
		if err != nil {
			return nil, err
		}
		for _, occ := range occs {
			existing = append(existing, schedule.RoomOccurrence{
				Occurrence: occ,
				Title:      other.Title,
				Status:     other.Status,
			})
		}
	}

	var all []schedule.Conflict
	for _, cand := range candidates {
		all = append(all, checker.Check(cand, as, room, existing)...)
	}
	return all, nil
}

// RoomOccurrences expands every definition of a room over the window,
// annotated with status for styling. Inactive rooms still render their
// existing schedule.
func (s *Service) RoomOccurrences(ctx context.Context, roomID string, window schedule.Window) ([]schedule.RoomOccurrence, error) {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, schedule.NewNotFoundError("room %s not found", roomID)
	}

	defs, err := s.events.ListDefinitionsForConflict(ctx, s.db, roomID, window.From, window.To, "")
	if err != nil {
		return nil, err
	}

	var out []schedule.RoomOccurrence
	for i := range defs {
		def := &defs[i]
		cfg, err := schedule.DecodeRule(def.Rule())
		if err != nil {
			return nil, err
		}
		occs, err := s.expander.Expand(schedule.Definition{
			ID:         def.ID,
			StartsAt:   def.StartsAt,
			EndsAt:     def.EndsAt,
			Recurrence: cfg,
		}, window)
		if err != nil {
			return nil, err
		}
		for _, occ := range occs {
			out = append(out, schedule.RoomOccurrence{
				Occurrence: occ,
				Title:      def.Title,
				Status:     def.Status,
			})
		}
	}
	return out, nil
}
