package event

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/room-scheduler/backend/internal/schedule"
	"github.com/room-scheduler/backend/internal/storage"
	"github.com/room-scheduler/backend/internal/storage/models"
	"github.com/room-scheduler/backend/internal/websocket"
)

// Materializer persists the occurrences of recurring definitions as child
// event rows over a rolling horizon, so listings and the ICS feed read
// plain rows instead of re-expanding rules on every request. Instances
// carry ParentEventID and mirror the parent's status.
type Materializer struct {
	events      *storage.EventRepository
	expander    *schedule.Expander
	broadcaster *websocket.EventBroadcaster
	horizonDays int
}

// NewMaterializer creates a materializer. hub may be nil.
func NewMaterializer(events *storage.EventRepository, expander *schedule.Expander, hub *websocket.Hub, horizonDays int) *Materializer {
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}
	var broadcaster *websocket.EventBroadcaster
	if hub != nil {
		broadcaster = websocket.NewEventBroadcaster(hub)
	}
	return &Materializer{
		events:      events,
		expander:    expander,
		broadcaster: broadcaster,
		horizonDays: horizonDays,
	}
}

// MaterializeAll refreshes the instances of every recurring definition.
// Failures on one parent are logged and do not stop the others.
func (m *Materializer) MaterializeAll(ctx context.Context) error {
	parents, err := m.events.ListRecurringParents(ctx)
	if err != nil {
		return fmt.Errorf("listing recurring events: %w", err)
	}

	for i := range parents {
		parent := &parents[i]
		created, removed, err := m.materializeParent(ctx, parent)
		if err != nil {
			log.Printf("Failed to materialize event %s: %v", parent.ID, err)
			continue
		}
		if created > 0 || removed > 0 {
			m.broadcaster.BroadcastMaterialized(parent.ID, created, removed)
		}
	}
	return nil
}

// materializeParent diffs the parent's expanded occurrences against its
// stored instances and applies the difference. The occurrence matching
// the parent's own range stays represented by the parent row itself.
func (m *Materializer) materializeParent(ctx context.Context, parent *models.Event) (created, removed int, err error) {
	cfg, err := schedule.DecodeRule(parent.Rule())
	if err != nil {
		return 0, 0, err
	}

	now := time.Now().UTC()
	window := schedule.Window{
		From: now,
		To:   now.AddDate(0, 0, m.horizonDays),
	}
	// A future-dated series materializes from its own start. One that
	// begins beyond the horizon has nothing to materialize yet.
	if parent.StartsAt.After(window.From) {
		window.From = parent.StartsAt
	}
	if !window.From.Before(window.To) {
		return 0, 0, nil
	}

	occurrences, err := m.expander.Expand(schedule.Definition{
		ID:         parent.ID,
		StartsAt:   parent.StartsAt,
		EndsAt:     parent.EndsAt,
		Recurrence: cfg,
	}, window)
	if err != nil {
		return 0, 0, err
	}

	wanted := make(map[int64]schedule.Occurrence, len(occurrences))
	for _, occ := range occurrences {
		if occ.StartsAt.Equal(parent.StartsAt) {
			continue
		}
		wanted[occ.StartsAt.Unix()] = occ
	}

	existing, err := m.events.ListInstances(ctx, parent.ID)
	if err != nil {
		return 0, 0, err
	}

	for i := range existing {
		inst := &existing[i]
		key := inst.StartsAt.Unix()
		if _, ok := wanted[key]; ok {
			delete(wanted, key)
			continue
		}
		// Stale instance: outside the horizon or no longer produced by
		// the rule. Past instances are kept as history.
		if inst.StartsAt.After(now) {
			if err := m.events.DeleteInstance(ctx, inst.ID); err != nil {
				return created, removed, err
			}
			removed++
		}
	}

	for _, occ := range wanted {
		inst := &models.Event{
			Title:         parent.Title,
			Description:   parent.Description,
			RoomID:        parent.RoomID,
			StartsAt:      occ.StartsAt,
			EndsAt:        occ.EndsAt,
			Status:        parent.Status,
			CreatedBy:     parent.CreatedBy,
			ReviewerID:    parent.ReviewerID,
			ParentEventID: &parent.ID,
		}
		if err := m.events.Create(ctx, inst); err != nil {
			return created, removed, err
		}
		created++
	}

	return created, removed, nil
}
