package websocket

import (
	"log"

	"github.com/room-scheduler/backend/internal/storage/models"
)

// EventBroadcaster pushes scheduling notifications to connected clients.
// A nil broadcaster is valid and drops everything, so callers don't need
// to guard against a missing hub.
type EventBroadcaster struct {
	hub *Hub
}

// NewEventBroadcaster creates a new event broadcaster.
func NewEventBroadcaster(hub *Hub) *EventBroadcaster {
	return &EventBroadcaster{hub: hub}
}

// BroadcastStatusChanged sends an event.status_changed message.
func (b *EventBroadcaster) BroadcastStatusChanged(ev *models.Event, previous models.EventStatus, actorID string) {
	if b == nil {
		return
	}
	b.broadcast(NewMessage(TypeEventStatusChanged, EventStatusPayload{
		EventID:        ev.ID,
		Title:          ev.Title,
		RoomID:         ev.RoomID,
		PreviousStatus: string(previous),
		NewStatus:      string(ev.Status),
		ActorID:        actorID,
	}))
}

// BroadcastConflictDetected sends an event.conflict_detected message for
// an overlap that blocked a transition.
func (b *EventBroadcaster) BroadcastConflictDetected(payload ConflictPayload) {
	if b == nil {
		return
	}
	b.broadcast(NewMessage(TypeEventConflictDetected, payload))
}

// BroadcastMaterialized sends a schedule.materialized message after a
// recurring definition's instances were regenerated.
func (b *EventBroadcaster) BroadcastMaterialized(parentID string, created, removed int) {
	if b == nil {
		return
	}
	b.broadcast(NewMessage(TypeScheduleMaterialized, MaterializedPayload{
		ParentEventID:    parentID,
		InstancesCreated: created,
		InstancesRemoved: removed,
	}))
}

func (b *EventBroadcaster) broadcast(msg Message) {
	data, err := msg.JSON()
	if err != nil {
		log.Printf("Failed to serialize %s message: %v", msg.Type, err)
		return
	}
	b.hub.Broadcast(data)
}
