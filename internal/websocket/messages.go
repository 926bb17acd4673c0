package websocket

import (
	"encoding/json"
	"time"
)

// MessageType identifies the type of WebSocket message.
type MessageType string

const (
	// Server -> Client event types
	TypeEventStatusChanged    MessageType = "event.status_changed"
	TypeEventConflictDetected MessageType = "event.conflict_detected"
	TypeScheduleMaterialized  MessageType = "schedule.materialized"
	TypeNotification          MessageType = "notification"

	// Client -> Server command types
	TypePing MessageType = "ping"

	// Server -> Client response types
	TypePong  MessageType = "pong"
	TypeError MessageType = "error"
)

// Message represents a WebSocket message envelope.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   any         `json:"payload"`
}

// NewMessage creates a new message with the current timestamp.
func NewMessage(msgType MessageType, payload any) Message {
	return Message{
		Type:      msgType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// JSON serializes the message to JSON bytes.
func (m Message) JSON() ([]byte, error) {
	return json.Marshal(m)
}

// EventStatusPayload is the payload for event.status_changed messages.
type EventStatusPayload struct {
	EventID        string `json:"event_id"`
	Title          string `json:"title"`
	RoomID         string `json:"room_id"`
	PreviousStatus string `json:"previous_status"`
	NewStatus      string `json:"new_status"`
	ActorID        string `json:"actor_id"`
}

// ConflictPayload is the payload for event.conflict_detected messages.
type ConflictPayload struct {
	EventID      string    `json:"event_id"`
	RoomID       string    `json:"room_id"`
	OtherEventID string    `json:"other_event_id"`
	OverlapStart time.Time `json:"overlap_start"`
	OverlapEnd   time.Time `json:"overlap_end"`
}

// MaterializedPayload is the payload for schedule.materialized messages.
type MaterializedPayload struct {
	ParentEventID    string `json:"parent_event_id"`
	InstancesCreated int    `json:"instances_created"`
	InstancesRemoved int    `json:"instances_removed"`
}

// NotificationPayload is the payload for notification messages.
type NotificationPayload struct {
	Level   string `json:"level"` // info, warning, error, success
	Title   string `json:"title"`
	Message string `json:"message"`
}
