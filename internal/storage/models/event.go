// Package models defines the data structures stored by the persistence layer.
package models

import "time"

// EventStatus is the lifecycle status of an event definition.
type EventStatus string

// Lifecycle status constants
const (
	StatusDraft         EventStatus = "draft"
	StatusPendingReview EventStatus = "pending_review"
	StatusApproved      EventStatus = "approved"
	StatusRejected      EventStatus = "rejected"
	StatusPublished     EventStatus = "published"
)

// ValidStatus reports whether s is one of the known lifecycle statuses.
func ValidStatus(s EventStatus) bool {
	switch s {
	case StatusDraft, StatusPendingReview, StatusApproved, StatusRejected, StatusPublished:
		return true
	}
	return false
}

// Event represents an event definition, possibly recurring.
// A non-nil ParentEventID marks the row as a materialized instance of a
// recurring parent definition.
type Event struct {
	ID             string      `json:"id"`
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	RoomID         string      `json:"room_id"`
	StartsAt       time.Time   `json:"starts_at"`
	EndsAt         time.Time   `json:"ends_at"`
	RecurrenceRule *string     `json:"recurrence_rule,omitempty"`
	Status         EventStatus `json:"status"`
	CreatedBy      string      `json:"created_by"`
	ReviewerID     *string     `json:"reviewer_id,omitempty"`
	ReviewerNotes  *string     `json:"reviewer_notes,omitempty"`
	ParentEventID  *string     `json:"parent_event_id,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// IsRecurring reports whether the definition carries a recurrence rule.
func (e *Event) IsRecurring() bool {
	return e.RecurrenceRule != nil && *e.RecurrenceRule != ""
}

// Rule returns the recurrence rule string, or "" for one-off events.
func (e *Event) Rule() string {
	if e.RecurrenceRule == nil {
		return ""
	}
	return *e.RecurrenceRule
}
