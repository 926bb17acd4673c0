package schedule

import (
	"time"

	"github.com/room-scheduler/backend/internal/storage/models"
)

// Policy holds the deployment-level scheduling policy switches.
type Policy struct {
	// PendingReserves controls whether pending_review occurrences count
	// toward room conflicts. Off by default.
	PendingReserves bool
	// AutoPublishOnApprove makes the approve transition land directly on
	// published instead of approved.
	AutoPublishOnApprove bool
}

// RoomOccurrence is an occurrence annotated with its owning definition's
// title and lifecycle status, as fetched for a room.
type RoomOccurrence struct {
	Occurrence
	Title  string
	Status models.EventStatus
}

// Conflict describes a detected double-booking.
type Conflict struct {
	EventID      string    `json:"event_id"`
	Title        string    `json:"title"`
	OverlapStart time.Time `json:"overlap_start"`
	OverlapEnd   time.Time `json:"overlap_end"`
}

// Checker decides whether a candidate occurrence collides with existing
// occurrences in the same room.
type Checker struct {
	policy Policy
}

// NewChecker creates a conflict checker with the given policy.
func NewChecker(policy Policy) *Checker {
	return &Checker{policy: policy}
}

// Reserves reports whether occurrences in the given status count toward
// room conflicts. Approved and published always reserve; pending_review
// reserves only under the PendingReserves policy.
func (c *Checker) Reserves(status models.EventStatus) bool {
	switch status {
	case models.StatusApproved, models.StatusPublished:
		return true
	case models.StatusPendingReview:
		return c.policy.PendingReserves
	}
	return false
}

// Check returns the conflicts between the candidate occurrence and the
// existing occurrences of the room. candidateStatus is the status the
// candidate is entering (approve and publish validate against the status
// the event will hold, not the one it leaves). Rooms with AllowOverlap
// never conflict, and adjacent touching intervals do not conflict.
func (c *Checker) Check(candidate Occurrence, candidateStatus models.EventStatus, room *models.Room, existing []RoomOccurrence) []Conflict {
	if room != nil && room.AllowOverlap {
		return nil
	}
	if !c.Reserves(candidateStatus) {
		return nil
	}

	var conflicts []Conflict
	for _, other := range existing {
		if other.SourceEventID == candidate.SourceEventID {
			continue
		}
		if !c.Reserves(other.Status) {
			continue
		}
		// Half-open interval intersection.
		if !candidate.StartsAt.Before(other.EndsAt) || !other.StartsAt.Before(candidate.EndsAt) {
			continue
		}

		overlapStart := candidate.StartsAt
		if other.StartsAt.After(overlapStart) {
			overlapStart = other.StartsAt
		}
		overlapEnd := candidate.EndsAt
		if other.EndsAt.Before(overlapEnd) {
			overlapEnd = other.EndsAt
		}

		conflicts = append(conflicts, Conflict{
			EventID:      other.SourceEventID,
			Title:        other.Title,
			OverlapStart: overlapStart,
			OverlapEnd:   overlapEnd,
		})
	}
	return conflicts
}

// Conflicts reports whether the candidate collides with any existing
// occurrence in the room.
func (c *Checker) Conflicts(candidate Occurrence, candidateStatus models.EventStatus, room *models.Room, existing []RoomOccurrence) bool {
	return len(c.Check(candidate, candidateStatus, room, existing)) > 0
}
