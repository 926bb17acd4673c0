// Package event implements the event lifecycle state machine and the
// services that apply it against storage.
package event

import (
	"github.com/room-scheduler/backend/internal/auth"
	"github.com/room-scheduler/backend/internal/schedule"
	"github.com/room-scheduler/backend/internal/storage/models"
)

// Action is a lifecycle transition request.
type Action string

const (
	ActionSubmit    Action = "submit"
	ActionApprove   Action = "approve"
	ActionReject    Action = "reject"
	ActionPublish   Action = "publish"
	ActionUnapprove Action = "unapprove"
	ActionUnpublish Action = "unpublish"
	ActionResubmit  Action = "resubmit"
)

// guard decides whether the actor may perform a transition on the event.
type guard func(actor auth.Actor, ev *models.Event) bool

func ownerOrAdmin(actor auth.Actor, ev *models.Event) bool {
	return actor.IsAdmin() || actor.ID == ev.CreatedBy
}

func reviewerOrAdmin(actor auth.Actor, _ *models.Event) bool {
	return actor.CanReview()
}

func adminOnly(actor auth.Actor, _ *models.Event) bool {
	return actor.IsAdmin()
}

// transition is one edge of the lifecycle table.
type transition struct {
	to             models.EventStatus
	guard          guard
	requiredRole   string // named in permission errors
	checksConflict bool
	setsReviewer   bool
}

// transitions is the full lifecycle table: state x action -> transition.
// Any pair not present here is rejected with a state error.
var transitions = map[models.EventStatus]map[Action]transition{
	models.StatusDraft: {
		ActionSubmit: {to: models.StatusPendingReview, guard: ownerOrAdmin, requiredRole: "owner or admin"},
	},
	models.StatusPendingReview: {
		ActionApprove: {to: models.StatusApproved, guard: reviewerOrAdmin, requiredRole: "admin or reviewer", checksConflict: true, setsReviewer: true},
		ActionReject:  {to: models.StatusRejected, guard: reviewerOrAdmin, requiredRole: "admin or reviewer", setsReviewer: true},
	},
	models.StatusApproved: {
		ActionPublish:   {to: models.StatusPublished, guard: adminOnly, requiredRole: "admin", checksConflict: true},
		ActionUnapprove: {to: models.StatusPendingReview, guard: adminOnly, requiredRole: "admin"},
	},
	models.StatusPublished: {
		ActionUnpublish: {to: models.StatusApproved, guard: adminOnly, requiredRole: "admin"},
	},
	models.StatusRejected: {
		ActionResubmit: {to: models.StatusPendingReview, guard: adminOnly, requiredRole: "admin"},
	},
}

// Machine evaluates lifecycle transitions under a scheduling policy.
type Machine struct {
	policy schedule.Policy
}

// NewMachine creates a lifecycle machine with the given policy.
func NewMachine(policy schedule.Policy) *Machine {
	return &Machine{policy: policy}
}

// Resolve validates that (current, action) is a listed edge the actor may
// take and returns the resulting transition. The approve edge lands
// directly on published when the auto-publish policy is on.
func (m *Machine) Resolve(actor auth.Actor, current models.EventStatus, action Action, ev *models.Event) (transition, error) {
	edges, ok := transitions[current]
	if !ok {
		return transition{}, schedule.NewStateError("event %s has unknown status %q", ev.ID, current)
	}
	tr, ok := edges[action]
	if !ok {
		return transition{}, schedule.NewStateError("cannot %s an event in status %q", action, current)
	}
	if !tr.guard(actor, ev) {
		return transition{}, schedule.NewPermissionError("%s requires %s", action, tr.requiredRole)
	}
	if action == ActionApprove && m.policy.AutoPublishOnApprove {
		tr.to = models.StatusPublished
	}
	return tr, nil
}

// CanEdit reports whether the actor may edit the event's fields. Draft
// events are editable by their owner or an admin; anything past draft is
// admin-only. Edits to published events take effect immediately without a
// forced re-approval.
func CanEdit(actor auth.Actor, ev *models.Event) bool {
	if ev.Status == models.StatusDraft {
		return ownerOrAdmin(actor, ev)
	}
	return actor.IsAdmin()
}

// To exposes the target status of a resolved transition.
func (t transition) To() models.EventStatus { return t.to }

// ChecksConflict reports whether the transition re-validates room
// conflicts before committing.
func (t transition) ChecksConflict() bool { return t.checksConflict }

// SetsReviewer reports whether the transition records the acting reviewer.
func (t transition) SetsReviewer() bool { return t.setsReviewer }
