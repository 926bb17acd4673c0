package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/room-scheduler/backend/internal/auth"
	"github.com/room-scheduler/backend/internal/schedule"
	"github.com/room-scheduler/backend/internal/storage/models"
)

var (
	admin       = auth.Actor{ID: "u-admin", Roles: []string{auth.RoleAdmin}}
	reviewer    = auth.Actor{ID: "u-reviewer", Roles: []string{auth.RoleReviewer}}
	contributor = auth.Actor{ID: "u-owner", Roles: []string{auth.RoleContributor}}
	stranger    = auth.Actor{ID: "u-other", Roles: []string{auth.RoleContributor}}
)

func eventIn(status models.EventStatus) *models.Event {
	return &models.Event{ID: "ev1", CreatedBy: contributor.ID, Status: status}
}

func TestMachineFullWalk(t *testing.T) {
	m := NewMachine(schedule.Policy{})
	steps := []struct {
		actor  auth.Actor
		from   models.EventStatus
		action Action
		to     models.EventStatus
	}{
		{contributor, models.StatusDraft, ActionSubmit, models.StatusPendingReview},
		{reviewer, models.StatusPendingReview, ActionApprove, models.StatusApproved},
		{admin, models.StatusApproved, ActionPublish, models.StatusPublished},
		{admin, models.StatusPublished, ActionUnpublish, models.StatusApproved},
		{admin, models.StatusApproved, ActionUnapprove, models.StatusPendingReview},
		{reviewer, models.StatusPendingReview, ActionReject, models.StatusRejected},
		{admin, models.StatusRejected, ActionResubmit, models.StatusPendingReview},
	}

	for _, step := range steps {
		tr, err := m.Resolve(step.actor, step.from, step.action, eventIn(step.from))
		require.NoError(t, err, "%s from %s", step.action, step.from)
		assert.Equal(t, step.to, tr.To())
	}
}

func TestMachineUnlistedEdges(t *testing.T) {
	m := NewMachine(schedule.Policy{})
	cases := []struct {
		from   models.EventStatus
		action Action
	}{
		{models.StatusDraft, ActionApprove},
		{models.StatusDraft, ActionPublish},
		{models.StatusPendingReview, ActionPublish}, // no skipping to published
		{models.StatusPendingReview, ActionSubmit},
		{models.StatusApproved, ActionApprove},
		{models.StatusPublished, ActionSubmit},
		{models.StatusRejected, ActionApprove},
	}
	for _, tt := range cases {
		_, err := m.Resolve(admin, tt.from, tt.action, eventIn(tt.from))
		require.Error(t, err, "%s from %s", tt.action, tt.from)
		assert.True(t, schedule.IsKind(err, schedule.KindState))
	}
}

func TestMachineGuards(t *testing.T) {
	m := NewMachine(schedule.Policy{})

	t.Run("owner may submit own draft", func(t *testing.T) {
		_, err := m.Resolve(contributor, models.StatusDraft, ActionSubmit, eventIn(models.StatusDraft))
		assert.NoError(t, err)
	})

	t.Run("non-owner may not submit", func(t *testing.T) {
		_, err := m.Resolve(stranger, models.StatusDraft, ActionSubmit, eventIn(models.StatusDraft))
		require.Error(t, err)
		assert.True(t, schedule.IsKind(err, schedule.KindPermission))
	})

	t.Run("contributor may not approve", func(t *testing.T) {
		_, err := m.Resolve(contributor, models.StatusPendingReview, ActionApprove, eventIn(models.StatusPendingReview))
		require.Error(t, err)
		assert.True(t, schedule.IsKind(err, schedule.KindPermission))
	})

	t.Run("reviewer may not publish", func(t *testing.T) {
		_, err := m.Resolve(reviewer, models.StatusApproved, ActionPublish, eventIn(models.StatusApproved))
		require.Error(t, err)
		assert.True(t, schedule.IsKind(err, schedule.KindPermission))
	})

	t.Run("reviewer may not resubmit", func(t *testing.T) {
		_, err := m.Resolve(reviewer, models.StatusRejected, ActionResubmit, eventIn(models.StatusRejected))
		require.Error(t, err)
		assert.True(t, schedule.IsKind(err, schedule.KindPermission))
	})

	t.Run("admin may do everything", func(t *testing.T) {
		for from, edges := range transitions {
			for action := range edges {
				_, err := m.Resolve(admin, from, action, eventIn(from))
				assert.NoError(t, err, "%s from %s", action, from)
			}
		}
	})
}

func TestMachineTransitionFlags(t *testing.T) {
	m := NewMachine(schedule.Policy{})

	approve, err := m.Resolve(reviewer, models.StatusPendingReview, ActionApprove, eventIn(models.StatusPendingReview))
	require.NoError(t, err)
	assert.True(t, approve.ChecksConflict())
	assert.True(t, approve.SetsReviewer())

	reject, err := m.Resolve(reviewer, models.StatusPendingReview, ActionReject, eventIn(models.StatusPendingReview))
	require.NoError(t, err)
	assert.False(t, reject.ChecksConflict())
	assert.True(t, reject.SetsReviewer())

	publish, err := m.Resolve(admin, models.StatusApproved, ActionPublish, eventIn(models.StatusApproved))
	require.NoError(t, err)
	assert.True(t, publish.ChecksConflict())
	assert.False(t, publish.SetsReviewer())

	submit, err := m.Resolve(contributor, models.StatusDraft, ActionSubmit, eventIn(models.StatusDraft))
	require.NoError(t, err)
	assert.False(t, submit.ChecksConflict())
}

func TestMachineAutoPublishOnApprove(t *testing.T) {
	m := NewMachine(schedule.Policy{AutoPublishOnApprove: true})

	tr, err := m.Resolve(reviewer, models.StatusPendingReview, ActionApprove, eventIn(models.StatusPendingReview))
	require.NoError(t, err)
	assert.Equal(t, models.StatusPublished, tr.To())
	assert.True(t, tr.ChecksConflict())

	// Reject is unaffected by the policy.
	tr, err = m.Resolve(reviewer, models.StatusPendingReview, ActionReject, eventIn(models.StatusPendingReview))
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, tr.To())
}

func TestCanEdit(t *testing.T) {
	t.Run("draft editable by owner and admin", func(t *testing.T) {
		ev := eventIn(models.StatusDraft)
		assert.True(t, CanEdit(contributor, ev))
		assert.True(t, CanEdit(admin, ev))
		assert.False(t, CanEdit(stranger, ev))
		assert.False(t, CanEdit(reviewer, ev))
	})

	t.Run("past draft only admin edits", func(t *testing.T) {
		for _, status := range []models.EventStatus{
			models.StatusPendingReview,
			models.StatusApproved,
			models.StatusPublished,
			models.StatusRejected,
		} {
			ev := eventIn(status)
			assert.True(t, CanEdit(admin, ev), string(status))
			assert.False(t, CanEdit(contributor, ev), string(status))
			assert.False(t, CanEdit(reviewer, ev), string(status))
		}
	})
}
