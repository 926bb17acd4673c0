package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/room-scheduler/backend/internal/storage/models"
)

func occ(id string, startHour, endHour int) Occurrence {
	day := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)
	return Occurrence{
		StartsAt:      day.Add(time.Duration(startHour) * time.Hour),
		EndsAt:        day.Add(time.Duration(endHour) * time.Hour),
		SourceEventID: id,
	}
}

func roomOcc(id string, startHour, endHour int, status models.EventStatus) RoomOccurrence {
	return RoomOccurrence{
		Occurrence: occ(id, startHour, endHour),
		Title:      "existing " + id,
		Status:     status,
	}
}

func TestCheckerReserves(t *testing.T) {
	strict := NewChecker(Policy{})
	lenient := NewChecker(Policy{PendingReserves: true})

	assert.True(t, strict.Reserves(models.StatusApproved))
	assert.True(t, strict.Reserves(models.StatusPublished))
	assert.False(t, strict.Reserves(models.StatusDraft))
	assert.False(t, strict.Reserves(models.StatusRejected))
	assert.False(t, strict.Reserves(models.StatusPendingReview))
	assert.True(t, lenient.Reserves(models.StatusPendingReview))
}

func TestCheckerCheck(t *testing.T) {
	room := &models.Room{ID: "r1", Name: "Boardroom"}

	t.Run("overlapping approved occurrences conflict", func(t *testing.T) {
		c := NewChecker(Policy{})
		conflicts := c.Check(occ("a", 9, 11), models.StatusApproved, room,
			[]RoomOccurrence{roomOcc("b", 10, 12, models.StatusApproved)})
		require.Len(t, conflicts, 1)
		assert.Equal(t, "b", conflicts[0].EventID)
		assert.Equal(t, occ("", 10, 11).StartsAt, conflicts[0].OverlapStart)
		assert.Equal(t, occ("", 10, 11).EndsAt, conflicts[0].OverlapEnd)
	})

	t.Run("adjacent occurrences do not conflict", func(t *testing.T) {
		c := NewChecker(Policy{})
		assert.False(t, c.Conflicts(occ("a", 9, 10), models.StatusApproved, room,
			[]RoomOccurrence{roomOcc("b", 10, 11, models.StatusApproved)}))
	})

	t.Run("allow-overlap room never conflicts", func(t *testing.T) {
		c := NewChecker(Policy{})
		open := &models.Room{ID: "r2", Name: "Open Space", AllowOverlap: true}
		assert.False(t, c.Conflicts(occ("a", 9, 11), models.StatusApproved, open,
			[]RoomOccurrence{roomOcc("b", 9, 11, models.StatusPublished)}))
	})

	t.Run("same source event never conflicts with itself", func(t *testing.T) {
		c := NewChecker(Policy{})
		assert.False(t, c.Conflicts(occ("a", 9, 11), models.StatusApproved, room,
			[]RoomOccurrence{roomOcc("a", 9, 11, models.StatusApproved)}))
	})

	t.Run("non-reserving existing statuses are ignored", func(t *testing.T) {
		c := NewChecker(Policy{})
		existing := []RoomOccurrence{
			roomOcc("d", 9, 11, models.StatusDraft),
			roomOcc("p", 9, 11, models.StatusPendingReview),
			roomOcc("x", 9, 11, models.StatusRejected),
		}
		assert.False(t, c.Conflicts(occ("a", 9, 11), models.StatusApproved, room, existing))
	})

	t.Run("pending reserves policy counts pending both ways", func(t *testing.T) {
		c := NewChecker(Policy{PendingReserves: true})
		assert.True(t, c.Conflicts(occ("a", 9, 11), models.StatusPendingReview, room,
			[]RoomOccurrence{roomOcc("p", 10, 12, models.StatusPendingReview)}))

		strict := NewChecker(Policy{})
		assert.False(t, strict.Conflicts(occ("a", 9, 11), models.StatusPendingReview, room,
			[]RoomOccurrence{roomOcc("p", 10, 12, models.StatusPendingReview)}))
	})

	t.Run("multiple conflicts are all reported", func(t *testing.T) {
		c := NewChecker(Policy{})
		conflicts := c.Check(occ("a", 9, 12), models.StatusPublished, room, []RoomOccurrence{
			roomOcc("b", 8, 10, models.StatusApproved),
			roomOcc("c", 11, 13, models.StatusPublished),
			roomOcc("d", 12, 14, models.StatusApproved), // adjacent, no overlap
		})
		require.Len(t, conflicts, 2)
		assert.Equal(t, "b", conflicts[0].EventID)
		assert.Equal(t, "c", conflicts[1].EventID)
	})
}
