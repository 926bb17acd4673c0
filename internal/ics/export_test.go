package ics

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/room-scheduler/backend/internal/storage/models"
)

func TestExportRoom(t *testing.T) {
	room := &models.Room{ID: "r1", Name: "Boardroom"}
	rule := "FREQ=WEEKLY;BYDAY=MO"
	parentID := "ev-pub"
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	events := []models.Event{
		{
			ID:        "ev-pub",
			Title:     "All hands",
			Status:    models.StatusPublished,
			StartsAt:  time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC),
			EndsAt:    time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC),
			UpdatedAt: now,
		},
		{
			ID:             "ev-rec",
			Title:          "Weekly sync",
			Status:         models.StatusApproved,
			StartsAt:       time.Date(2024, 6, 3, 14, 0, 0, 0, time.UTC),
			EndsAt:         time.Date(2024, 6, 3, 15, 0, 0, 0, time.UTC),
			RecurrenceRule: &rule,
			UpdatedAt:      now,
		},
		{
			ID:        "ev-draft",
			Title:     "Secret plan",
			Status:    models.StatusDraft,
			StartsAt:  time.Date(2024, 6, 4, 9, 0, 0, 0, time.UTC),
			EndsAt:    time.Date(2024, 6, 4, 10, 0, 0, 0, time.UTC),
			UpdatedAt: now,
		},
		{
			ID:            "ev-inst",
			Title:         "Weekly sync",
			Status:        models.StatusApproved,
			StartsAt:      time.Date(2024, 6, 10, 14, 0, 0, 0, time.UTC),
			EndsAt:        time.Date(2024, 6, 10, 15, 0, 0, 0, time.UTC),
			ParentEventID: &parentID,
			UpdatedAt:     now,
		},
	}

	feed := ExportRoom(room, events)

	assert.True(t, strings.HasPrefix(feed, "BEGIN:VCALENDAR"))
	assert.Contains(t, feed, "SUMMARY:All hands")
	assert.Contains(t, feed, "STATUS:CONFIRMED")
	assert.Contains(t, feed, "SUMMARY:Weekly sync")
	assert.Contains(t, feed, "STATUS:TENTATIVE")
	assert.Contains(t, feed, "RRULE:FREQ=WEEKLY;BYDAY=MO")
	assert.Contains(t, feed, "LOCATION:Boardroom")

	// Drafts and materialized instances stay out of the feed.
	assert.NotContains(t, feed, "Secret plan")
	assert.Equal(t, 2, strings.Count(feed, "BEGIN:VEVENT"))
}
