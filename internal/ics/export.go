// Package ics renders a room's schedule as an iCalendar feed.
package ics

import (
	"fmt"

	ical "github.com/arran4/golang-ical"

	"github.com/room-scheduler/backend/internal/storage/models"
)

// prodID identifies this server in generated feeds.
const prodID = "-//room-scheduler//backend//EN"

// ExportRoom serializes the room's approved and published event
// definitions as an iCalendar feed. Recurring definitions carry their
// canonical rule string as the RRULE property, so any RFC-5545 consumer
// expands them itself; materialized instance rows are skipped to avoid
// duplicating what the rule already describes.
func ExportRoom(room *models.Room, events []models.Event) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(prodID)
	cal.SetName(room.Name)

	for i := range events {
		ev := &events[i]
		if ev.ParentEventID != nil {
			continue
		}
		if ev.Status != models.StatusApproved && ev.Status != models.StatusPublished {
			continue
		}

		ve := cal.AddEvent(fmt.Sprintf("%s@room-scheduler", ev.ID))
		ve.SetDtStampTime(ev.UpdatedAt)
		ve.SetStartAt(ev.StartsAt.UTC())
		ve.SetEndAt(ev.EndsAt.UTC())
		ve.SetSummary(ev.Title)
		if ev.Description != "" {
			ve.SetDescription(ev.Description)
		}
		ve.SetLocation(room.Name)

		if ev.Status == models.StatusPublished {
			ve.SetStatus(ical.ObjectStatusConfirmed)
		} else {
			ve.SetStatus(ical.ObjectStatusTentative)
		}

		if ev.IsRecurring() {
			ve.AddRrule(*ev.RecurrenceRule)
		}
	}

	return cal.Serialize()
}
