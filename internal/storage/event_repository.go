package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/room-scheduler/backend/internal/storage/models"
)

// EventRepository provides data access for event definitions and their
// materialized recurring instances.
type EventRepository struct {
	BaseRepository
}

// NewEventRepository creates a new event repository.
func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

const eventColumns = `id, title, description, room_id, starts_at, ends_at, recurrence_rule,
	status, created_by, reviewer_id, reviewer_notes, parent_event_id, created_at, updated_at`

func scanEvent(row interface{ Scan(...any) error }) (*models.Event, error) {
	ev := &models.Event{}
	err := row.Scan(
		&ev.ID, &ev.Title, &ev.Description, &ev.RoomID, &ev.StartsAt, &ev.EndsAt,
		&ev.RecurrenceRule, &ev.Status, &ev.CreatedBy, &ev.ReviewerID, &ev.ReviewerNotes,
		&ev.ParentEventID, &ev.CreatedAt, &ev.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return ev, nil
}

// Create inserts a new event definition (or materialized instance when
// ParentEventID is set).
func (r *EventRepository) Create(ctx context.Context, ev *models.Event) error {
	if ev.ID == "" {
		ev.ID = GenerateID()
	}
	ev.CreatedAt = r.Now()
	ev.UpdatedAt = r.Now()

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO events (`+eventColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, ev.ID, ev.Title, ev.Description, ev.RoomID, ev.StartsAt, ev.EndsAt, ev.RecurrenceRule,
		ev.Status, ev.CreatedBy, ev.ReviewerID, ev.ReviewerNotes, ev.ParentEventID,
		ev.CreatedAt, ev.UpdatedAt)

	if err != nil {
		return fmt.Errorf("inserting event: %w", err)
	}
	return nil
}

// GetByID retrieves an event by its ID. Returns nil when absent.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	return r.getByID(ctx, r.DB(), id)
}

// GetByIDTx retrieves an event using the given transaction or connection.
func (r *EventRepository) GetByIDTx(ctx context.Context, q Queryable, id string) (*models.Event, error) {
	return r.getByID(ctx, q, id)
}

func (r *EventRepository) getByID(ctx context.Context, q Queryable, id string) (*models.Event, error) {
	ev, err := scanEvent(q.QueryRowContext(ctx, `
		SELECT `+eventColumns+` FROM events WHERE id = ?
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying event: %w", err)
	}
	return ev, nil
}

// EventFilter narrows List results.
type EventFilter struct {
	RoomID           string
	Status           models.EventStatus
	CreatedBy        string
	IncludeInstances bool
}

// List retrieves event definitions matching the filter, ordered by start
// time. Materialized instances are excluded unless requested.
func (r *EventRepository) List(ctx context.Context, filter EventFilter) ([]models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE 1=1`
	var args []any

	if !filter.IncludeInstances {
		query += " AND parent_event_id IS NULL"
	}
	if filter.RoomID != "" {
		query += " AND room_id = ?"
		args = append(args, filter.RoomID)
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	if filter.CreatedBy != "" {
		query += " AND created_by = ?"
		args = append(args, filter.CreatedBy)
	}
	query += " ORDER BY starts_at"

	rows, err := r.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

// ListDefinitionsForConflict retrieves the room's event definitions whose
// occurrences could intersect [from, to): one-off rows overlapping the
// window plus every recurring definition (the rule's own bounds are
// applied during expansion). The event with excludeID and its instances
// are left out so an event never conflicts with itself.
func (r *EventRepository) ListDefinitionsForConflict(ctx context.Context, q Queryable, roomID string, from, to time.Time, excludeID string) ([]models.Event, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+eventColumns+` FROM events
		WHERE room_id = ?
		  AND parent_event_id IS NULL
		  AND id != ?
		  AND (recurrence_rule IS NOT NULL OR (starts_at < ? AND ends_at > ?))
		ORDER BY starts_at
	`, roomID, excludeID, to, from)
	if err != nil {
		return nil, fmt.Errorf("querying room events: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

// Update persists edits to an event's definition fields.
func (r *EventRepository) Update(ctx context.Context, ev *models.Event) error {
	ev.UpdatedAt = r.Now()

	result, err := r.DB().ExecContext(ctx, `
		UPDATE events
		SET title = ?, description = ?, room_id = ?, starts_at = ?, ends_at = ?,
		    recurrence_rule = ?, updated_at = ?
		WHERE id = ?
	`, ev.Title, ev.Description, ev.RoomID, ev.StartsAt, ev.EndsAt,
		ev.RecurrenceRule, ev.UpdatedAt, ev.ID)

	if err != nil {
		return fmt.Errorf("updating event: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("event not found: %s", ev.ID)
	}
	return nil
}

// UpdateStatusIf performs the conditional status write: the new status is
// stored only when the current status still equals expected. Returns
// false without error when the precondition failed, which callers map to
// an optimistic-concurrency state error. Materialized instances mirror
// their parent's status in the same statement batch.
func (r *EventRepository) UpdateStatusIf(ctx context.Context, q Queryable, id string, expected, next models.EventStatus, reviewerID, reviewerNotes *string) (bool, error) {
	now := r.Now()

	var result sql.Result
	var err error
	if reviewerID != nil {
		result, err = q.ExecContext(ctx, `
			UPDATE events
			SET status = ?, reviewer_id = ?, reviewer_notes = ?, updated_at = ?
			WHERE id = ? AND status = ?
		`, next, reviewerID, reviewerNotes, now, id, expected)
	} else {
		result, err = q.ExecContext(ctx, `
			UPDATE events SET status = ?, updated_at = ? WHERE id = ? AND status = ?
		`, next, now, id, expected)
	}
	if err != nil {
		return false, fmt.Errorf("updating event status: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	if _, err := q.ExecContext(ctx, `
		UPDATE events SET status = ?, updated_at = ? WHERE parent_event_id = ?
	`, next, now, id); err != nil {
		return false, fmt.Errorf("updating instance statuses: %w", err)
	}
	return true, nil
}

// ListRecurringParents retrieves all recurring event definitions.
func (r *EventRepository) ListRecurringParents(ctx context.Context) ([]models.Event, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT `+eventColumns+` FROM events
		WHERE recurrence_rule IS NOT NULL AND parent_event_id IS NULL
		ORDER BY starts_at
	`)
	if err != nil {
		return nil, fmt.Errorf("querying recurring events: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

// ListInstances retrieves the materialized instances of a recurring
// parent, ordered by start time.
func (r *EventRepository) ListInstances(ctx context.Context, parentID string) ([]models.Event, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT `+eventColumns+` FROM events WHERE parent_event_id = ? ORDER BY starts_at
	`, parentID)
	if err != nil {
		return nil, fmt.Errorf("querying event instances: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

// DeleteInstances removes all materialized instances of a parent.
func (r *EventRepository) DeleteInstances(ctx context.Context, parentID string) error {
	if _, err := r.DB().ExecContext(ctx, "DELETE FROM events WHERE parent_event_id = ?", parentID); err != nil {
		return fmt.Errorf("deleting event instances: %w", err)
	}
	return nil
}

// DeleteInstance removes a single materialized instance row.
func (r *EventRepository) DeleteInstance(ctx context.Context, id string) error {
	if _, err := r.DB().ExecContext(ctx, `
		DELETE FROM events WHERE id = ? AND parent_event_id IS NOT NULL
	`, id); err != nil {
		return fmt.Errorf("deleting event instance: %w", err)
	}
	return nil
}

// DeleteInstancesBefore prunes instances of a parent that start before
// the cutoff, keeping the materialized horizon bounded.
func (r *EventRepository) DeleteInstancesBefore(ctx context.Context, parentID string, cutoff time.Time) error {
	if _, err := r.DB().ExecContext(ctx, `
		DELETE FROM events WHERE parent_event_id = ? AND starts_at < ?
	`, parentID, cutoff); err != nil {
		return fmt.Errorf("pruning event instances: %w", err)
	}
	return nil
}

func collectEvents(rows *sql.Rows) ([]models.Event, error) {
	var events []models.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		events = append(events, *ev)
	}
	return events, rows.Err()
}
