package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/room-scheduler/backend/internal/storage/models"
)

// RoomRepository provides data access for rooms.
type RoomRepository struct {
	BaseRepository
}

// NewRoomRepository creates a new room repository.
func NewRoomRepository(db *DB) *RoomRepository {
	return &RoomRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

const roomColumns = "id, name, color, allow_overlap, is_active, created_at, updated_at"

// Create inserts a new room.
func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	room.ID = GenerateID()
	room.CreatedAt = r.Now()
	room.UpdatedAt = r.Now()

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO rooms (`+roomColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, room.ID, room.Name, room.Color, room.AllowOverlap, room.IsActive, room.CreatedAt, room.UpdatedAt)

	if err != nil {
		return fmt.Errorf("inserting room: %w", err)
	}
	return nil
}

// GetByID retrieves a room by its ID. Returns nil when absent.
func (r *RoomRepository) GetByID(ctx context.Context, id string) (*models.Room, error) {
	room := &models.Room{}

	err := r.DB().QueryRowContext(ctx, `
		SELECT `+roomColumns+` FROM rooms WHERE id = ?
	`, id).Scan(&room.ID, &room.Name, &room.Color, &room.AllowOverlap, &room.IsActive, &room.CreatedAt, &room.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying room: %w", err)
	}
	return room, nil
}

// List retrieves all rooms, active ones first, ordered by name.
func (r *RoomRepository) List(ctx context.Context) ([]models.Room, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT `+roomColumns+` FROM rooms ORDER BY is_active DESC, name
	`)
	if err != nil {
		return nil, fmt.Errorf("querying rooms: %w", err)
	}
	defer rows.Close()

	var rooms []models.Room
	for rows.Next() {
		var room models.Room
		if err := rows.Scan(&room.ID, &room.Name, &room.Color, &room.AllowOverlap, &room.IsActive, &room.CreatedAt, &room.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning room: %w", err)
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

// Update persists changes to an existing room.
func (r *RoomRepository) Update(ctx context.Context, room *models.Room) error {
	room.UpdatedAt = r.Now()

	result, err := r.DB().ExecContext(ctx, `
		UPDATE rooms
		SET name = ?, color = ?, allow_overlap = ?, is_active = ?, updated_at = ?
		WHERE id = ?
	`, room.Name, room.Color, room.AllowOverlap, room.IsActive, room.UpdatedAt, room.ID)

	if err != nil {
		return fmt.Errorf("updating room: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("room not found: %s", room.ID)
	}
	return nil
}

// Delete removes a room.
func (r *RoomRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB().ExecContext(ctx, "DELETE FROM rooms WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting room: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("room not found: %s", id)
	}
	return nil
}
