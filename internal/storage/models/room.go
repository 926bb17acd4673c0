package models

import "time"

// Room represents a bookable space that events are scheduled into.
type Room struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Color        string    `json:"color"`
	AllowOverlap bool      `json:"allow_overlap"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
