package models

import "time"

// UserSettings stores a user's saved location for forecast lookups.
type UserSettings struct {
	UserID       string    `json:"user_id" badgerhold:"key"`
	LocationName string    `json:"location_name"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
