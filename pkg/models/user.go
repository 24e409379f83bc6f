package models

import "time"

// User is the minimal identity record the engine keeps so progress,
// attempts and sessions have a real foreign key. Profile data beyond a
// display name belongs to the surrounding application.
type User struct {
	ID          int64     `json:"id" db:"id"`
	DisplayName string    `json:"display_name" db:"display_name"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
