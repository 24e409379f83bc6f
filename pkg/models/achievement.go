package models

import "time"

// Achievement is a static catalog entry. The catalog is process-wide
// constant data built once at startup, not per-user state.
type Achievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// UnlockedAchievement joins a user to a catalog entry. Created exactly
// once per (user, achievement), never mutated or deleted.
type UnlockedAchievement struct {
	ID            int64     `json:"id" db:"id"`
	UserID        int64     `json:"user_id" db:"user_id"`
	AchievementID string    `json:"achievement_id" db:"achievement_id"`
	UnlockedAt    time.Time `json:"unlocked_at" db:"unlocked_at"`
}

// AchievementProgress summarizes how far through the catalog a user is.
type AchievementProgress struct {
	Total      int     `json:"total"`
	Unlocked   int     `json:"unlocked"`
	Percentage float64 `json:"percentage"`
}
