package models

import "time"

// UserQuestionProgress tracks one user's scheduling state for one
// question under the SM-2 algorithm. One row per (user, question)
// pair, created lazily on the first attempt.
type UserQuestionProgress struct {
	ID           int64     `json:"id" db:"id"`
	UserID       int64     `json:"user_id" db:"user_id"`
	QuestionID   int64     `json:"question_id" db:"question_id"`
	TimesShown   int       `json:"times_shown" db:"times_shown"`
	TimesCorrect int       `json:"times_correct" db:"times_correct"`
	LastShownAt  time.Time `json:"last_shown_at" db:"last_shown_at"`
	EaseFactor   float64   `json:"ease_factor" db:"ease_factor"`     // SM-2 EF parameter, floored at 1.3
	IntervalDays int       `json:"interval_days" db:"interval_days"` // days until next scheduled review
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
