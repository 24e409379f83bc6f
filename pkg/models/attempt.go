package models

import "time"

// QuestionAttempt is one answered question. Rows are append-only and
// are the sole input to streak and accuracy aggregates.
type QuestionAttempt struct {
	ID               int64     `json:"id" db:"id"`
	UserID           int64     `json:"user_id" db:"user_id"`
	QuestionID       int64     `json:"question_id" db:"question_id"`
	IsCorrect        bool      `json:"is_correct" db:"is_correct"`
	TimeTakenSeconds float64   `json:"time_taken_seconds" db:"time_taken_seconds"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}
