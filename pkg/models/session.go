package models

import "time"

// Session type tags.
const (
	SessionTypePractice   = "practice"
	SessionTypeReview     = "review"
	SessionTypeSimulation = "simulation"
)

// StudySession is one sitting of practice. Created at session start,
// closed (EndedAt set) at session end. At most one open session per
// user is meaningful but not structurally enforced.
type StudySession struct {
	ID                int64      `json:"id" db:"id"`
	PublicID          string     `json:"public_id" db:"public_id"`
	UserID            int64      `json:"user_id" db:"user_id"`
	SessionType       string     `json:"session_type" db:"session_type"`
	StartedAt         time.Time  `json:"started_at" db:"started_at"`
	EndedAt           *time.Time `json:"ended_at,omitempty" db:"ended_at"`
	QuestionsAnswered int        `json:"questions_answered" db:"questions_answered"`
	QuestionsCorrect  int        `json:"questions_correct" db:"questions_correct"`
}
