package models

import (
	"strings"
	"time"
)

// Question represents a multiple-choice question in the bank.
// The record is immutable content: answer history lives in
// UserQuestionProgress and QuestionAttempt.
type Question struct {
	ID             int64     `json:"id" db:"id"`
	Text           string    `json:"text" db:"text"`
	NormalizedText string    `json:"-" db:"normalized_text"`
	Options        []string  `json:"options" db:"-"`
	OptionsJSON    string    `json:"-" db:"options"`
	CorrectIndex   int       `json:"correct_index" db:"correct_index"`
	Explanation    string    `json:"explanation" db:"explanation"`
	Category       string    `json:"category" db:"category"`
	Difficulty     string    `json:"difficulty" db:"difficulty"`
	Hint           string    `json:"hint,omitempty" db:"hint"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// NormalizeText returns the canonical comparison form of question text
// used for the uniqueness index: commas dropped, lowercased, internal
// whitespace runs collapsed to single spaces, and trailing "?!. "
// characters stripped. The trailing strip runs last so punctuation
// exposed by the whitespace collapse is still caught.
func NormalizeText(text string) string {
	s := strings.ReplaceAll(text, ",", "")
	s = strings.ToLower(s)
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimRight(s, "?!. ")
}
