package models

// GeneralStats is the top-level slice of a user's learning analytics.
// SuccessRate is a fraction in [0,1]; AvgTimeSeconds is rounded to one
// decimal place.
type GeneralStats struct {
	AnsweredQuestions int     `json:"answered_questions"`
	TotalQuestions    int     `json:"total_questions"`
	TotalAttempts     int     `json:"total_attempts"`
	CorrectAttempts   int     `json:"correct_attempts"`
	SuccessRate       float64 `json:"success_rate"`
	AvgTimeSeconds    float64 `json:"avg_time_seconds"`
}

// CategoryStats is the per-category attempt breakdown. Only categories
// with at least one recorded attempt appear.
type CategoryStats struct {
	Category    string  `json:"category" db:"category"`
	Attempts    int     `json:"attempts" db:"attempts"`
	Correct     int     `json:"correct" db:"correct"`
	SuccessRate float64 `json:"success_rate" db:"success_rate"`
}

// DifficultyStats is the per-difficulty attempt breakdown.
type DifficultyStats struct {
	Difficulty  string  `json:"difficulty" db:"difficulty"`
	Attempts    int     `json:"attempts" db:"attempts"`
	Correct     int     `json:"correct" db:"correct"`
	SuccessRate float64 `json:"success_rate" db:"success_rate"`
}

// DailyProgress is one calendar day's attempt counts. Date is in
// YYYY-MM-DD form.
type DailyProgress struct {
	Date     string `json:"date" db:"day"`
	Attempts int    `json:"attempts" db:"attempts"`
	Correct  int    `json:"correct" db:"correct"`
}

// LearningAnalytics bundles every analytics view the UI renders.
type LearningAnalytics struct {
	General        GeneralStats      `json:"general"`
	Categories     []CategoryStats   `json:"categories"`
	Difficulties   []DifficultyStats `json:"difficulties"`
	WeeklyProgress []DailyProgress   `json:"weekly_progress"`
}

// StreakInfo reports consecutive-day practice streaks.
type StreakInfo struct {
	CurrentStreak int `json:"current_streak"`
	LongestStreak int `json:"longest_streak"`
}

// Recommendation priorities, in rank order.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Recommendation is one ranked study suggestion.
type Recommendation struct {
	Type     string `json:"type"`
	Category string `json:"category,omitempty"`
	Message  string `json:"message"`
	Priority string `json:"priority"`
}

// BulkResult is the structured outcome of a bulk question insert.
// Bulk operations report per-item failures here instead of aborting
// on the first one.
type BulkResult struct {
	TotalProcessed int      `json:"total_processed"`
	Added          int      `json:"added"`
	Duplicates     int      `json:"duplicates"`
	Skipped        int      `json:"skipped"`
	Errors         []string `json:"errors"`
}
