package database

import (
	"context"
	"fmt"
	"time"

	"github.com/example/quizbrain/pkg/models"
	"github.com/jmoiron/sqlx"
)

// AttemptRepository handles database operations for the append-only
// attempt history. Attempts are never updated or deleted; they are the
// sole input to streak and accuracy aggregates.
type AttemptRepository struct{}

// NewAttemptRepository creates a new repository instance
func NewAttemptRepository() *AttemptRepository {
	return &AttemptRepository{}
}

// Create appends one attempt row.
func (r *AttemptRepository) Create(ctx context.Context, attempt *models.QuestionAttempt) error {
	return r.create(ctx, DB, attempt)
}

// CreateTx is Create within an existing transaction.
func (r *AttemptRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, attempt *models.QuestionAttempt) error {
	return r.create(ctx, tx, attempt)
}

func (r *AttemptRepository) create(ctx context.Context, q sqlx.ExtContext, attempt *models.QuestionAttempt) error {
	query := `
		INSERT INTO question_attempts (user_id, question_id, is_correct, time_taken_seconds, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if DB.DriverName() == "postgres" {
		return q.QueryRowxContext(ctx, query+" RETURNING id",
			attempt.UserID, attempt.QuestionID, attempt.IsCorrect,
			attempt.TimeTakenSeconds, attempt.CreatedAt,
		).Scan(&attempt.ID)
	}

	result, err := q.ExecContext(ctx, query,
		attempt.UserID, attempt.QuestionID, attempt.IsCorrect,
		attempt.TimeTakenSeconds, attempt.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create attempt: %v", err)
	}
	attempt.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get attempt ID: %v", err)
	}
	return nil
}

// Summary returns the user's total attempt count, correct count and
// average time per question.
func (r *AttemptRepository) Summary(ctx context.Context, userID int64) (attempts, correct int, avgTime float64, err error) {
	row := struct {
		Attempts int     `db:"attempts"`
		Correct  int     `db:"correct"`
		AvgTime  float64 `db:"avg_time"`
	}{}
	err = DB.GetContext(ctx, &row, `
		SELECT COUNT(*) AS attempts,
		       COALESCE(SUM(CASE WHEN is_correct THEN 1 ELSE 0 END), 0) AS correct,
		       COALESCE(AVG(time_taken_seconds), 0) AS avg_time
		FROM question_attempts
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to get attempt summary: %v", err)
	}
	return row.Attempts, row.Correct, row.AvgTime, nil
}

// CountFast returns how many attempts were answered in under
// maxSeconds.
func (r *AttemptRepository) CountFast(ctx context.Context, userID int64, maxSeconds float64) (int, error) {
	var count int
	err := DB.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM question_attempts
		WHERE user_id = $1 AND time_taken_seconds < $2
	`, userID, maxSeconds)
	if err != nil {
		return 0, fmt.Errorf("failed to count fast attempts: %v", err)
	}
	return count, nil
}

// RecentResults returns the correctness of the user's most recent
// attempts, newest first, capped at limit.
func (r *AttemptRepository) RecentResults(ctx context.Context, userID int64, limit int) ([]bool, error) {
	var results []bool
	err := DB.SelectContext(ctx, &results, `
		SELECT is_correct FROM question_attempts
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent results: %v", err)
	}
	return results, nil
}

// CategoryAccuracy returns per-category attempt counts and success
// rates, restricted to categories with at least one recorded attempt.
func (r *AttemptRepository) CategoryAccuracy(ctx context.Context, userID int64) ([]models.CategoryStats, error) {
	var stats []models.CategoryStats
	err := DB.SelectContext(ctx, &stats, `
		SELECT q.category AS category,
		       COUNT(*) AS attempts,
		       COALESCE(SUM(CASE WHEN a.is_correct THEN 1 ELSE 0 END), 0) AS correct,
		       CAST(COALESCE(SUM(CASE WHEN a.is_correct THEN 1 ELSE 0 END), 0) AS REAL) / COUNT(*) AS success_rate
		FROM question_attempts a
		JOIN questions q ON q.id = a.question_id
		WHERE a.user_id = $1
		GROUP BY q.category
		ORDER BY q.category
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get category accuracy: %v", err)
	}
	return stats, nil
}

// DifficultyAccuracy returns per-difficulty attempt counts and success
// rates.
func (r *AttemptRepository) DifficultyAccuracy(ctx context.Context, userID int64) ([]models.DifficultyStats, error) {
	var stats []models.DifficultyStats
	err := DB.SelectContext(ctx, &stats, `
		SELECT q.difficulty AS difficulty,
		       COUNT(*) AS attempts,
		       COALESCE(SUM(CASE WHEN a.is_correct THEN 1 ELSE 0 END), 0) AS correct,
		       CAST(COALESCE(SUM(CASE WHEN a.is_correct THEN 1 ELSE 0 END), 0) AS REAL) / COUNT(*) AS success_rate
		FROM question_attempts a
		JOIN questions q ON q.id = a.question_id
		WHERE a.user_id = $1
		GROUP BY q.difficulty
		ORDER BY q.difficulty
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get difficulty accuracy: %v", err)
	}
	return stats, nil
}

// AccuracyForCategory returns the attempt and correct counts for one
// category.
func (r *AttemptRepository) AccuracyForCategory(ctx context.Context, userID int64, category string) (attempts, correct int, err error) {
	row := struct {
		Attempts int `db:"attempts"`
		Correct  int `db:"correct"`
	}{}
	err = DB.GetContext(ctx, &row, `
		SELECT COUNT(*) AS attempts,
		       COALESCE(SUM(CASE WHEN a.is_correct THEN 1 ELSE 0 END), 0) AS correct
		FROM question_attempts a
		JOIN questions q ON q.id = a.question_id
		WHERE a.user_id = $1 AND q.category = $2
	`, userID, category)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get category accuracy: %v", err)
	}
	return row.Attempts, row.Correct, nil
}

// dayExpr returns the SQL expression formatting created_at as a
// YYYY-MM-DD string, per dialect.
func dayExpr() string {
	if DB.DriverName() == "postgres" {
		return "to_char(created_at, 'YYYY-MM-DD')"
	}
	return "date(created_at)"
}

// DistinctPracticeDates returns the distinct calendar dates on which
// the user made at least one attempt, most recent first.
func (r *AttemptRepository) DistinctPracticeDates(ctx context.Context, userID int64) ([]time.Time, error) {
	query := fmt.Sprintf(`
		SELECT DISTINCT %s AS day FROM question_attempts
		WHERE user_id = $1
		ORDER BY day DESC
	`, dayExpr())

	var days []string
	if err := DB.SelectContext(ctx, &days, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get practice dates: %v", err)
	}

	dates := make([]time.Time, 0, len(days))
	for _, d := range days {
		t, err := time.Parse("2006-01-02", d)
		if err != nil {
			return nil, fmt.Errorf("failed to parse practice date %q: %v", d, err)
		}
		dates = append(dates, t)
	}
	return dates, nil
}

// DailyActivity returns per-calendar-day attempt and correct counts
// for the last windowDays days, ordered ascending by date.
func (r *AttemptRepository) DailyActivity(ctx context.Context, userID int64, windowDays int) ([]models.DailyProgress, error) {
	since := time.Now().UTC().AddDate(0, 0, -windowDays)
	query := fmt.Sprintf(`
		SELECT %s AS day,
		       COUNT(*) AS attempts,
		       COALESCE(SUM(CASE WHEN is_correct THEN 1 ELSE 0 END), 0) AS correct
		FROM question_attempts
		WHERE user_id = $1 AND created_at >= $2
		GROUP BY day
		ORDER BY day ASC
	`, dayExpr())

	var progress []models.DailyProgress
	if err := DB.SelectContext(ctx, &progress, query, userID, since); err != nil {
		return nil, fmt.Errorf("failed to get daily activity: %v", err)
	}
	return progress, nil
}

// CountInHours returns how many of the user's attempts fall in the
// half-open hour-of-day range [fromHour, toHour).
func (r *AttemptRepository) CountInHours(ctx context.Context, userID int64, fromHour, toHour int) (int, error) {
	hourExpr := "CAST(strftime('%H', created_at) AS INTEGER)"
	if DB.DriverName() == "postgres" {
		hourExpr = "EXTRACT(HOUR FROM created_at)"
	}
	query := fmt.Sprintf(`
		SELECT COUNT(*) FROM question_attempts
		WHERE user_id = $1 AND %s >= $2 AND %s < $3
	`, hourExpr, hourExpr)

	var count int
	if err := DB.GetContext(ctx, &count, query, userID, fromHour, toHour); err != nil {
		return 0, fmt.Errorf("failed to count attempts by hour: %v", err)
	}
	return count, nil
}
