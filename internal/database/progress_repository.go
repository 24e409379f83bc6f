package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/quizbrain/pkg/models"
	"github.com/jmoiron/sqlx"
)

// ProgressRepository handles database operations for per-(user, question)
// scheduling state.
type ProgressRepository struct{}

// NewProgressRepository creates a new repository instance
func NewProgressRepository() *ProgressRepository {
	return &ProgressRepository{}
}

// GetByUserAndQuestion returns progress for a specific user and question.
// Returns ErrNotFound for a question the user has never been shown.
func (r *ProgressRepository) GetByUserAndQuestion(ctx context.Context, userID, questionID int64) (*models.UserQuestionProgress, error) {
	return r.get(ctx, DB, userID, questionID, false)
}

// GetForUpdateTx reads the progress row inside tx with a row lock on
// Postgres, so concurrent attempts for the same (user, question) pair
// serialize on the row. SQLite serializes on its single write
// connection instead.
func (r *ProgressRepository) GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, userID, questionID int64) (*models.UserQuestionProgress, error) {
	return r.get(ctx, tx, userID, questionID, true)
}

func (r *ProgressRepository) get(ctx context.Context, q sqlx.QueryerContext, userID, questionID int64, forUpdate bool) (*models.UserQuestionProgress, error) {
	query := "SELECT * FROM user_question_progress WHERE user_id = $1 AND question_id = $2"
	if forUpdate && DB.DriverName() == "postgres" {
		query += " FOR UPDATE"
	}

	var progress models.UserQuestionProgress
	err := sqlx.GetContext(ctx, q, &progress, query, userID, questionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user progress: %v", err)
	}
	return &progress, nil
}

// ApplyAttempt upserts the progress row for one answered question:
// times shown is incremented, times correct when applicable, and last
// shown is set. The increments run in-row so concurrent attempts for
// the same (user, question) pair cannot lose updates.
func (r *ProgressRepository) ApplyAttempt(ctx context.Context, userID, questionID int64, correct bool, now time.Time) error {
	return r.applyAttempt(ctx, DB, userID, questionID, correct, now)
}

// ApplyAttemptTx is ApplyAttempt within an existing transaction.
func (r *ProgressRepository) ApplyAttemptTx(ctx context.Context, tx *sqlx.Tx, userID, questionID int64, correct bool, now time.Time) error {
	return r.applyAttempt(ctx, tx, userID, questionID, correct, now)
}

func (r *ProgressRepository) applyAttempt(ctx context.Context, q sqlx.ExecerContext, userID, questionID int64, correct bool, now time.Time) error {
	correctInc := 0
	if correct {
		correctInc = 1
	}

	query := `
		INSERT INTO user_question_progress
			(user_id, question_id, times_shown, times_correct, last_shown_at, ease_factor, interval_days)
		VALUES ($1, $2, 1, $3, $4, 2.5, 1)
		ON CONFLICT (user_id, question_id) DO UPDATE SET
			times_shown = user_question_progress.times_shown + 1,
			times_correct = user_question_progress.times_correct + excluded.times_correct,
			last_shown_at = excluded.last_shown_at,
			updated_at = CURRENT_TIMESTAMP
	`
	if _, err := q.ExecContext(ctx, query, userID, questionID, correctInc, now); err != nil {
		return fmt.Errorf("failed to apply attempt to progress: %v", err)
	}
	return nil
}

// UpdateScheduling persists the interval and ease factor computed by
// the scheduler for one (user, question) pair.
func (r *ProgressRepository) UpdateScheduling(ctx context.Context, userID, questionID int64, intervalDays int, easeFactor float64) error {
	return r.updateScheduling(ctx, DB, userID, questionID, intervalDays, easeFactor)
}

// UpdateSchedulingTx is UpdateScheduling within an existing transaction.
func (r *ProgressRepository) UpdateSchedulingTx(ctx context.Context, tx *sqlx.Tx, userID, questionID int64, intervalDays int, easeFactor float64) error {
	return r.updateScheduling(ctx, tx, userID, questionID, intervalDays, easeFactor)
}

func (r *ProgressRepository) updateScheduling(ctx context.Context, q sqlx.ExecerContext, userID, questionID int64, intervalDays int, easeFactor float64) error {
	_, err := q.ExecContext(ctx, `
		UPDATE user_question_progress SET
			interval_days = $1,
			ease_factor = $2,
			updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $3 AND question_id = $4
	`, intervalDays, easeFactor, userID, questionID)
	if err != nil {
		return fmt.Errorf("failed to update scheduling: %v", err)
	}
	return nil
}

// dueCondition is the WHERE fragment selecting progress rows whose
// review date has arrived, per dialect.
func dueCondition() (condition, dueExpr string) {
	if DB.DriverName() == "postgres" {
		dueExpr = "p.last_shown_at + p.interval_days * INTERVAL '1 day'"
		return dueExpr + " <= NOW()", dueExpr
	}
	dueExpr = "datetime(p.last_shown_at, '+' || p.interval_days || ' days')"
	return dueExpr + " <= datetime('now')", dueExpr
}

// DueQuestions returns questions whose next review date has arrived
// for the user, most overdue first, capped at limit. A question with
// no progress row is not due: initial exposure is a separate selection
// path.
func (r *ProgressRepository) DueQuestions(ctx context.Context, userID int64, limit int) ([]models.Question, error) {
	condition, dueExpr := dueCondition()
	query := fmt.Sprintf(`
		SELECT q.* FROM questions q
		JOIN user_question_progress p ON p.question_id = q.id
		WHERE p.user_id = $1 AND %s
		ORDER BY %s ASC
		LIMIT $2
	`, condition, dueExpr)

	var questions []models.Question
	if err := DB.SelectContext(ctx, &questions, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to get due questions: %v", err)
	}
	for i := range questions {
		decodeOptions(&questions[i])
	}
	return questions, nil
}

// CountDue returns how many questions are due for review for the user.
func (r *ProgressRepository) CountDue(ctx context.Context, userID int64) (int, error) {
	condition, _ := dueCondition()
	query := fmt.Sprintf(`
		SELECT COUNT(*) FROM user_question_progress p
		WHERE p.user_id = $1 AND %s
	`, condition)

	var count int
	if err := DB.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("failed to count due questions: %v", err)
	}
	return count, nil
}

// CountByUser returns how many distinct questions the user has answered.
func (r *ProgressRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	var count int
	err := DB.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM user_question_progress WHERE user_id = $1", userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count answered questions: %v", err)
	}
	return count, nil
}
