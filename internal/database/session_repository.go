package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/quizbrain/pkg/models"
	"github.com/google/uuid"
)

// SessionRepository handles database operations for study sessions
type SessionRepository struct{}

// NewSessionRepository creates a new repository instance
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{}
}

// Start creates a new open session. A public UUID is assigned so
// collaborators can reference sessions without exposing row ids.
func (r *SessionRepository) Start(ctx context.Context, session *models.StudySession) error {
	session.PublicID = uuid.New().String()
	if session.StartedAt.IsZero() {
		session.StartedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO study_sessions (public_id, user_id, session_type, started_at)
		VALUES ($1, $2, $3, $4)
	`
	if DB.DriverName() == "postgres" {
		return DB.QueryRowContext(ctx, query+" RETURNING id",
			session.PublicID, session.UserID, session.SessionType, session.StartedAt,
		).Scan(&session.ID)
	}

	result, err := DB.ExecContext(ctx, query,
		session.PublicID, session.UserID, session.SessionType, session.StartedAt)
	if err != nil {
		return fmt.Errorf("failed to start session: %v", err)
	}
	session.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get session ID: %v", err)
	}
	return nil
}

// End closes a session, recording its answer counts.
func (r *SessionRepository) End(ctx context.Context, publicID string, answered, correct int, endedAt time.Time) error {
	result, err := DB.ExecContext(ctx, `
		UPDATE study_sessions SET
			ended_at = $1,
			questions_answered = $2,
			questions_correct = $3
		WHERE public_id = $4 AND ended_at IS NULL
	`, endedAt, answered, correct, publicID)
	if err != nil {
		return fmt.Errorf("failed to end session: %v", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to end session: %v", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByPublicID returns a session by its public UUID.
func (r *SessionRepository) GetByPublicID(ctx context.Context, publicID string) (*models.StudySession, error) {
	var session models.StudySession
	err := DB.GetContext(ctx, &session,
		"SELECT * FROM study_sessions WHERE public_id = $1", publicID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %v", err)
	}
	return &session, nil
}

// CountByType returns how many closed sessions of the given type the
// user has completed.
func (r *SessionRepository) CountByType(ctx context.Context, userID int64, sessionType string) (int, error) {
	var count int
	err := DB.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM study_sessions
		WHERE user_id = $1 AND session_type = $2 AND ended_at IS NOT NULL
	`, userID, sessionType)
	if err != nil {
		return 0, fmt.Errorf("failed to count sessions: %v", err)
	}
	return count, nil
}
