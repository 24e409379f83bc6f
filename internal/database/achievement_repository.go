package database

import (
	"context"
	"fmt"
	"time"

	"github.com/example/quizbrain/pkg/models"
)

// AchievementRepository handles database operations for per-user
// achievement unlocks. The unlock write is idempotent: the
// (user, achievement) uniqueness constraint makes a conflicting insert
// mean "already unlocked", not an error.
type AchievementRepository struct{}

// NewAchievementRepository creates a new repository instance
func NewAchievementRepository() *AchievementRepository {
	return &AchievementRepository{}
}

// Unlock records an achievement for a user. It reports true only when
// this call performed the first unlock; a concurrent or repeated
// unlock leaves the original row and timestamp untouched.
func (r *AchievementRepository) Unlock(ctx context.Context, userID int64, achievementID string, now time.Time) (bool, error) {
	result, err := DB.ExecContext(ctx, `
		INSERT INTO unlocked_achievements (user_id, achievement_id, unlocked_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, achievement_id) DO NOTHING
	`, userID, achievementID, now)
	if err != nil {
		return false, fmt.Errorf("failed to unlock achievement: %v", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to unlock achievement: %v", err)
	}
	return rows == 1, nil
}

// UnlockedIDs returns the set of achievement ids the user has unlocked.
func (r *AchievementRepository) UnlockedIDs(ctx context.Context, userID int64) (map[string]bool, error) {
	var ids []string
	err := DB.SelectContext(ctx, &ids,
		"SELECT achievement_id FROM unlocked_achievements WHERE user_id = $1", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get unlocked achievements: %v", err)
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// ListByUser returns the user's unlocks ordered by unlock time.
func (r *AchievementRepository) ListByUser(ctx context.Context, userID int64) ([]models.UnlockedAchievement, error) {
	var unlocked []models.UnlockedAchievement
	err := DB.SelectContext(ctx, &unlocked, `
		SELECT * FROM unlocked_achievements
		WHERE user_id = $1
		ORDER BY unlocked_at ASC, id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list unlocked achievements: %v", err)
	}
	return unlocked, nil
}
