package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/quizbrain/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) {
	t.Helper()
	t.Setenv("DB_TYPE", "")
	t.Setenv("DATABASE_PATH", filepath.Join(t.TempDir(), "quizbrain_test.db"))
	require.NoError(t, Connect())
	t.Cleanup(func() { Close() })
}

func seedUser(t *testing.T, userID int64) {
	t.Helper()
	require.NoError(t, NewUserRepository().Ensure(context.Background(), userID, "test user"))
}

func seedQuestion(t *testing.T, text, category string) *models.Question {
	t.Helper()
	q := &models.Question{
		Text:         text,
		Options:      []string{"yes", "no"},
		CorrectIndex: 0,
		Category:     category,
	}
	require.NoError(t, NewQuestionRepository().Create(context.Background(), q))
	return q
}

func TestQuestionCreate_DuplicateRejected(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	repo := NewQuestionRepository()

	original := seedQuestion(t, "What is the capital of France?", "geography")

	dup := &models.Question{
		Text:         "  what is the   capital of France  ",
		Options:      []string{"Paris", "Lyon"},
		CorrectIndex: 0,
	}
	err := repo.Create(ctx, dup)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, original.ID, conflict.ExistingID)
}

func TestQuestionCreate_Validation(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	repo := NewQuestionRepository()

	err := repo.Create(ctx, &models.Question{Text: "", Options: []string{"a"}, CorrectIndex: 5})
	var invalid *ValidationError
	require.ErrorAs(t, err, &invalid)
	assert.Len(t, invalid.Reasons, 3)
}

func TestQuestionUpdate_ExcludesSelf(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	repo := NewQuestionRepository()

	q := seedQuestion(t, "Is Go garbage collected?", "runtime")

	// Re-saving a question under its own text must not collide with itself.
	q.Explanation = "Yes, since the first release."
	require.NoError(t, repo.Update(ctx, q))

	other := seedQuestion(t, "Does Go have generics?", "language")
	other.Text = "Is Go garbage collected?"
	err := repo.Update(ctx, other)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, q.ID, conflict.ExistingID)
}

func TestQuestionBulkCreate_Counts(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	repo := NewQuestionRepository()

	seedQuestion(t, "First existing question?", "a")
	seedQuestion(t, "Second existing question?", "a")

	batch := []models.Question{
		{Text: "Brand new one?", Options: []string{"a", "b"}, CorrectIndex: 0},
		{Text: "first existing question", Options: []string{"a", "b"}, CorrectIndex: 0},
		{Text: "Brand new two?", Options: []string{"a", "b"}, CorrectIndex: 1},
		{Text: "second existing QUESTION?!", Options: []string{"a", "b"}, CorrectIndex: 0},
		{Text: "Brand new three?", Options: []string{"a", "b"}, CorrectIndex: 0},
	}
	result := repo.BulkCreate(ctx, batch)

	assert.Equal(t, 5, result.TotalProcessed)
	assert.Equal(t, 3, result.Added)
	assert.Equal(t, 2, result.Duplicates)
	assert.Equal(t, 0, result.Skipped)
	assert.Len(t, result.Errors, 2)
}

func TestFindByNormalizedText(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	repo := NewQuestionRepository()

	q := seedQuestion(t, "Unique question text?", "misc")

	found, err := repo.FindByNormalizedText(ctx, models.NormalizeText("unique QUESTION text"), 0)
	require.NoError(t, err)
	assert.Equal(t, q.ID, found.ID)
	assert.Equal(t, []string{"yes", "no"}, found.Options)

	_, err = repo.FindByNormalizedText(ctx, models.NormalizeText("unique question text"), q.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.FindByNormalizedText(ctx, "no such text", 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDecodeOptions_MalformedRowDefaulted(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	repo := NewQuestionRepository()

	broken := seedQuestion(t, "Row with corrupt options?", "misc")
	intact := seedQuestion(t, "Row with good options?", "misc")

	// Corrupt the stored JSON under the repository's feet.
	_, err := DB.ExecContext(ctx,
		"UPDATE questions SET options = $1 WHERE id = $2", "{not json", broken.ID)
	require.NoError(t, err)

	// The full set is still returned; the corrupt record comes back
	// with empty options instead of failing the read.
	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, q := range all {
		switch q.ID {
		case broken.ID:
			assert.Empty(t, q.Options)
		case intact.ID:
			assert.Equal(t, []string{"yes", "no"}, q.Options)
		}
	}

	seedUser(t, 1)
	progressRepo := NewProgressRepository()
	require.NoError(t, progressRepo.ApplyAttempt(ctx, 1, broken.ID, true, time.Now().UTC().AddDate(0, 0, -5)))
	require.NoError(t, progressRepo.UpdateScheduling(ctx, 1, broken.ID, 1, 2.5))

	due, err := progressRepo.DueQuestions(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, broken.ID, due[0].ID)
	assert.Empty(t, due[0].Options)
}

func TestProgressApplyAttempt_Upsert(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	repo := NewProgressRepository()

	seedUser(t, 1)
	q := seedQuestion(t, "Upsert target?", "misc")
	now := time.Now().UTC()

	_, err := repo.GetByUserAndQuestion(ctx, 1, q.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, repo.ApplyAttempt(ctx, 1, q.ID, true, now))
	require.NoError(t, repo.ApplyAttempt(ctx, 1, q.ID, false, now))
	require.NoError(t, repo.ApplyAttempt(ctx, 1, q.ID, true, now))

	progress, err := repo.GetByUserAndQuestion(ctx, 1, q.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, progress.TimesShown)
	assert.Equal(t, 2, progress.TimesCorrect)
	assert.InDelta(t, 2.5, progress.EaseFactor, 0.0001)
	assert.Equal(t, 1, progress.IntervalDays)

	answered, err := repo.CountByUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, answered)
}

func TestProgressDueQuestions_OrderAndLimit(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	repo := NewProgressRepository()

	seedUser(t, 1)
	older := seedQuestion(t, "Most overdue?", "misc")
	newer := seedQuestion(t, "Slightly overdue?", "misc")
	future := seedQuestion(t, "Not yet due?", "misc")
	unseen := seedQuestion(t, "Never shown?", "misc")
	_ = unseen

	now := time.Now().UTC()
	require.NoError(t, repo.ApplyAttempt(ctx, 1, older.ID, true, now.AddDate(0, 0, -10)))
	require.NoError(t, repo.UpdateScheduling(ctx, 1, older.ID, 1, 2.5))
	require.NoError(t, repo.ApplyAttempt(ctx, 1, newer.ID, true, now.AddDate(0, 0, -3)))
	require.NoError(t, repo.UpdateScheduling(ctx, 1, newer.ID, 1, 2.5))
	require.NoError(t, repo.ApplyAttempt(ctx, 1, future.ID, true, now))
	require.NoError(t, repo.UpdateScheduling(ctx, 1, future.ID, 30, 2.5))

	due, err := repo.DueQuestions(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, older.ID, due[0].ID)
	assert.Equal(t, newer.ID, due[1].ID)

	count, err := repo.CountDue(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	capped, err := repo.DueQuestions(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, capped, 1)
	assert.Equal(t, older.ID, capped[0].ID)
}

func TestAchievementUnlock_Idempotent(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	repo := NewAchievementRepository()

	seedUser(t, 1)
	now := time.Now().UTC()

	first, err := repo.Unlock(ctx, 1, "first_attempt", now)
	require.NoError(t, err)
	assert.True(t, first)

	again, err := repo.Unlock(ctx, 1, "first_attempt", now.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, again)

	unlocked, err := repo.ListByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, unlocked, 1)
	assert.Equal(t, "first_attempt", unlocked[0].AchievementID)

	ids, err := repo.UnlockedIDs(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ids["first_attempt"])
}

func TestSessionLifecycle(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	repo := NewSessionRepository()

	seedUser(t, 1)

	session := &models.StudySession{UserID: 1, SessionType: models.SessionTypeSimulation}
	require.NoError(t, repo.Start(ctx, session))
	assert.NotEmpty(t, session.PublicID)

	count, err := repo.CountByType(ctx, 1, models.SessionTypeSimulation)
	require.NoError(t, err)
	assert.Equal(t, 0, count, "open sessions don't count as completed")

	require.NoError(t, repo.End(ctx, session.PublicID, 20, 18, time.Now().UTC()))

	count, err = repo.CountByType(ctx, 1, models.SessionTypeSimulation)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Ending twice finds no open session.
	err = repo.End(ctx, session.PublicID, 20, 18, time.Now().UTC())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserDelete_Cascades(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	seedUser(t, 1)
	q := seedQuestion(t, "Cascade target?", "misc")

	progressRepo := NewProgressRepository()
	require.NoError(t, progressRepo.ApplyAttempt(ctx, 1, q.ID, true, time.Now().UTC()))

	require.NoError(t, NewUserRepository().Delete(ctx, 1))

	_, err := progressRepo.GetByUserAndQuestion(ctx, 1, q.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
