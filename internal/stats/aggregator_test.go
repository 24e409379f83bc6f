package stats

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/quizbrain/internal/database"
	"github.com/example/quizbrain/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) {
	t.Helper()
	t.Setenv("DB_TYPE", "")
	t.Setenv("DATABASE_PATH", filepath.Join(t.TempDir(), "quizbrain_test.db"))
	require.NoError(t, database.Connect())
	t.Cleanup(func() { database.Close() })
}

func newTestAggregator() *Aggregator {
	return NewAggregator(DefaultSettings(),
		database.NewQuestionRepository(),
		database.NewProgressRepository(),
		database.NewAttemptRepository(),
		database.NewSessionRepository())
}

func seedQuestion(t *testing.T, text, category, difficulty string) *models.Question {
	t.Helper()
	q := &models.Question{
		Text:         text,
		Options:      []string{"yes", "no"},
		CorrectIndex: 0,
		Category:     category,
		Difficulty:   difficulty,
	}
	require.NoError(t, database.NewQuestionRepository().Create(context.Background(), q))
	return q
}

func recordAttempt(t *testing.T, userID, questionID int64, correct bool, seconds float64, at time.Time) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, database.NewProgressRepository().ApplyAttempt(ctx, userID, questionID, correct, at))
	require.NoError(t, database.NewAttemptRepository().Create(ctx, &models.QuestionAttempt{
		UserID:           userID,
		QuestionID:       questionID,
		IsCorrect:        correct,
		TimeTakenSeconds: seconds,
		CreatedAt:        at,
	}))
}

func noon(daysAgo int) time.Time {
	day := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -daysAgo)
	return day.Add(12 * time.Hour)
}

func TestLearningAnalytics_EmptyUser(t *testing.T) {
	setupTestDB(t)
	agg := newTestAggregator()

	analytics, err := agg.LearningAnalytics(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, 0, analytics.General.TotalAttempts)
	assert.Equal(t, 0.0, analytics.General.SuccessRate)
	assert.Empty(t, analytics.Categories)
	assert.Empty(t, analytics.Difficulties)
	assert.Empty(t, analytics.WeeklyProgress)
}

func TestLearningAnalytics_Aggregates(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	agg := newTestAggregator()

	require.NoError(t, database.NewUserRepository().Ensure(ctx, 1, "u"))
	anatomy := seedQuestion(t, "Anatomy one?", "anatomy", "easy")
	physics := seedQuestion(t, "Physics one?", "physics", "hard")
	unused := seedQuestion(t, "Untouched?", "chemistry", "easy")
	_ = unused

	recordAttempt(t, 1, anatomy.ID, true, 10, noon(0))
	recordAttempt(t, 1, anatomy.ID, false, 20, noon(0))
	recordAttempt(t, 1, physics.ID, true, 15, noon(1))

	analytics, err := agg.LearningAnalytics(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, 2, analytics.General.AnsweredQuestions)
	assert.Equal(t, 3, analytics.General.TotalQuestions)
	assert.Equal(t, 3, analytics.General.TotalAttempts)
	assert.Equal(t, 2, analytics.General.CorrectAttempts)
	assert.InDelta(t, 2.0/3.0, analytics.General.SuccessRate, 0.0001)
	assert.InDelta(t, 15.0, analytics.General.AvgTimeSeconds, 0.0001)

	// Only categories with recorded attempts appear.
	require.Len(t, analytics.Categories, 2)
	assert.Equal(t, "anatomy", analytics.Categories[0].Category)
	assert.Equal(t, 2, analytics.Categories[0].Attempts)
	assert.InDelta(t, 0.5, analytics.Categories[0].SuccessRate, 0.0001)

	require.Len(t, analytics.Difficulties, 2)

	require.Len(t, analytics.WeeklyProgress, 2)
	assert.Equal(t, noon(1).Format("2006-01-02"), analytics.WeeklyProgress[0].Date)
	assert.Equal(t, 2, analytics.WeeklyProgress[1].Attempts)
}

func TestStreak_EndingYesterday(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	agg := newTestAggregator()

	require.NoError(t, database.NewUserRepository().Ensure(ctx, 1, "u"))
	q := seedQuestion(t, "Streak q?", "misc", "easy")

	for daysAgo := 1; daysAgo <= 3; daysAgo++ {
		recordAttempt(t, 1, q.ID, true, 10, noon(daysAgo))
	}

	streak, err := agg.Streak(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, streak.CurrentStreak)
	assert.Equal(t, 3, streak.LongestStreak)
}

func TestStreak_TrailingRunAfterGap(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	agg := newTestAggregator()

	require.NoError(t, database.NewUserRepository().Ensure(ctx, 1, "u"))
	q := seedQuestion(t, "Gap q?", "misc", "easy")

	// Three days of practice, a four-day gap, then five consecutive
	// days including today.
	for daysAgo := 9; daysAgo <= 11; daysAgo++ {
		recordAttempt(t, 1, q.ID, true, 10, noon(daysAgo))
	}
	for daysAgo := 0; daysAgo <= 4; daysAgo++ {
		recordAttempt(t, 1, q.ID, true, 10, noon(daysAgo))
	}

	streak, err := agg.Streak(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, streak.CurrentStreak)
	assert.Equal(t, 5, streak.LongestStreak)
}

func TestStreak_StaleHistory(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	agg := newTestAggregator()

	require.NoError(t, database.NewUserRepository().Ensure(ctx, 1, "u"))
	q := seedQuestion(t, "Stale q?", "misc", "easy")

	for daysAgo := 5; daysAgo <= 8; daysAgo++ {
		recordAttempt(t, 1, q.ID, true, 10, noon(daysAgo))
	}

	streak, err := agg.Streak(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, streak.CurrentStreak, "streak broken: last practice older than yesterday")
	assert.Equal(t, 4, streak.LongestStreak)
}

func TestRecommendations_WeakCategoryNeedsAttempts(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	agg := newTestAggregator()

	require.NoError(t, database.NewUserRepository().Ensure(ctx, 1, "u"))
	q := seedQuestion(t, "Weak q?", "history", "easy")

	// Three failing attempts: not enough volume to flag the category.
	for i := 0; i < 3; i++ {
		recordAttempt(t, 1, q.ID, false, 10, noon(0))
	}

	recommendations, err := agg.Recommendations(ctx, 1)
	require.NoError(t, err)
	for _, r := range recommendations {
		assert.NotEqual(t, "focus_category", r.Type)
	}
}

func TestRecommendations_WeakestCategoryAndOrdering(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	agg := newTestAggregator()

	require.NoError(t, database.NewUserRepository().Ensure(ctx, 1, "u"))
	history := seedQuestion(t, "History q?", "history", "easy")
	biology := seedQuestion(t, "Biology q?", "biology", "easy")

	// history: 2/6 correct (33%); biology: 3/6 correct (50%); both
	// weak, history weakest.
	for i := 0; i < 6; i++ {
		recordAttempt(t, 1, history.ID, i < 2, 10, noon(0))
		recordAttempt(t, 1, biology.ID, i < 3, 10, noon(0))
	}
	// Push the user over the simulation gate.
	for i := 0; i < 40; i++ {
		recordAttempt(t, 1, biology.ID, true, 10, noon(0))
	}

	recommendations, err := agg.Recommendations(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recommendations, 2)
	assert.Equal(t, "focus_category", recommendations[0].Type)
	assert.Equal(t, "history", recommendations[0].Category)
	assert.Equal(t, models.PriorityHigh, recommendations[0].Priority)
	assert.Equal(t, "try_simulation", recommendations[1].Type)
	assert.Equal(t, models.PriorityMedium, recommendations[1].Priority)
}

func TestRecommendations_SimulationSuppressedAfterSession(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	agg := newTestAggregator()

	require.NoError(t, database.NewUserRepository().Ensure(ctx, 1, "u"))
	q := seedQuestion(t, "Sim q?", "misc", "easy")

	for i := 0; i < 50; i++ {
		recordAttempt(t, 1, q.ID, true, 10, noon(0))
	}

	recommendations, err := agg.Recommendations(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recommendations, 1)
	assert.Equal(t, "try_simulation", recommendations[0].Type)

	sessionRepo := database.NewSessionRepository()
	session := &models.StudySession{UserID: 1, SessionType: models.SessionTypeSimulation}
	require.NoError(t, sessionRepo.Start(ctx, session))
	require.NoError(t, sessionRepo.End(ctx, session.PublicID, 50, 45, time.Now().UTC()))

	recommendations, err = agg.Recommendations(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, recommendations)
}
