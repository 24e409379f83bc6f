// Package engine is the facade collaborators call: it wires the
// repositories, the scheduler, the duplicate detector, the achievement
// engine and the stats aggregator together and exposes the
// learning-progress operations as plain function calls.
package engine

import (
	"context"
	"time"

	"github.com/example/quizbrain/internal/achievements"
	"github.com/example/quizbrain/internal/database"
	"github.com/example/quizbrain/internal/dedup"
	"github.com/example/quizbrain/internal/spaced_repetition"
	"github.com/example/quizbrain/internal/stats"
	"github.com/example/quizbrain/pkg/models"
	"github.com/jmoiron/sqlx"
)

// Engine owns the learning-progress components. All durable state
// lives in the store; the engine reads, computes, and writes back
// within the scope of one call.
type Engine struct {
	users     *database.UserRepository
	questions *database.QuestionRepository
	progress  *database.ProgressRepository
	attempts  *database.AttemptRepository
	sessions  *database.SessionRepository

	scheduler    *spaced_repetition.Scheduler
	detector     *dedup.Detector
	achievements *achievements.Engine
	aggregator   *stats.Aggregator
}

// New wires an engine from the given settings.
func New(achievementSettings achievements.Settings, statsSettings stats.Settings) *Engine {
	users := database.NewUserRepository()
	questions := database.NewQuestionRepository()
	progress := database.NewProgressRepository()
	attempts := database.NewAttemptRepository()
	sessions := database.NewSessionRepository()
	unlocks := database.NewAchievementRepository()

	return &Engine{
		users:        users,
		questions:    questions,
		progress:     progress,
		attempts:     attempts,
		sessions:     sessions,
		scheduler:    spaced_repetition.NewScheduler(progress),
		detector:     dedup.NewDetector(questions),
		achievements: achievements.NewEngine(achievementSettings, attempts, unlocks),
		aggregator:   stats.NewAggregator(statsSettings, questions, progress, attempts, sessions),
	}
}

// AttemptOutcome reports what one recorded attempt changed.
type AttemptOutcome struct {
	IntervalDays    int      `json:"interval_days"`
	EaseFactor      float64  `json:"ease_factor"`
	NewAchievements []string `json:"new_achievements"`
}

// RecordAttempt records one answered question: the progress row is
// upserted, the attempt appended, the next review computed and
// persisted — all in one transaction, with the progress row locked so
// concurrent attempts for the same (user, question) pair cannot lose a
// scheduling update. The achievement rules are then checked with the
// answer's latency as context.
func (e *Engine) RecordAttempt(ctx context.Context, userID, questionID int64, isCorrect bool, timeTakenSeconds float64) (*AttemptOutcome, error) {
	now := time.Now().UTC()

	var interval int
	var ease float64
	err := database.InTx(ctx, func(tx *sqlx.Tx) error {
		// Scheduling works off the state before this attempt; a missing
		// row means the question was never shown.
		before, err := e.progress.GetForUpdateTx(ctx, tx, userID, questionID)
		if err != nil {
			if err != database.ErrNotFound {
				return err
			}
			before = &models.UserQuestionProgress{}
		}

		if err := e.progress.ApplyAttemptTx(ctx, tx, userID, questionID, isCorrect, now); err != nil {
			return err
		}
		if err := e.attempts.CreateTx(ctx, tx, &models.QuestionAttempt{
			UserID:           userID,
			QuestionID:       questionID,
			IsCorrect:        isCorrect,
			TimeTakenSeconds: timeTakenSeconds,
			CreatedAt:        now,
		}); err != nil {
			return err
		}

		rating := spaced_repetition.RatingForAnswer(isCorrect)
		interval, ease = spaced_repetition.CalculateNextReview(*before, rating)
		return e.progress.UpdateSchedulingTx(ctx, tx, userID, questionID, interval, ease)
	})
	if err != nil {
		return nil, err
	}

	// The latency hint only feeds correct answers; a fast wrong answer
	// is not a quick think.
	actx := achievements.Context{}
	if isCorrect {
		actx.AnswerSeconds = timeTakenSeconds
	}
	newlyUnlocked, err := e.achievements.Check(ctx, userID, actx)
	if err != nil {
		return nil, err
	}

	return &AttemptOutcome{
		IntervalDays:    interval,
		EaseFactor:      ease,
		NewAchievements: newlyUnlocked,
	}, nil
}

// EnsureUser creates the identity row a user's history hangs off.
func (e *Engine) EnsureUser(ctx context.Context, userID int64, displayName string) error {
	return e.users.Ensure(ctx, userID, displayName)
}

// StartSession opens a study session of the given type.
func (e *Engine) StartSession(ctx context.Context, userID int64, sessionType string) (*models.StudySession, error) {
	session := &models.StudySession{UserID: userID, SessionType: sessionType}
	if err := e.sessions.Start(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// EndSession closes a session with its answer counts. A simulation
// finished with every answer correct feeds the perfect-simulation
// achievement check.
func (e *Engine) EndSession(ctx context.Context, publicID string, answered, correct int) ([]string, error) {
	session, err := e.sessions.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if err := e.sessions.End(ctx, publicID, answered, correct, time.Now().UTC()); err != nil {
		return nil, err
	}

	if session.SessionType == models.SessionTypeSimulation && answered > 0 && answered == correct {
		return e.achievements.Check(ctx, session.UserID, achievements.Context{SimulationPerfect: true})
	}
	return []string{}, nil
}

// AddQuestion validates and inserts one question. Duplicate normalized
// text is rejected with a ConflictError referencing the original.
func (e *Engine) AddQuestion(ctx context.Context, q *models.Question) error {
	return e.questions.Create(ctx, q)
}

// UpdateQuestion modifies an existing question, re-checking uniqueness
// against the rest of the bank.
func (e *Engine) UpdateQuestion(ctx context.Context, q *models.Question) error {
	return e.questions.Update(ctx, q)
}

// BulkAddQuestions inserts a batch, reporting per-item duplicates and
// failures without aborting the batch.
func (e *Engine) BulkAddQuestions(ctx context.Context, questions []models.Question) *models.BulkResult {
	return e.questions.BulkCreate(ctx, questions)
}

// FindDuplicate reports the existing question matching the candidate
// text, if any.
func (e *Engine) FindDuplicate(ctx context.Context, candidateText string, excludeID int64) (*models.Question, error) {
	return e.detector.FindDuplicate(ctx, candidateText, excludeID)
}

// SimilarQuestions runs the offline pairwise similarity scan.
func (e *Engine) SimilarQuestions(ctx context.Context, threshold float64) ([]dedup.SimilarPair, error) {
	return e.detector.SimilarPairs(ctx, threshold)
}

// DueQuestions returns the user's due questions, most overdue first.
func (e *Engine) DueQuestions(ctx context.Context, userID int64, limit int) ([]models.Question, error) {
	return e.scheduler.DueQuestions(ctx, userID, limit)
}

// LearningAnalytics returns the user's full analytics view.
func (e *Engine) LearningAnalytics(ctx context.Context, userID int64) (*models.LearningAnalytics, error) {
	return e.aggregator.LearningAnalytics(ctx, userID)
}

// Streak returns the user's practice streaks.
func (e *Engine) Streak(ctx context.Context, userID int64) (*models.StreakInfo, error) {
	return e.aggregator.Streak(ctx, userID)
}

// Recommendations returns the user's ranked study suggestions.
func (e *Engine) Recommendations(ctx context.Context, userID int64) ([]models.Recommendation, error) {
	return e.aggregator.Recommendations(ctx, userID)
}

// UnlockedAchievements returns the user's unlocks in unlock order.
func (e *Engine) UnlockedAchievements(ctx context.Context, userID int64) ([]models.UnlockedAchievement, error) {
	return e.achievements.Unlocked(ctx, userID)
}

// AchievementProgress reports catalog completion for the user.
func (e *Engine) AchievementProgress(ctx context.Context, userID int64) (*models.AchievementProgress, error) {
	return e.achievements.Progress(ctx, userID)
}

// AchievementCatalog returns the static catalog.
func (e *Engine) AchievementCatalog() []models.Achievement {
	return e.achievements.Catalog()
}
