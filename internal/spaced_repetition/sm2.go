package spaced_repetition

import (
	"context"
	"math"

	"github.com/example/quizbrain/internal/database"
	"github.com/example/quizbrain/pkg/models"
)

// SM-2 parameters.
const (
	// MinEaseFactor is the hard floor for the ease factor. The
	// algorithm never returns a lower value regardless of history.
	MinEaseFactor = 1.3
	// DefaultEaseFactor replaces a malformed stored ease factor
	// before computation.
	DefaultEaseFactor = 2.5
	// SecondInterval is the interval assigned after the first
	// successful recall.
	SecondInterval = 6
	// PassThreshold is the lowest rating counted as successful recall.
	PassThreshold = 3
)

// Performance ratings supplied by this system. The formula accepts the
// full 0-5 scale, but callers here map a correct answer to 5 and an
// incorrect one to 2.
const (
	RatingIncorrect = 2
	RatingCorrect   = 5
)

// RatingForAnswer maps an answer's correctness to its performance
// rating.
func RatingForAnswer(correct bool) int {
	if correct {
		return RatingCorrect
	}
	return RatingIncorrect
}

// CalculateNextReview computes the next review interval in days and
// the new ease factor from the progress state before the attempt and
// the attempt's performance rating. Pure function: the caller persists
// the result. Malformed stored state (missing ease factor or interval)
// is defaulted before computation, never fatal.
func CalculateNextReview(progress models.UserQuestionProgress, rating int) (interval int, easeFactor float64) {
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}

	ease := progress.EaseFactor
	if ease < MinEaseFactor {
		ease = DefaultEaseFactor
	}
	oldInterval := progress.IntervalDays
	if oldInterval < 1 {
		oldInterval = 1
	}

	q := float64(rating)

	if rating < PassThreshold {
		// Failed recall: review tomorrow, penalize the ease factor.
		newEase := ease - 0.8 + 0.28*q - 0.02*q*q
		if newEase < MinEaseFactor {
			newEase = MinEaseFactor
		}
		return 1, newEase
	}

	newEase := ease + (0.1 - (5-q)*(0.08+(5-q)*0.02))
	if newEase < MinEaseFactor {
		newEase = MinEaseFactor
	}

	if progress.TimesShown <= 1 {
		// First successful recall
		return SecondInterval, newEase
	}
	return int(math.Round(float64(oldInterval) * ease)), newEase
}

// Scheduler selects due questions from the progress store. The
// scheduling formula itself is the pure CalculateNextReview above.
type Scheduler struct {
	progress *database.ProgressRepository
}

// NewScheduler creates a scheduler over the given progress repository.
func NewScheduler(progress *database.ProgressRepository) *Scheduler {
	return &Scheduler{progress: progress}
}

// DueQuestions returns up to limit questions whose review date has
// arrived for the user, most overdue first. Questions the user has
// never been shown are not due; initial exposure is a separate
// selection path.
func (s *Scheduler) DueQuestions(ctx context.Context, userID int64, limit int) ([]models.Question, error) {
	return s.progress.DueQuestions(ctx, userID, limit)
}

// DueCount returns how many questions are currently due for the user.
func (s *Scheduler) DueCount(ctx context.Context, userID int64) (int, error) {
	return s.progress.CountDue(ctx, userID)
}
