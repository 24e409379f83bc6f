package spaced_repetition

import (
	"testing"

	"github.com/example/quizbrain/pkg/models"
)

func TestCalculateNextReview_FirstSuccess(t *testing.T) {
	progress := models.UserQuestionProgress{TimesShown: 0, EaseFactor: 2.5, IntervalDays: 1}
	interval, _ := CalculateNextReview(progress, RatingCorrect)
	if interval != SecondInterval {
		t.Errorf("interval = %d, want %d", interval, SecondInterval)
	}
}

func TestCalculateNextReview_SecondSuccess(t *testing.T) {
	// Shown exactly once before: still the fixed second interval.
	progress := models.UserQuestionProgress{TimesShown: 1, EaseFactor: 2.5, IntervalDays: 6}
	interval, _ := CalculateNextReview(progress, RatingCorrect)
	if interval != SecondInterval {
		t.Errorf("interval = %d, want %d", interval, SecondInterval)
	}
}

func TestCalculateNextReview_IntervalGrowth(t *testing.T) {
	progress := models.UserQuestionProgress{TimesShown: 2, EaseFactor: 2.5, IntervalDays: 6}
	interval, ease := CalculateNextReview(progress, RatingCorrect)
	if interval != 15 {
		t.Errorf("interval = %d, want 15 (round(6*2.5))", interval)
	}
	if ease < 2.59 || ease > 2.61 {
		t.Errorf("ease = %f, want 2.6", ease)
	}
}

func TestCalculateNextReview_FailedRecall(t *testing.T) {
	for rating := 0; rating < PassThreshold; rating++ {
		progress := models.UserQuestionProgress{TimesShown: 8, EaseFactor: 2.5, IntervalDays: 42}
		interval, _ := CalculateNextReview(progress, rating)
		if interval != 1 {
			t.Errorf("rating %d: interval = %d, want 1", rating, interval)
		}
	}
}

func TestCalculateNextReview_FailPenalty(t *testing.T) {
	progress := models.UserQuestionProgress{TimesShown: 3, EaseFactor: 2.5, IntervalDays: 6}
	_, ease := CalculateNextReview(progress, RatingIncorrect)
	// 2.5 - 0.8 + 0.28*2 - 0.02*4 = 2.18
	if ease < 2.179 || ease > 2.181 {
		t.Errorf("ease = %f, want 2.18", ease)
	}
}

func TestCalculateNextReview_EaseFloor(t *testing.T) {
	for rating := 0; rating <= 5; rating++ {
		progress := models.UserQuestionProgress{TimesShown: 5, EaseFactor: 1.3, IntervalDays: 2}
		_, ease := CalculateNextReview(progress, rating)
		if ease < MinEaseFactor {
			t.Errorf("rating %d: ease = %f, below floor %f", rating, ease, MinEaseFactor)
		}
	}
}

func TestCalculateNextReview_MalformedDefaults(t *testing.T) {
	// A stored row with a missing ease factor or interval is defaulted
	// before computation (ease 2.5, interval 1), never fatal.
	progress := models.UserQuestionProgress{TimesShown: 3, EaseFactor: 0, IntervalDays: 0}
	interval, ease := CalculateNextReview(progress, RatingCorrect)
	if interval != 3 {
		t.Errorf("interval = %d, want 3 (round(1*2.5))", interval)
	}
	if ease < 2.59 || ease > 2.61 {
		t.Errorf("ease = %f, want 2.6", ease)
	}
}

func TestCalculateNextReview_RatingClamped(t *testing.T) {
	progress := models.UserQuestionProgress{TimesShown: 2, EaseFactor: 2.5, IntervalDays: 6}
	intervalHigh, _ := CalculateNextReview(progress, 9)
	intervalFive, _ := CalculateNextReview(progress, 5)
	if intervalHigh != intervalFive {
		t.Errorf("rating 9 interval = %d, want same as rating 5 (%d)", intervalHigh, intervalFive)
	}
	intervalLow, _ := CalculateNextReview(progress, -2)
	if intervalLow != 1 {
		t.Errorf("rating -2 interval = %d, want 1", intervalLow)
	}
}

func TestRatingForAnswer(t *testing.T) {
	if RatingForAnswer(true) != RatingCorrect {
		t.Errorf("RatingForAnswer(true) = %d, want %d", RatingForAnswer(true), RatingCorrect)
	}
	if RatingForAnswer(false) != RatingIncorrect {
		t.Errorf("RatingForAnswer(false) = %d, want %d", RatingForAnswer(false), RatingIncorrect)
	}
}
