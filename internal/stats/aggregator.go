// Package stats aggregates per-user learning analytics and derives
// ranked study recommendations from the attempt history.
package stats

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"github.com/example/quizbrain/internal/database"
	"github.com/example/quizbrain/pkg/models"
)

// Settings collects the recommendation and windowing thresholds.
type Settings struct {
	// WeakCategoryMaxRate is the success rate below which a category
	// is considered weak.
	WeakCategoryMaxRate float64
	// WeakCategoryMinAttempts attempts are required before a category
	// can be flagged weak.
	WeakCategoryMinAttempts int
	// SimulationMinAnswers gates the "try a simulation"
	// recommendation.
	SimulationMinAnswers int
	// ActivityWindowDays is the daily-progress window.
	ActivityWindowDays int
}

// DefaultSettings returns the stock thresholds.
func DefaultSettings() Settings {
	return Settings{
		WeakCategoryMaxRate:     0.70,
		WeakCategoryMinAttempts: 5,
		SimulationMinAnswers:    50,
		ActivityWindowDays:      30,
	}
}

// Aggregator computes analytics over the progress store. Every
// sub-aggregate degrades independently to an empty or zero result when
// its source rows are absent or its query fails.
type Aggregator struct {
	settings  Settings
	questions *database.QuestionRepository
	progress  *database.ProgressRepository
	attempts  *database.AttemptRepository
	sessions  *database.SessionRepository
}

// NewAggregator creates an aggregator over the given repositories.
func NewAggregator(settings Settings, questions *database.QuestionRepository, progress *database.ProgressRepository, attempts *database.AttemptRepository, sessions *database.SessionRepository) *Aggregator {
	return &Aggregator{
		settings:  settings,
		questions: questions,
		progress:  progress,
		attempts:  attempts,
		sessions:  sessions,
	}
}

// LearningAnalytics returns the full analytics view for a user. A
// failing sub-aggregate is logged and reported empty; it never fails
// the whole call.
func (a *Aggregator) LearningAnalytics(ctx context.Context, userID int64) (*models.LearningAnalytics, error) {
	analytics := &models.LearningAnalytics{
		Categories:     []models.CategoryStats{},
		Difficulties:   []models.DifficultyStats{},
		WeeklyProgress: []models.DailyProgress{},
	}

	totalAttempts, correct, avgTime, err := a.attempts.Summary(ctx, userID)
	if err != nil {
		log.Printf("analytics: attempt summary failed for user %d: %v", userID, err)
	} else {
		analytics.General.TotalAttempts = totalAttempts
		analytics.General.CorrectAttempts = correct
		if totalAttempts > 0 {
			analytics.General.SuccessRate = float64(correct) / float64(totalAttempts)
		}
		analytics.General.AvgTimeSeconds = math.Round(avgTime*10) / 10
	}

	if answered, err := a.progress.CountByUser(ctx, userID); err != nil {
		log.Printf("analytics: answered count failed for user %d: %v", userID, err)
	} else {
		analytics.General.AnsweredQuestions = answered
	}

	if total, err := a.questions.Count(ctx); err != nil {
		log.Printf("analytics: question count failed: %v", err)
	} else {
		analytics.General.TotalQuestions = total
	}

	if categories, err := a.attempts.CategoryAccuracy(ctx, userID); err != nil {
		log.Printf("analytics: category breakdown failed for user %d: %v", userID, err)
	} else if categories != nil {
		analytics.Categories = categories
	}

	if difficulties, err := a.attempts.DifficultyAccuracy(ctx, userID); err != nil {
		log.Printf("analytics: difficulty breakdown failed for user %d: %v", userID, err)
	} else if difficulties != nil {
		analytics.Difficulties = difficulties
	}

	if daily, err := a.attempts.DailyActivity(ctx, userID, a.settings.ActivityWindowDays); err != nil {
		log.Printf("analytics: daily activity failed for user %d: %v", userID, err)
	} else if daily != nil {
		analytics.WeeklyProgress = daily
	}

	return analytics, nil
}

// Streak returns the user's current and longest consecutive-day
// practice streaks. The current streak is zero unless the most recent
// practice date is today or yesterday.
func (a *Aggregator) Streak(ctx context.Context, userID int64) (*models.StreakInfo, error) {
	dates, err := a.attempts.DistinctPracticeDates(ctx, userID)
	if err != nil {
		return nil, err
	}
	info := &models.StreakInfo{}
	if len(dates) == 0 {
		return info, nil
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	yesterday := today.AddDate(0, 0, -1)

	// Current streak counts backward from today or yesterday while
	// dates stay consecutive.
	if dates[0].Equal(today) || dates[0].Equal(yesterday) {
		info.CurrentStreak = 1
		for i := 1; i < len(dates); i++ {
			if dates[i-1].Sub(dates[i]) != 24*time.Hour {
				break
			}
			info.CurrentStreak++
		}
	}

	// Longest streak is a single scan over the descending date list,
	// resetting at every gap.
	run := 1
	info.LongestStreak = 1
	for i := 1; i < len(dates); i++ {
		if dates[i-1].Sub(dates[i]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > info.LongestStreak {
			info.LongestStreak = run
		}
	}
	return info, nil
}

// Recommendations derives the user's ranked study suggestions: at most
// one weak-category focus and one simulation prompt, sorted by
// priority with insertion order preserved on ties.
func (a *Aggregator) Recommendations(ctx context.Context, userID int64) ([]models.Recommendation, error) {
	recommendations := make([]models.Recommendation, 0)

	categories, err := a.attempts.CategoryAccuracy(ctx, userID)
	if err != nil {
		log.Printf("recommendations: category breakdown failed for user %d: %v", userID, err)
	} else {
		var weakest *models.CategoryStats
		for i := range categories {
			c := &categories[i]
			if c.Attempts < a.settings.WeakCategoryMinAttempts {
				continue
			}
			if c.SuccessRate >= a.settings.WeakCategoryMaxRate {
				continue
			}
			if weakest == nil || c.SuccessRate < weakest.SuccessRate {
				weakest = c
			}
		}
		if weakest != nil {
			recommendations = append(recommendations, models.Recommendation{
				Type:     "focus_category",
				Category: weakest.Category,
				Message: fmt.Sprintf("Your success rate in %s is %.0f%%. Focus your next sessions there.",
					weakest.Category, weakest.SuccessRate*100),
				Priority: models.PriorityHigh,
			})
		}
	}

	totalAttempts, _, _, err := a.attempts.Summary(ctx, userID)
	if err != nil {
		log.Printf("recommendations: attempt summary failed for user %d: %v", userID, err)
	} else if totalAttempts >= a.settings.SimulationMinAnswers {
		simulations, err := a.sessions.CountByType(ctx, userID, models.SessionTypeSimulation)
		if err != nil {
			log.Printf("recommendations: session count failed for user %d: %v", userID, err)
		} else if simulations == 0 {
			recommendations = append(recommendations, models.Recommendation{
				Type:     "try_simulation",
				Message:  "You've answered enough questions to try a full simulation.",
				Priority: models.PriorityMedium,
			})
		}
	}

	rank := map[string]int{models.PriorityHigh: 0, models.PriorityMedium: 1, models.PriorityLow: 2}
	sort.SliceStable(recommendations, func(i, j int) bool {
		return rank[recommendations[i].Priority] < rank[recommendations[j].Priority]
	})
	return recommendations, nil
}
