// Package achievements evaluates a fixed rule set against a user's
// behavioral history and unlocks achievements. Unlocks are monotonic,
// one-way and idempotent.
package achievements

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/example/quizbrain/internal/database"
	"github.com/example/quizbrain/pkg/models"
)

// Context carries the contextual hints for one achievement check.
// Context-gated rules are only evaluated when their triggering hint is
// present.
type Context struct {
	// AnswerSeconds is the time taken by the triggering answer;
	// zero or negative when no single answer triggered the check.
	AnswerSeconds float64
	// SimulationPerfect is set when a simulation session just ended
	// with every answer correct.
	SimulationPerfect bool
}

// rule is one catalog entry's evaluation logic: its id, an optional
// context gate, and a predicate over current aggregate state.
type rule struct {
	id        string
	gate      func(Context) bool
	predicate func(ctx context.Context, userID int64) (bool, error)
}

// Engine evaluates the rule table. Build it once at startup; the
// catalog is read-only after construction.
type Engine struct {
	settings Settings
	catalog  []models.Achievement
	rules    []rule
	attempts *database.AttemptRepository
	unlocks  *database.AchievementRepository
}

// NewEngine builds the achievement catalog and rule table from the
// given settings.
func NewEngine(settings Settings, attempts *database.AttemptRepository, unlocks *database.AchievementRepository) *Engine {
	e := &Engine{
		settings: settings,
		attempts: attempts,
		unlocks:  unlocks,
	}
	e.buildCatalog()
	return e
}

func (e *Engine) buildCatalog() {
	s := e.settings

	add := func(a models.Achievement, gate func(Context) bool, predicate func(ctx context.Context, userID int64) (bool, error)) {
		e.catalog = append(e.catalog, a)
		e.rules = append(e.rules, rule{id: a.ID, gate: gate, predicate: predicate})
	}

	add(models.Achievement{
		ID: IDFirstAttempt, Name: "First Steps",
		Description: "Answer your first question", Icon: "🎯",
	}, nil, func(ctx context.Context, userID int64) (bool, error) {
		total, _, _, err := e.attempts.Summary(ctx, userID)
		return total >= 1, err
	})

	add(models.Achievement{
		ID: IDRapidFire, Name: "Rapid Fire",
		Description: fmt.Sprintf("Answer %d questions in under %.0f seconds each", s.RapidFireCount, s.RapidFireMaxSeconds),
		Icon:        "⚡",
	}, nil, func(ctx context.Context, userID int64) (bool, error) {
		count, err := e.attempts.CountFast(ctx, userID, s.RapidFireMaxSeconds)
		return count >= s.RapidFireCount, err
	})

	add(models.Achievement{
		ID: IDPerfectRun, Name: "Perfect Run",
		Description: fmt.Sprintf("Answer %d questions in a row correctly", s.PerfectRunLength),
		Icon:        "💯",
	}, nil, func(ctx context.Context, userID int64) (bool, error) {
		results, err := e.attempts.RecentResults(ctx, userID, s.PerfectRunLength)
		if err != nil {
			return false, err
		}
		if len(results) < s.PerfectRunLength {
			return false, nil
		}
		for _, correct := range results {
			if !correct {
				return false, nil
			}
		}
		return true, nil
	})

	for _, tier := range s.VolumeTiers {
		tier := tier
		add(models.Achievement{
			ID: VolumeID(tier), Name: fmt.Sprintf("%d Questions", tier),
			Description: fmt.Sprintf("Answer %d questions", tier), Icon: "📚",
		}, nil, func(ctx context.Context, userID int64) (bool, error) {
			total, _, _, err := e.attempts.Summary(ctx, userID)
			return total >= tier, err
		})
	}

	for _, tier := range s.StreakTiers {
		tier := tier
		add(models.Achievement{
			ID: StreakID(tier), Name: fmt.Sprintf("%d-Day Streak", tier),
			Description: fmt.Sprintf("Practice on %d consecutive days", tier), Icon: "🔥",
		}, nil, func(ctx context.Context, userID int64) (bool, error) {
			dates, err := e.attempts.DistinctPracticeDates(ctx, userID)
			if err != nil {
				return false, err
			}
			return leadingConsecutiveRun(dates) >= tier, nil
		})
	}

	for _, category := range s.MasteryCategories {
		category := category
		add(models.Achievement{
			ID: MasteryID(category), Name: category + " Master",
			Description: fmt.Sprintf("Answer %d %s questions at %.0f%% accuracy",
				s.MasteryMinAttempts, category, s.MasteryMinRate*100),
			Icon: "🏆",
		}, nil, func(ctx context.Context, userID int64) (bool, error) {
			attempts, correct, err := e.attempts.AccuracyForCategory(ctx, userID, category)
			if err != nil {
				return false, err
			}
			return attempts >= s.MasteryMinAttempts &&
				float64(correct)/float64(attempts) >= s.MasteryMinRate, nil
		})
	}

	add(models.Achievement{
		ID: IDEarlyBird, Name: "Early Bird",
		Description: fmt.Sprintf("Practice before %d:00", s.EarlyBirdBeforeHour), Icon: "🌅",
	}, nil, func(ctx context.Context, userID int64) (bool, error) {
		count, err := e.attempts.CountInHours(ctx, userID, 0, s.EarlyBirdBeforeHour)
		return count > 0, err
	})

	add(models.Achievement{
		ID: IDNightOwl, Name: "Night Owl",
		Description: fmt.Sprintf("Practice after %d:00", s.NightOwlFromHour), Icon: "🦉",
	}, nil, func(ctx context.Context, userID int64) (bool, error) {
		count, err := e.attempts.CountInHours(ctx, userID, s.NightOwlFromHour, 24)
		return count > 0, err
	})

	add(models.Achievement{
		ID: IDSimulationDone, Name: "Simulation Ready",
		Description: fmt.Sprintf("Answer %d questions", s.SimulationAttempts), Icon: "🎓",
	}, nil, func(ctx context.Context, userID int64) (bool, error) {
		total, _, _, err := e.attempts.Summary(ctx, userID)
		return total >= s.SimulationAttempts, err
	})

	// Context-gated: the hint itself is the evidence.
	add(models.Achievement{
		ID: IDFastAnswer, Name: "Quick Thinker",
		Description: fmt.Sprintf("Answer correctly in under %.0f seconds", s.FastAnswerMaxSeconds),
		Icon:        "🏎️",
	}, func(actx Context) bool {
		return actx.AnswerSeconds > 0 && actx.AnswerSeconds < s.FastAnswerMaxSeconds
	}, func(ctx context.Context, userID int64) (bool, error) {
		return true, nil
	})

	add(models.Achievement{
		ID: IDPerfectSimulation, Name: "Flawless Simulation",
		Description: "Finish a simulation with every answer correct", Icon: "🌟",
	}, func(actx Context) bool {
		return actx.SimulationPerfect
	}, func(ctx context.Context, userID int64) (bool, error) {
		return true, nil
	})
}

// Check evaluates every candidate rule for the user and returns the
// ids of newly unlocked achievements. Already-unlocked achievements
// are skipped (re-checking is a no-op); a failing rule is logged and
// does not block evaluation of the others.
func (e *Engine) Check(ctx context.Context, userID int64, actx Context) ([]string, error) {
	unlocked, err := e.unlocks.UnlockedIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	newlyUnlocked := make([]string, 0)

	for _, r := range e.rules {
		if unlocked[r.id] {
			continue
		}
		if r.gate != nil && !r.gate(actx) {
			continue
		}

		ok, err := r.predicate(ctx, userID)
		if err != nil {
			log.Printf("achievement rule %s failed for user %d: %v", r.id, userID, err)
			continue
		}
		if !ok {
			continue
		}

		first, err := e.unlocks.Unlock(ctx, userID, r.id, now)
		if err != nil {
			log.Printf("failed to unlock %s for user %d: %v", r.id, userID, err)
			continue
		}
		if first {
			newlyUnlocked = append(newlyUnlocked, r.id)
		}
	}
	return newlyUnlocked, nil
}

// Catalog returns the static achievement catalog.
func (e *Engine) Catalog() []models.Achievement {
	return e.catalog
}

// Unlocked returns the user's unlocked achievements in unlock order.
func (e *Engine) Unlocked(ctx context.Context, userID int64) ([]models.UnlockedAchievement, error) {
	return e.unlocks.ListByUser(ctx, userID)
}

// Progress reports how much of the catalog the user has unlocked.
func (e *Engine) Progress(ctx context.Context, userID int64) (*models.AchievementProgress, error) {
	unlocked, err := e.unlocks.UnlockedIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	progress := &models.AchievementProgress{
		Total:    len(e.catalog),
		Unlocked: len(unlocked),
	}
	if progress.Total > 0 {
		progress.Percentage = float64(progress.Unlocked) / float64(progress.Total) * 100
	}
	return progress, nil
}

// leadingConsecutiveRun counts how many of the most recent distinct
// practice dates are consecutive, starting from the most recent one.
// Unlike the current-streak computation it is not anchored to today.
func leadingConsecutiveRun(dates []time.Time) int {
	if len(dates) == 0 {
		return 0
	}
	run := 1
	for i := 1; i < len(dates); i++ {
		if dates[i-1].Sub(dates[i]) != 24*time.Hour {
			break
		}
		run++
	}
	return run
}
