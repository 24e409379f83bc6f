package achievements

import (
	"fmt"
	"strings"
)

// Settings collects every achievement threshold. Exact values are part
// of the engine's contract; they are carried in an explicit struct so
// nothing reads process-wide globals.
type Settings struct {
	// VolumeTiers are the total-attempt counts that unlock the volume
	// achievements.
	VolumeTiers []int
	// StreakTiers are the consecutive-practice-day counts that unlock
	// the streak achievements.
	StreakTiers []int
	// RapidFireCount attempts, each under RapidFireMaxSeconds, unlock
	// rapid fire.
	RapidFireCount      int
	RapidFireMaxSeconds float64
	// PerfectRunLength most recent attempts must all be correct for a
	// perfect run.
	PerfectRunLength int
	// Category mastery needs MasteryMinAttempts attempts in the
	// category at a success rate of at least MasteryMinRate.
	MasteryMinAttempts int
	MasteryMinRate     float64
	// MasteryCategories are the category tags that get a mastery
	// achievement. Typically loaded from the question bank at startup.
	MasteryCategories []string
	// EarlyBirdBeforeHour and NightOwlFromHour bound the time-of-day
	// achievements (hour of the stored attempt timestamp).
	EarlyBirdBeforeHour int
	NightOwlFromHour    int
	// FastAnswerMaxSeconds gates the fast-answer achievement on the
	// triggering answer's latency.
	FastAnswerMaxSeconds float64
	// SimulationAttempts is the total-attempt count standing in for
	// true simulation completion.
	SimulationAttempts int
}

// DefaultSettings returns the catalog thresholds.
func DefaultSettings() Settings {
	return Settings{
		VolumeTiers:          []int{100, 500, 1000},
		StreakTiers:          []int{3, 7, 30},
		RapidFireCount:       10,
		RapidFireMaxSeconds:  10,
		PerfectRunLength:     20,
		MasteryMinAttempts:   20,
		MasteryMinRate:       0.90,
		EarlyBirdBeforeHour:  8,
		NightOwlFromHour:     22,
		FastAnswerMaxSeconds: 5,
		SimulationAttempts:   50,
	}
}

// Achievement identifiers. Volume, streak and mastery ids are derived
// from their thresholds: attempts_100, streak_7, mastery_anatomy.
const (
	IDFirstAttempt      = "first_attempt"
	IDRapidFire         = "rapid_fire"
	IDPerfectRun        = "perfect_run"
	IDEarlyBird         = "early_bird"
	IDNightOwl          = "night_owl"
	IDFastAnswer        = "fast_answer"
	IDPerfectSimulation = "perfect_simulation"
	IDSimulationDone    = "simulation_complete"
)

// VolumeID returns the id of the volume achievement for a tier.
func VolumeID(tier int) string {
	return fmt.Sprintf("attempts_%d", tier)
}

// StreakID returns the id of the streak achievement for a tier.
func StreakID(tier int) string {
	return fmt.Sprintf("streak_%d", tier)
}

// MasteryID returns the id of the mastery achievement for a category.
func MasteryID(category string) string {
	slug := strings.ToLower(strings.Join(strings.Fields(category), "_"))
	return "mastery_" + slug
}
