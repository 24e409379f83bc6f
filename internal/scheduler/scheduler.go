// Package scheduler runs the engine's background maintenance: hourly
// due-review reminders and the nightly duplicate-similarity scan. The
// delivery of reminders and reports stays with the caller; the engine
// does no transport of its own.
package scheduler

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/example/quizbrain/internal/database"
	"github.com/example/quizbrain/internal/dedup"
	"github.com/go-co-op/gocron"
)

// Default settings for reminder delivery and the similarity scan.
const (
	DefaultReminderStartHour   = 8
	DefaultReminderEndHour     = 22
	DefaultSimilarityThreshold = 0.85
	similarityScanTime         = "03:30"
)

// Notifier delivers a due-review reminder to a user.
type Notifier interface {
	SendDueReminder(userID int64, dueCount int) error
}

// Reporter receives the flagged pairs from the nightly similarity
// scan.
type Reporter interface {
	ReportSimilarPairs(pairs []dedup.SimilarPair)
}

// Scheduler manages scheduled maintenance tasks for the engine.
type Scheduler struct {
	scheduler *gocron.Scheduler
	notifier  Notifier
	reporter  Reporter
	detector  *dedup.Detector
	progress  *database.ProgressRepository
	users     *database.UserRepository
	threshold float64
}

// New creates a scheduler instance. notifier and reporter may be nil;
// the corresponding task then only logs.
func New(notifier Notifier, reporter Reporter, detector *dedup.Detector) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		notifier:  notifier,
		reporter:  reporter,
		detector:  detector,
		progress:  database.NewProgressRepository(),
		users:     database.NewUserRepository(),
		threshold: DefaultSimilarityThreshold,
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() {
	s.scheduler.Every(1).Hour().Do(s.checkAndSendReminders)
	s.scheduler.Every(1).Day().At(similarityScanTime).Do(s.runSimilarityScan)
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// checkAndSendReminders notifies every user who has due reviews,
// within the configured reminder hours.
func (s *Scheduler) checkAndSendReminders() {
	currentHour := time.Now().Hour()
	startHour := hourFromEnv("REMINDER_START_HOUR", DefaultReminderStartHour)
	endHour := hourFromEnv("REMINDER_END_HOUR", DefaultReminderEndHour)

	if currentHour < startHour || currentHour > endHour {
		log.Printf("Current hour %d is outside reminder hours (%d-%d), skipping reminders",
			currentHour, startHour, endHour)
		return
	}

	ctx := context.Background()
	users, err := s.users.GetAll(ctx)
	if err != nil {
		log.Printf("Error getting users for reminders: %v", err)
		return
	}

	for _, user := range users {
		dueCount, err := s.progress.CountDue(ctx, user.ID)
		if err != nil {
			log.Printf("Error counting due questions for user %d: %v", user.ID, err)
			continue
		}
		if dueCount == 0 {
			continue
		}
		if s.notifier == nil {
			log.Printf("User %d has %d questions due for review", user.ID, dueCount)
			continue
		}
		if err := s.notifier.SendDueReminder(user.ID, dueCount); err != nil {
			log.Printf("Error sending reminder to user %d: %v", user.ID, err)
		}
	}
}

// runSimilarityScan runs the quadratic near-duplicate pass over the
// whole bank. It is scheduled at night because its cost grows with the
// square of the bank size.
func (s *Scheduler) runSimilarityScan() {
	pairs, err := s.detector.SimilarPairs(context.Background(), s.threshold)
	if err != nil {
		log.Printf("Error running similarity scan: %v", err)
		return
	}
	log.Printf("Similarity scan flagged %d question pairs at threshold %.2f", len(pairs), s.threshold)
	if s.reporter != nil {
		s.reporter.ReportSimilarPairs(pairs)
	}
}

// RunManualCheck forces a due-review reminder for a specific user.
func (s *Scheduler) RunManualCheck(userID int64) error {
	dueCount, err := s.progress.CountDue(context.Background(), userID)
	if err != nil {
		return err
	}
	if dueCount > 0 && s.notifier != nil {
		return s.notifier.SendDueReminder(userID, dueCount)
	}
	return nil
}

func hourFromEnv(key string, fallback int) int {
	if raw := os.Getenv(key); raw != "" {
		if h, err := strconv.Atoi(raw); err == nil && h >= 0 && h <= 23 {
			return h
		}
	}
	return fallback
}
