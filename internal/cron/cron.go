package cron

import (
	"context"
	"sync"

	"github.com/robfig/cron/v3"

	"amsvault/internal/logger"
	"amsvault/internal/notify"
	"amsvault/internal/updater"
)

const DefaultSchedule = "@every 6h"

type Updater interface {
	UpdateAll(ctx context.Context) ([]updater.Result, error)
}

// Recipients maps a store user to the chats signed in as that user.
type Recipients interface {
	ChatIDsForUser(userID int64) []int64
}

// Scheduler manages the release check job.
type Scheduler struct {
	updater    Updater
	notifier   notify.Notifier
	recipients Recipients
	spec       string

	mu      sync.Mutex
	cron    *cron.Cron
	running sync.Mutex
}

// NewScheduler creates a new scheduler. An empty spec uses DefaultSchedule.
func NewScheduler(u Updater, n notify.Notifier, r Recipients, spec string) *Scheduler {
	if spec == "" {
		spec = DefaultSchedule
	}
	return &Scheduler{
		updater:    u,
		notifier:   n,
		recipients: r,
		spec:       spec,
	}
}

// Start runs a check immediately, then on the schedule.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := cron.New()
	if _, err := c.AddFunc(s.spec, func() { s.performUpdate(ctx) }); err != nil {
		logger.LogMsg(logger.LogError, "Failed to set up cron job: %v", err)
		return err
	}
	logger.LogMsg(logger.LogInfo, "Scheduler started (runs immediately, then %s)", s.spec)
	go s.performUpdate(ctx)
	c.Start()
	s.cron = c
	return nil
}

// Stop halts the schedule and waits for a running check to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
	s.running.Lock()
	defer s.running.Unlock()
}

func (s *Scheduler) performUpdate(ctx context.Context) {
	// Overlapping runs are skipped rather than queued.
	if !s.running.TryLock() {
		logger.LogMsg(logger.LogWarning, "Release check still running, skipping this tick")
		return
	}
	defer s.running.Unlock()

	logger.LogMsg(logger.LogInfo, "Starting release check")
	results, err := s.updater.UpdateAll(ctx)
	if err != nil {
		logger.LogMsg(logger.LogError, "Error listing tracked stories: %v", err)
	}

	news := 0
	for _, r := range results {
		if r.Err != nil {
			logger.LogMsg(logger.LogWarning, "Release check failed for story %d (%s): %v", r.StoryID, r.Title, r.Err)
			continue
		}
		if !r.HasNews() {
			continue
		}
		news++
		s.notifyOwners(r)
	}
	logger.LogMsg(logger.LogInfo, "Release check completed (%d stories, %d with news)", len(results), news)
}

func (s *Scheduler) notifyOwners(r updater.Result) {
	if s.notifier == nil || s.recipients == nil {
		return
	}
	message := updater.FormatReleaseMessageHTML(r)
	for _, userID := range r.Owners {
		for _, chatID := range s.recipients.ChatIDsForUser(userID) {
			if err := s.notifier.SendHTML(chatID, message); err != nil {
				logger.LogMsg(logger.LogError, "Error sending release notification to chat ID %d: %v", chatID, err)
			}
		}
	}
}
