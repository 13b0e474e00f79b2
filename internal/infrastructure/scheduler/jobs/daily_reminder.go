// Package jobs contains implementations of scheduled jobs for the EcoHabit bot.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/checkin"
	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// DAILY REMINDER JOB
// ══════════════════════════════════════════════════════════════════════════════

// PromptSender delivers reminder prompts to a single user.
// Implemented by the Telegram interface layer.
type PromptSender interface {
	// SendClassPrompt asks a user who has not picked a class to pick one.
	SendClassPrompt(ctx context.Context, id user.ID) error

	// SendCheckinPrompt sends the evening check-in sheet with the marks
	// the user already has for the given day.
	SendCheckinPrompt(ctx context.Context, id user.ID, day checkin.Day, marks checkin.DaySet) error
}

// DailyReminderConfig contains configuration for the daily reminder job.
type DailyReminderConfig struct {
	// Enabled turns the job on or off without unregistering it.
	Enabled bool

	// Timezone for computing "today". The whole run uses one day value,
	// even if the run crosses midnight.
	Timezone *time.Location

	// Concurrency is the number of prompts sent in parallel.
	Concurrency int

	// Timeout is the maximum duration for one run.
	Timeout time.Duration
}

// DefaultDailyReminderConfig returns sensible defaults.
func DefaultDailyReminderConfig() DailyReminderConfig {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		loc = time.UTC
	}

	return DailyReminderConfig{
		Enabled:     true,
		Timezone:    loc,
		Concurrency: 5,
		Timeout:     5 * time.Minute,
	}
}

// DailyReminderStats contains statistics from a reminder run.
type DailyReminderStats struct {
	RunID          string
	Day            checkin.Day
	StartedAt      time.Time
	CompletedAt    time.Time
	Duration       time.Duration
	TotalUsers     int
	ClassPrompts   int
	CheckinPrompts int
	Failed         int
	Errors         []error
}

// DailyReminderJob sends the evening check-in reminder to every known user.
//
// Ученики без класса получают предложение выбрать класс, остальные -
// чек-лист с уже проставленными за сегодня отметками. Ошибка доставки
// одному ученику логируется и не прерывает рассылку остальным.
type DailyReminderJob struct {
	users    user.Repository
	checkins checkin.Repository
	sender   PromptSender
	logger   *slog.Logger
	config   DailyReminderConfig

	lastRunStats atomic.Value // *DailyReminderStats
}

// NewDailyReminderJob creates a new daily reminder job.
func NewDailyReminderJob(
	users user.Repository,
	checkins checkin.Repository,
	sender PromptSender,
	logger *slog.Logger,
	config DailyReminderConfig,
) *DailyReminderJob {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 5
	}
	if config.Timezone == nil {
		config.Timezone = time.UTC
	}

	return &DailyReminderJob{
		users:    users,
		checkins: checkins,
		sender:   sender,
		logger:   logger,
		config:   config,
	}
}

// Name returns the job name.
func (j *DailyReminderJob) Name() string {
	return "daily_reminder"
}

// Description returns a human-readable description.
func (j *DailyReminderJob) Description() string {
	return "Sends the evening check-in reminder to all users"
}

// Run executes one reminder broadcast.
func (j *DailyReminderJob) Run(ctx context.Context) error {
	if !j.config.Enabled {
		j.logger.Info("daily reminder is disabled")
		return nil
	}

	startedAt := time.Now()

	// Today is computed once; every prompt in this run refers to the same day.
	today := checkin.DayOf(startedAt.In(j.config.Timezone))

	stats := &DailyReminderStats{
		RunID:     uuid.NewString(),
		Day:       today,
		StartedAt: startedAt,
		Errors:    make([]error, 0),
	}

	log := j.logger.With("run_id", stats.RunID, "day", today.String())
	log.Info("starting daily_reminder job")

	if j.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.config.Timeout)
		defer cancel()
	}

	ids, err := j.users.ListIDs(ctx, user.ScopeAll())
	if err != nil {
		return fmt.Errorf("failed to list users for reminder: %w", err)
	}

	stats.TotalUsers = len(ids)
	log.Info("found users for reminder", "count", stats.TotalUsers)

	if stats.TotalUsers > 0 {
		j.sendRemindersConcurrently(ctx, log, ids, today, stats)
	}

	stats.CompletedAt = time.Now()
	stats.Duration = stats.CompletedAt.Sub(startedAt)
	j.lastRunStats.Store(stats)

	log.Info("daily_reminder job completed",
		"duration", stats.Duration.String(),
		"total", stats.TotalUsers,
		"class_prompts", stats.ClassPrompts,
		"checkin_prompts", stats.CheckinPrompts,
		"failed", stats.Failed,
	)

	return nil
}

// sendRemindersConcurrently sends prompts using a worker pool.
func (j *DailyReminderJob) sendRemindersConcurrently(
	ctx context.Context,
	log *slog.Logger,
	ids []user.ID,
	today checkin.Day,
	stats *DailyReminderStats,
) {
	var (
		wg        sync.WaitGroup
		semaphore = make(chan struct{}, j.config.Concurrency)
		mu        sync.Mutex
	)

	for _, id := range ids {
		select {
		case <-ctx.Done():
			return
		default:
		}

		wg.Add(1)
		semaphore <- struct{}{} // Acquire

		go func(id user.ID) {
			defer wg.Done()
			defer func() { <-semaphore }() // Release

			kind, err := j.remindUser(ctx, id, today)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				stats.Failed++
				stats.Errors = append(stats.Errors, err)
				log.Error("failed to send reminder",
					"user_id", int64(id),
					"error", err,
				)
				return
			}

			switch kind {
			case reminderClassPrompt:
				stats.ClassPrompts++
			case reminderCheckinPrompt:
				stats.CheckinPrompts++
			}
		}(id)
	}

	wg.Wait()
}

type reminderKind int

const (
	reminderClassPrompt reminderKind = iota
	reminderCheckinPrompt
)

// remindUser sends the appropriate prompt to one user.
func (j *DailyReminderJob) remindUser(ctx context.Context, id user.ID, today checkin.Day) (reminderKind, error) {
	_, hasClass, err := j.users.GetClass(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("get class for user %d: %w", id, err)
	}

	if !hasClass {
		if err := j.sender.SendClassPrompt(ctx, id); err != nil {
			return 0, fmt.Errorf("class prompt to user %d: %w", id, err)
		}
		return reminderClassPrompt, nil
	}

	marks, err := j.checkins.DayMarks(ctx, id, today)
	if err != nil {
		return 0, fmt.Errorf("day marks for user %d: %w", id, err)
	}

	if err := j.sender.SendCheckinPrompt(ctx, id, today, marks); err != nil {
		return 0, fmt.Errorf("checkin prompt to user %d: %w", id, err)
	}
	return reminderCheckinPrompt, nil
}

// LastRunStats returns statistics from the last reminder run.
func (j *DailyReminderJob) LastRunStats() *DailyReminderStats {
	stats := j.lastRunStats.Load()
	if stats == nil {
		return nil
	}
	return stats.(*DailyReminderStats)
}
