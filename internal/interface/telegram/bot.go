// Package telegram implements the Telegram interface of the EcoHabit bot.
// It parses raw updates into typed actions, applies middleware and routes
// the actions to application handlers.
package telegram

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ecohabit-hub/ecohabit-bot/internal/infrastructure/external/telegram"
	"github.com/ecohabit-hub/ecohabit-bot/internal/interface/telegram/middleware"
)

// ══════════════════════════════════════════════════════════════════════════════
// BOT CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// BotConfig contains configuration for the Telegram bot.
type BotConfig struct {
	// PollingTimeout is the timeout for long polling (in seconds).
	PollingTimeout int

	// MaxConcurrentUpdates limits concurrent update processing.
	MaxConcurrentUpdates int

	// GracefulShutdownTimeout is the timeout for graceful shutdown.
	GracefulShutdownTimeout time.Duration

	// Logger for structured logging.
	Logger *slog.Logger
}

// DefaultBotConfig returns sensible defaults.
func DefaultBotConfig() BotConfig {
	return BotConfig{
		PollingTimeout:          30,
		MaxConcurrentUpdates:    100,
		GracefulShutdownTimeout: 30 * time.Second,
		Logger:                  slog.Default(),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// BOT
// ══════════════════════════════════════════════════════════════════════════════

// Bot receives Telegram updates and feeds them through the middleware
// chain into the router.
type Bot struct {
	config BotConfig
	client *telegram.Client
	router *Router
	logger *slog.Logger

	rateLimiter     *middleware.RateLimiter
	rateLimitConfig middleware.RateLimitConfig
	recovery        *middleware.RecoveryMiddleware
	panics          *middleware.PanicAggregator

	running   bool
	runningMu sync.RWMutex
	updateSem chan struct{}
	wg        sync.WaitGroup

	stats *BotStats
}

// BotStats holds runtime statistics.
type BotStats struct {
	mu              sync.RWMutex
	StartedAt       time.Time
	UpdatesReceived int64
	UpdatesHandled  int64
	UpdatesIgnored  int64
	ErrorsCount     int64
}

// NewBot creates a bot around an existing client and router.
func NewBot(config BotConfig, client *telegram.Client, router *Router) (*Bot, error) {
	if client == nil {
		return nil, errors.New("telegram client is required")
	}
	if router == nil {
		return nil, errors.New("router is required")
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.MaxConcurrentUpdates <= 0 {
		config.MaxConcurrentUpdates = 100
	}

	panics := middleware.NewPanicAggregator(time.Hour, 100)

	recoveryConfig := middleware.DefaultRecoveryConfig()
	recoveryConfig.Logger = config.Logger
	recoveryConfig.OnPanic = func(ctx context.Context, info *middleware.PanicInfo) {
		panics.Add(info)
	}

	rateLimitConfig := middleware.DefaultRateLimitConfig()

	return &Bot{
		config:          config,
		client:          client,
		router:          router,
		logger:          config.Logger,
		rateLimiter:     middleware.NewRateLimiter(rateLimitConfig),
		rateLimitConfig: rateLimitConfig,
		recovery:        middleware.NewRecoveryMiddleware(recoveryConfig),
		panics:          panics,
		updateSem:       make(chan struct{}, config.MaxConcurrentUpdates),
		stats:           &BotStats{},
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// LIFECYCLE
// ══════════════════════════════════════════════════════════════════════════════

// Start verifies the token, drops a possible webhook and begins long polling.
// Blocks until the context is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	b.runningMu.Lock()
	if b.running {
		b.runningMu.Unlock()
		return errors.New("bot is already running")
	}
	b.running = true
	b.stats.mu.Lock()
	b.stats.StartedAt = time.Now()
	b.stats.mu.Unlock()
	b.runningMu.Unlock()

	me, err := b.client.GetMe(ctx)
	if err != nil {
		return err
	}
	b.logger.Info("bot verified", "id", me.ID, "username", me.Username)

	// Long polling conflicts with a leftover webhook registration.
	if err := b.client.DeleteWebhook(ctx, true); err != nil {
		b.logger.Warn("failed to delete webhook", "error", err)
	}

	b.logger.Info("starting long polling")
	return b.client.StartPolling(ctx, func(ctx context.Context, update *telegram.Update) error {
		return b.handleUpdate(ctx, update)
	})
}

// Stop waits for in-flight handlers to finish.
func (b *Bot) Stop(ctx context.Context) error {
	b.runningMu.Lock()
	if !b.running {
		b.runningMu.Unlock()
		return nil
	}
	b.running = false
	b.runningMu.Unlock()

	b.logger.Info("stopping telegram bot")

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("all handlers completed gracefully")
	case <-time.After(b.config.GracefulShutdownTimeout):
		b.logger.Warn("graceful shutdown timeout exceeded")
	case <-ctx.Done():
		return ctx.Err()
	}

	for _, p := range b.panics.Stats() {
		b.logger.Warn("unresolved panic group",
			"error", p.Key,
			"count", p.Count,
			"affected_users", len(p.AffectedUsers),
			"last_seen", p.LastSeen,
		)
	}

	return nil
}

// IsRunning returns whether the bot is currently polling.
func (b *Bot) IsRunning() bool {
	b.runningMu.RLock()
	defer b.runningMu.RUnlock()
	return b.running
}

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE HANDLING
// ══════════════════════════════════════════════════════════════════════════════

// handleUpdate processes a single Telegram update.
func (b *Bot) handleUpdate(ctx context.Context, update *telegram.Update) error {
	select {
	case b.updateSem <- struct{}{}:
		defer func() { <-b.updateSem }()
	case <-ctx.Done():
		return ctx.Err()
	}

	b.wg.Add(1)
	defer b.wg.Done()

	b.stats.mu.Lock()
	b.stats.UpdatesReceived++
	b.stats.mu.Unlock()

	inbound, ok := ParseUpdate(update)
	if !ok {
		b.stats.mu.Lock()
		b.stats.UpdatesIgnored++
		b.stats.mu.Unlock()
		return nil
	}

	telegramID := senderID(update)
	ctx = middleware.ContextWithTelegramID(ctx, telegramID)

	// Rate limiting.
	if limit := b.rateLimiter.Check(ctx, telegramID); !limit.Allowed {
		if inbound.CallbackID != "" {
			_ = b.client.AnswerCallbackQuery(ctx, inbound.CallbackID, "⏳ Слишком быстро! Подожди немного.", true)
		} else if msg := b.rateLimitConfig.OnRateLimited(telegramID, limit.RetryAfter); msg != "" {
			_, _ = b.client.SendHTML(ctx, inbound.ChatID, msg)
		}
		return nil
	}

	start := time.Now()

	// Recovery wrapper around the actual dispatch.
	dispatch := b.recovery.WrapWithContext(ctx, func() error {
		return b.router.Dispatch(ctx, inbound)
	})

	result, err := dispatch()
	if result != nil && result.Recovered {
		b.stats.mu.Lock()
		b.stats.ErrorsCount++
		b.stats.mu.Unlock()
		if inbound.ChatID > 0 {
			_, _ = b.client.SendHTML(ctx, inbound.ChatID, result.UserMessage)
		}
		return nil
	}

	if err != nil {
		b.stats.mu.Lock()
		b.stats.ErrorsCount++
		b.stats.mu.Unlock()
		b.logger.Error("failed to handle update",
			"action", actionName(inbound.Action),
			"chat_id", inbound.ChatID,
			"error", err,
			"duration", time.Since(start),
		)
		return err
	}

	b.stats.mu.Lock()
	b.stats.UpdatesHandled++
	b.stats.mu.Unlock()

	b.logger.Debug("update handled",
		"action", actionName(inbound.Action),
		"chat_id", inbound.ChatID,
		"duration", time.Since(start),
	)
	return nil
}

// senderID extracts the Telegram user ID from an update.
func senderID(update *telegram.Update) int64 {
	if update.Message != nil && update.Message.From != nil {
		return update.Message.From.ID
	}
	if update.CallbackQuery != nil && update.CallbackQuery.From != nil {
		return update.CallbackQuery.From.ID
	}
	return 0
}

// actionName returns a short label for logging and panic grouping.
func actionName(action Action) string {
	switch action.(type) {
	case FirstContact:
		return "first_contact"
	case HelpRequested:
		return "help"
	case ClassChangeRequested:
		return "class_change"
	case ClassChosen:
		return "class_chosen"
	case CheckinRequested:
		return "checkin"
	case HabitToggled:
		return "habit_toggle"
	case CheckinDone:
		return "checkin_done"
	case MyStatsRequested:
		return "my_stats"
	case ClassStatsRequested:
		return "class_stats"
	case SchoolStatsRequested:
		return "school_stats"
	default:
		return "unknown"
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// STATISTICS
// ══════════════════════════════════════════════════════════════════════════════

// GetStats returns current bot statistics.
func (b *Bot) GetStats() map[string]interface{} {
	b.stats.mu.RLock()
	defer b.stats.mu.RUnlock()

	return map[string]interface{}{
		"started_at":       b.stats.StartedAt,
		"uptime":           time.Since(b.stats.StartedAt).String(),
		"updates_received": b.stats.UpdatesReceived,
		"updates_handled":  b.stats.UpdatesHandled,
		"updates_ignored":  b.stats.UpdatesIgnored,
		"errors_count":     b.stats.ErrorsCount,
		"running":          b.IsRunning(),
	}
}

// Client returns the Telegram client for direct API access.
func (b *Bot) Client() *telegram.Client {
	return b.client
}
