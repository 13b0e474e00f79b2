package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECOVERY
// Паника в обработчике не должна ронять цикл опроса: она переводится в
// дружелюбный ответ пользователю, логируется и попадает в агрегатор,
// чтобы повторяющиеся падения были видны одной строкой, а не потоком.
// ══════════════════════════════════════════════════════════════════════════════

// RecoveryConfig holds configuration for the recovery middleware.
type RecoveryConfig struct {
	// Logger for recovered panics.
	Logger *slog.Logger

	// EnableStackTrace enables capturing stack traces.
	EnableStackTrace bool

	// OnPanic is called for every recovered panic.
	OnPanic func(ctx context.Context, info *PanicInfo)

	// UserErrorMessage is sent to the user whose update caused the panic.
	UserErrorMessage string

	// MaxPanicsPerMinute bounds panic processing so a hot crash loop
	// cannot flood the log and the aggregator.
	MaxPanicsPerMinute int
}

// DefaultRecoveryConfig returns sensible defaults.
func DefaultRecoveryConfig() RecoveryConfig {
	return RecoveryConfig{
		Logger:           slog.Default(),
		EnableStackTrace: true,
		UserErrorMessage: "😔 Что-то пошло не так.\n\n" +
			"Наша команда уже знает о проблеме и работает над её решением.\n" +
			"Попробуй ещё раз через несколько минут.",
		MaxPanicsPerMinute: 100,
	}
}

// PanicInfo describes one recovered panic.
type PanicInfo struct {
	// Error is the panic value converted to an error.
	Error error

	// StackTrace is the captured stack, empty when capture is disabled.
	StackTrace string

	// RequestID of the update being processed, if attached to the context.
	RequestID string

	// TelegramID of the sender, if attached to the context.
	TelegramID int64

	// Timestamp is when the panic was recovered.
	Timestamp time.Time
}

// RecoveryMiddleware converts handler panics into RecoveryResults.
type RecoveryMiddleware struct {
	config  RecoveryConfig
	limiter *panicRateLimiter
}

// NewRecoveryMiddleware creates a recovery middleware.
func NewRecoveryMiddleware(config RecoveryConfig) *RecoveryMiddleware {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &RecoveryMiddleware{
		config:  config,
		limiter: newPanicRateLimiter(config.MaxPanicsPerMinute),
	}
}

// RecoveryResult is the outcome of a wrapped handler call.
type RecoveryResult struct {
	// Recovered is true when the handler panicked.
	Recovered bool

	// PanicInfo holds panic details when Recovered is true.
	PanicInfo *PanicInfo

	// UserMessage is the reply to send when Recovered is true.
	UserMessage string
}

// WrapWithContext wraps a handler call with panic recovery. The returned
// function never panics: it either forwards the handler's error or reports
// a recovered panic in the result.
func (m *RecoveryMiddleware) WrapWithContext(ctx context.Context, fn func() error) func() (*RecoveryResult, error) {
	return func() (result *RecoveryResult, err error) {
		defer func() {
			if r := recover(); r != nil {
				result = m.handlePanic(ctx, r)
			}
		}()

		err = fn()
		return &RecoveryResult{}, err
	}
}

func (m *RecoveryMiddleware) handlePanic(ctx context.Context, panicValue interface{}) *RecoveryResult {
	if !m.limiter.allow() {
		return &RecoveryResult{Recovered: true, UserMessage: m.config.UserErrorMessage}
	}

	info := &PanicInfo{
		Error:     toError(panicValue),
		Timestamp: time.Now(),
	}
	if id, ok := TelegramIDFromContext(ctx); ok {
		info.TelegramID = id
	}
	if requestID, ok := RequestIDFromContext(ctx); ok {
		info.RequestID = requestID
	}
	if m.config.EnableStackTrace {
		info.StackTrace = string(debug.Stack())
	}

	m.config.Logger.Error("panic recovered",
		"error", info.Error,
		"telegram_id", info.TelegramID,
		"request_id", info.RequestID,
		"stack", info.StackTrace,
	)

	if m.config.OnPanic != nil {
		m.config.OnPanic(ctx, info)
	}

	return &RecoveryResult{
		Recovered:   true,
		PanicInfo:   info,
		UserMessage: m.config.UserErrorMessage,
	}
}

func toError(panicValue interface{}) error {
	switch v := panicValue.(type) {
	case error:
		return v
	case string:
		return fmt.Errorf("%s", v)
	default:
		return fmt.Errorf("panic: %v", v)
	}
}

type panicRateLimiter struct {
	mu        sync.Mutex
	count     int
	maxPerMin int
	window    time.Time
}

func newPanicRateLimiter(maxPerMin int) *panicRateLimiter {
	return &panicRateLimiter{maxPerMin: maxPerMin, window: time.Now()}
}

func (p *panicRateLimiter) allow() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	if now.Sub(p.window) > time.Minute {
		p.count = 0
		p.window = now
	}
	if p.count >= p.maxPerMin {
		return false
	}
	p.count++
	return true
}

// ══════════════════════════════════════════════════════════════════════════════
// PANIC AGGREGATOR
// ══════════════════════════════════════════════════════════════════════════════

// PanicAggregator groups recovered panics by error message so the shutdown
// summary shows each distinct failure once, with a count.
type PanicAggregator struct {
	mu       sync.RWMutex
	panics   map[string]*AggregatedPanic
	maxAge   time.Duration
	maxItems int
}

// AggregatedPanic is a group of panics with the same error message.
type AggregatedPanic struct {
	// Key is the truncated error message the group is keyed by.
	Key string

	// Count is how many times this panic occurred.
	Count int

	// FirstSeen and LastSeen bound the group's lifetime.
	FirstSeen time.Time
	LastSeen  time.Time

	// SampleStack is the stack of the first occurrence.
	SampleStack string

	// AffectedUsers is the set of senders that hit this panic.
	AffectedUsers map[int64]bool
}

// NewPanicAggregator creates an aggregator that forgets groups older than
// maxAge and evicts the oldest group beyond maxItems.
func NewPanicAggregator(maxAge time.Duration, maxItems int) *PanicAggregator {
	pa := &PanicAggregator{
		panics:   make(map[string]*AggregatedPanic),
		maxAge:   maxAge,
		maxItems: maxItems,
	}
	go pa.cleanupLoop()
	return pa
}

// Add records one recovered panic.
func (pa *PanicAggregator) Add(info *PanicInfo) {
	pa.mu.Lock()
	defer pa.mu.Unlock()

	key := panicKey(info.Error.Error())
	agg, ok := pa.panics[key]
	if !ok {
		agg = &AggregatedPanic{
			Key:           key,
			FirstSeen:     info.Timestamp,
			SampleStack:   info.StackTrace,
			AffectedUsers: make(map[int64]bool),
		}
		pa.panics[key] = agg
	}

	agg.Count++
	agg.LastSeen = info.Timestamp
	if info.TelegramID != 0 {
		agg.AffectedUsers[info.TelegramID] = true
	}

	if len(pa.panics) > pa.maxItems {
		pa.evictOldest()
	}
}

// Stats returns a snapshot of the current groups.
func (pa *PanicAggregator) Stats() []*AggregatedPanic {
	pa.mu.RLock()
	defer pa.mu.RUnlock()

	result := make([]*AggregatedPanic, 0, len(pa.panics))
	for _, agg := range pa.panics {
		users := make(map[int64]bool, len(agg.AffectedUsers))
		for id := range agg.AffectedUsers {
			users[id] = true
		}
		result = append(result, &AggregatedPanic{
			Key:           agg.Key,
			Count:         agg.Count,
			FirstSeen:     agg.FirstSeen,
			LastSeen:      agg.LastSeen,
			SampleStack:   agg.SampleStack,
			AffectedUsers: users,
		})
	}
	return result
}

func (pa *PanicAggregator) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		pa.cleanup()
	}
}

func (pa *PanicAggregator) cleanup() {
	pa.mu.Lock()
	defer pa.mu.Unlock()

	threshold := time.Now().Add(-pa.maxAge)
	for key, agg := range pa.panics {
		if agg.LastSeen.Before(threshold) {
			delete(pa.panics, key)
		}
	}
}

func (pa *PanicAggregator) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, agg := range pa.panics {
		if oldestKey == "" || agg.LastSeen.Before(oldestTime) {
			oldestKey = key
			oldestTime = agg.LastSeen
		}
	}
	if oldestKey != "" {
		delete(pa.panics, oldestKey)
	}
}

// panicKey groups panics by the leading part of the error message.
func panicKey(errMsg string) string {
	if len(errMsg) > 100 {
		return errMsg[:100]
	}
	return errMsg
}
