package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecovery_PassesThroughResults(t *testing.T) {
	m := NewRecoveryMiddleware(DefaultRecoveryConfig())

	t.Run("no error", func(t *testing.T) {
		result, err := m.WrapWithContext(context.Background(), func() error { return nil })()
		require.NoError(t, err)
		assert.False(t, result.Recovered)
	})

	t.Run("handler error", func(t *testing.T) {
		handlerErr := errors.New("send failed")
		result, err := m.WrapWithContext(context.Background(), func() error { return handlerErr })()
		assert.ErrorIs(t, err, handlerErr)
		assert.False(t, result.Recovered)
	})
}

func TestRecovery_RecoversPanic(t *testing.T) {
	var seen *PanicInfo
	config := DefaultRecoveryConfig()
	config.OnPanic = func(ctx context.Context, info *PanicInfo) { seen = info }
	m := NewRecoveryMiddleware(config)

	ctx := ContextWithTelegramID(context.Background(), 42)
	ctx = ContextWithRequestID(ctx, "req-7")

	result, err := m.WrapWithContext(ctx, func() error {
		panic("nil catalog")
	})()

	require.NoError(t, err)
	require.True(t, result.Recovered)
	assert.Equal(t, config.UserErrorMessage, result.UserMessage)

	require.NotNil(t, seen)
	assert.EqualError(t, seen.Error, "nil catalog")
	assert.Equal(t, int64(42), seen.TelegramID)
	assert.Equal(t, "req-7", seen.RequestID)
	assert.NotEmpty(t, seen.StackTrace)
}

func TestRecovery_RateLimitSkipsProcessing(t *testing.T) {
	calls := 0
	config := DefaultRecoveryConfig()
	config.MaxPanicsPerMinute = 1
	config.OnPanic = func(ctx context.Context, info *PanicInfo) { calls++ }
	m := NewRecoveryMiddleware(config)

	for i := 0; i < 3; i++ {
		result, _ := m.WrapWithContext(context.Background(), func() error { panic("boom") })()
		require.True(t, result.Recovered)
		assert.Equal(t, config.UserErrorMessage, result.UserMessage)
	}

	assert.Equal(t, 1, calls, "only the first panic in the window is processed")
}

func TestPanicAggregator_GroupsByError(t *testing.T) {
	pa := NewPanicAggregator(time.Hour, 10)
	now := time.Now()

	pa.Add(&PanicInfo{Error: errors.New("nil catalog"), Timestamp: now, TelegramID: 1})
	pa.Add(&PanicInfo{Error: errors.New("nil catalog"), Timestamp: now.Add(time.Second), TelegramID: 2})
	pa.Add(&PanicInfo{Error: errors.New("index out of range"), Timestamp: now, TelegramID: 1})

	stats := pa.Stats()
	require.Len(t, stats, 2)

	byKey := make(map[string]*AggregatedPanic)
	for _, agg := range stats {
		byKey[agg.Key] = agg
	}

	nilCatalog := byKey["nil catalog"]
	require.NotNil(t, nilCatalog)
	assert.Equal(t, 2, nilCatalog.Count)
	assert.Len(t, nilCatalog.AffectedUsers, 2)
	assert.Equal(t, now.Add(time.Second), nilCatalog.LastSeen)
}

func TestPanicAggregator_EvictsOldest(t *testing.T) {
	pa := NewPanicAggregator(time.Hour, 2)
	base := time.Now()

	pa.Add(&PanicInfo{Error: errors.New("first"), Timestamp: base})
	pa.Add(&PanicInfo{Error: errors.New("second"), Timestamp: base.Add(time.Minute)})
	pa.Add(&PanicInfo{Error: errors.New("third"), Timestamp: base.Add(2 * time.Minute)})

	stats := pa.Stats()
	require.Len(t, stats, 2)
	for _, agg := range stats {
		assert.NotEqual(t, "first", agg.Key, "oldest group must be evicted")
	}
}
