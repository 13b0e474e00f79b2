package middleware

import "context"

// ══════════════════════════════════════════════════════════════════════════════
// CONTEXT KEYS
// Shared keys for values the middlewares attach to the request context.
// ══════════════════════════════════════════════════════════════════════════════

type contextKey string

const (
	// TelegramIDContextKey holds the Telegram user ID of the update sender.
	TelegramIDContextKey contextKey = "telegram_id"

	// RequestIDContextKey holds the per-update request ID.
	RequestIDContextKey contextKey = "request_id"
)

// ContextWithTelegramID attaches the sender's Telegram ID to the context.
func ContextWithTelegramID(ctx context.Context, telegramID int64) context.Context {
	return context.WithValue(ctx, TelegramIDContextKey, telegramID)
}

// TelegramIDFromContext extracts the sender's Telegram ID, if present.
func TelegramIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(TelegramIDContextKey).(int64)
	return id, ok
}

// ContextWithRequestID attaches a request ID to the context.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDContextKey, requestID)
}

// RequestIDFromContext extracts the request ID, if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(RequestIDContextKey).(string)
	return id, ok
}
