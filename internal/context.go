package internal

import (
	"context"
	"time"
)

type ctxKey string

// ContextUserKey carries the authenticated user's id as it appears in the
// token claims.
const ContextUserKey ctxKey = "userID"

func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ContextUserKey, userID)
}

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	userID, _ := ctx.Value(ContextUserKey).(string)
	return userID
}

// WithTimeout guards blocking calls that must not inherit an unbounded
// context; non-positive durations fall back to 5 seconds.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
