// Package logger provides structured logging for sumconf.
package logger

import "context"

// contextKey is a type for context keys to avoid collisions.
type contextKey string

const (
	// loggerKey is the context key for the logger.
	loggerKey contextKey = "sumconf.logger"
	// gatherIDKey is the context key for the gather ID.
	gatherIDKey contextKey = "sumconf.gather_id"
)

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext extracts the logger from context.
// Returns the default logger if none is set.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey).(Logger); ok {
		return l
	}
	return Default()
}

// WithGatherID adds a gather ID to the context.
func WithGatherID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, gatherIDKey, id)
}

// GatherIDFromContext extracts the gather ID from context.
func GatherIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(gatherIDKey).(string); ok {
		return id
	}
	return ""
}

// L is a shorthand for FromContext that also enriches the logger
// with the gather ID from the context.
func L(ctx context.Context) Logger {
	l := FromContext(ctx)
	if id := GatherIDFromContext(ctx); id != "" {
		l = l.With("gather_id", id)
	}
	return l
}
