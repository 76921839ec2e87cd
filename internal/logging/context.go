package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the structured logging key for component names.
	FieldComponent = "component"
	// FieldSource is the key for the folder, archive, or file being hashed.
	FieldSource = "source"
	// FieldEntry is the key for a relative entry path inside a source.
	FieldEntry = "entry"
	// FieldKind is the key for the source kind (folder, archive, file).
	FieldKind = "kind"
	// FieldRunID is the key correlating every line of one CLI invocation.
	FieldRunID = "run_id"
)

type contextKey string

const runIDKey contextKey = "run_id"

// WithRunID annotates ctx with the invocation identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext returns the invocation identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(runIDKey).(string)
	return id, ok && id != ""
}

// WithContext returns a logger augmented with fields carried by ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if id, ok := RunIDFromContext(ctx); ok {
		return logger.With(String(FieldRunID, id))
	}
	return logger
}
