package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID identifies one archiver run across all of its log lines.
	FieldRunID = "run_id"
	// FieldPlaylist is the internal name of the playlist being processed.
	FieldPlaylist = "playlist"
	// FieldStage is the pipeline stage (fetch, normalize, encode, publish, index).
	FieldStage = "stage"
	// FieldReference is the playlist locator handed to the extractor.
	FieldReference = "reference"
	// FieldRecordCount is the number of records kept after normalization.
	FieldRecordCount = "record_count"
	// FieldDroppedCount is the number of entries dropped by normalization.
	FieldDroppedCount = "dropped_count"
	// FieldElapsed is the wall-clock duration of a playlist or a run.
	FieldElapsed = "elapsed"
	// FieldAlert flags warnings or anomalies that should stand out in structured logs.
	FieldAlert = "alert"
	// FieldError carries the error of a failed operation.
	FieldError = "error"
)

type contextKey int

const (
	runIDKey contextKey = iota
	playlistKey
	stageKey
)

// WithRunID returns a context carrying the run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey, id)
}

// WithPlaylist returns a context carrying the playlist being processed.
func WithPlaylist(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, playlistKey, name)
}

// WithStage returns a context carrying the current pipeline stage.
func WithStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, stageKey, stage)
}

// RunIDFromContext returns the run identifier, if any.
func RunIDFromContext(ctx context.Context) (string, bool) {
	return stringFromContext(ctx, runIDKey)
}

func stringFromContext(ctx context.Context, key contextKey) (string, bool) {
	if ctx == nil {
		return "", false
	}
	value, ok := ctx.Value(key).(string)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	fields := make([]slog.Attr, 0, 3)
	if id, ok := stringFromContext(ctx, runIDKey); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if name, ok := stringFromContext(ctx, playlistKey); ok {
		fields = append(fields, slog.String(FieldPlaylist, name))
	}
	if stage, ok := stringFromContext(ctx, stageKey); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
