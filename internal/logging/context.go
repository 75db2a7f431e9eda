package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent identifies the subsystem emitting the log line.
	FieldComponent = "component"
	// FieldItemID identifies the content item a log line refers to.
	FieldItemID = "item_id"
	// FieldCorrelationID ties log lines to one API request or sweep tick.
	FieldCorrelationID = "correlation_id"
	// FieldEventType is a stable machine-readable event name.
	FieldEventType = "event_type"
	// FieldErrorHint suggests a next step to the operator.
	FieldErrorHint = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldOutcome records how an operation ended (applied, superseded, unchanged).
	FieldOutcome = "outcome"
)

type ctxKey int

const (
	itemIDKey ctxKey = iota
	correlationIDKey
)

// WithItemID stores the content item id on ctx for later log enrichment.
func WithItemID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, itemIDKey, id)
}

// WithCorrelationID stores a correlation id on ctx.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, correlationIDKey, id)
}

// WithContext returns logger enriched with the identifiers carried by ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if ctx == nil {
		return logger
	}
	var attrs []any
	if id, ok := ctx.Value(itemIDKey).(string); ok && id != "" {
		attrs = append(attrs, String(FieldItemID, id))
	}
	if id, ok := ctx.Value(correlationIDKey).(string); ok && id != "" {
		attrs = append(attrs, String(FieldCorrelationID, id))
	}
	if len(attrs) == 0 {
		return logger
	}
	return logger.With(attrs...)
}
