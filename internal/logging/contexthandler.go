package logging

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sangamsetu/casedesk/internal/errors"
)

type contextKey string

const slogAttrs contextKey = "slogAttrs"

// ContextHandler adds the [slog.Attr] stored in [context.Context] with [WithAttrs] to every record.
type ContextHandler struct {
	slog.Handler
}

// NewContextHandler wraps h so that log records are enriched with attributes from the context.
func NewContextHandler(h slog.Handler) ContextHandler {
	return ContextHandler{Handler: h}
}

// Handle enriches the log record with [slog.Attr] stored in context with [WithAttrs].
func (h ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs, ok := ctx.Value(slogAttrs).([]slog.Attr); ok {
		r.AddAttrs(attrs...)
	}

	if err := h.Handler.Handle(ctx, r); err != nil {
		return errors.Wrap(err, "handle log record")
	}
	return nil
}

// WithAttrs keeps the context enrichment for loggers derived with [slog.Logger.With].
func (h ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return ContextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

// WithGroup keeps the context enrichment for loggers derived with [slog.Logger.WithGroup].
func (h ContextHandler) WithGroup(name string) slog.Handler {
	return ContextHandler{Handler: h.Handler.WithGroup(name)}
}

// WithAttrs adds attr to the [context.Context] so that they enrich the log records handled by [ContextHandler].
func WithAttrs(ctx context.Context, attr ...slog.Attr) context.Context {
	existing, _ := ctx.Value(slogAttrs).([]slog.Attr)
	// Copy so that sibling contexts never share a backing array.
	merged := make([]slog.Attr, 0, len(existing)+len(attr))
	merged = append(merged, existing...)
	merged = append(merged, attr...)
	return context.WithValue(ctx, slogAttrs, merged)
}

// ParseLevel maps a level name such as "info" or "WARN" to a [slog.Level]. Unknown names fall back to debug.
func ParseLevel(name string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(strings.TrimSpace(name)))); err != nil {
		return slog.LevelDebug
	}
	return level
}
