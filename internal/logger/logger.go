// Package logger configures log/slog for frank and carries per-run fields
// through context so every log line of a refinement run is tagged with it.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Setup builds the process logger and installs it as the slog default.
// format is "text" or "json"; level is debug, info, warn or error.
func Setup(w io.Writer, level, format string) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "", "text":
		handler = slog.NewTextHandler(w, opts)
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	l := slog.New(NewContextHandler(handler))
	slog.SetDefault(l)
	return l, nil
}

func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

type contextKey string

const fieldsKey contextKey = "log_fields"

// Fields are added to every record logged with a context that carries them.
type Fields struct {
	RunID     string
	Model     string
	Component string
}

// WithFields merges fields into ctx. Non-empty values replace earlier ones.
func WithFields(ctx context.Context, f Fields) context.Context {
	cur := FieldsFrom(ctx)
	if f.RunID != "" {
		cur.RunID = f.RunID
	}
	if f.Model != "" {
		cur.Model = f.Model
	}
	if f.Component != "" {
		cur.Component = f.Component
	}
	return context.WithValue(ctx, fieldsKey, cur)
}

func FieldsFrom(ctx context.Context) Fields {
	if f, ok := ctx.Value(fieldsKey).(Fields); ok {
		return f
	}
	return Fields{}
}

// WithRunID is shorthand for WithFields(ctx, Fields{RunID: id}).
func WithRunID(ctx context.Context, id string) context.Context {
	return WithFields(ctx, Fields{RunID: id})
}

func RunID(ctx context.Context) string {
	return FieldsFrom(ctx).RunID
}

// ContextHandler decorates records with the Fields found in their context.
type ContextHandler struct {
	slog.Handler
}

func NewContextHandler(h slog.Handler) *ContextHandler {
	return &ContextHandler{Handler: h}
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	f := FieldsFrom(ctx)
	if f.RunID != "" {
		r.AddAttrs(slog.String("run_id", f.RunID))
	}
	if f.Model != "" {
		r.AddAttrs(slog.String("model", f.Model))
	}
	if f.Component != "" {
		r.AddAttrs(slog.String("component", f.Component))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithGroup(name)}
}

// Truncate shortens s to at most n bytes for log output.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
