package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestSetup_JSONWithContextFields(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	l, err := Setup(&buf, "debug", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := WithRunID(context.Background(), "run-1")
	ctx = WithFields(ctx, Fields{Model: "llama3.1"})
	l.DebugContext(ctx, "step done", "step", 2)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("invalid json log line %q: %v", buf.String(), err)
	}
	if rec["run_id"] != "run-1" {
		t.Errorf("expected run_id, got %v", rec["run_id"])
	}
	if rec["model"] != "llama3.1" {
		t.Errorf("expected model, got %v", rec["model"])
	}
	if rec["msg"] != "step done" {
		t.Errorf("unexpected msg %v", rec["msg"])
	}
}

func TestSetup_LevelFilters(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	l, err := Setup(&buf, "warn", "text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	l.Info("hidden")
	l.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info record should be filtered at warn level")
	}
	if !strings.Contains(out, "shown") {
		t.Error("warn record missing")
	}
}

func TestSetup_Errors(t *testing.T) {
	if _, err := Setup(&bytes.Buffer{}, "loud", "text"); err == nil {
		t.Error("expected error for unknown level")
	}
	if _, err := Setup(&bytes.Buffer{}, "info", "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestWithFields_Merges(t *testing.T) {
	ctx := WithFields(context.Background(), Fields{RunID: "a", Component: "server"})
	ctx = WithFields(ctx, Fields{Model: "m"})

	f := FieldsFrom(ctx)
	if f.RunID != "a" || f.Model != "m" || f.Component != "server" {
		t.Errorf("unexpected fields %+v", f)
	}
	if RunID(context.Background()) != "" {
		t.Error("expected empty run id for bare context")
	}
}

func TestContextHandler_WithAttrsKeepsEnrichment(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewContextHandler(slog.NewTextHandler(&buf, nil))).With("svc", "frank")

	l.InfoContext(WithRunID(context.Background(), "r9"), "hello")

	out := buf.String()
	if !strings.Contains(out, "svc=frank") || !strings.Contains(out, "run_id=r9") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("abcdef", 3); got != "abc..." {
		t.Errorf("got %q", got)
	}
	if got := Truncate("ab", 3); got != "ab" {
		t.Errorf("got %q", got)
	}
}
