package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestInitAndGet(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(WithOutput(&buf)); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	l := Get()
	if l == nil {
		t.Fatal("logger is nil after initialization")
	}

	ctx := context.Background()
	l.Info(ctx, "session started", String("topic", "weather"), Int("turns", 3))

	out := buf.String()
	if !strings.Contains(out, "session started") {
		t.Errorf("missing message in output: %q", out)
	}
	if !strings.Contains(out, "topic=weather") {
		t.Errorf("missing field in output: %q", out)
	}
	if !strings.Contains(out, "source=") {
		t.Errorf("missing call-site annotation in output: %q", out)
	}
}

func TestNamed(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(WithOutput(&buf)); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	Named("archive").Info(context.Background(), "record persisted", String("session_id", "x"))

	if !strings.Contains(buf.String(), "archive.session_id=x") {
		t.Errorf("named group missing from output: %q", buf.String())
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(WithOutput(&buf), WithLevel(slog.LevelWarn)); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	ctx := context.Background()
	Get().Info(ctx, "suppressed")
	Get().Warn(ctx, "emitted")

	out := buf.String()
	if strings.Contains(out, "suppressed") {
		t.Errorf("info line should have been filtered: %q", out)
	}
	if !strings.Contains(out, "emitted") {
		t.Errorf("warn line missing: %q", out)
	}

	if err := SetLevelString("debug"); err != nil {
		t.Fatalf("failed to set level: %v", err)
	}
	Get().Debug(ctx, "now visible")
	if !strings.Contains(buf.String(), "now visible") {
		t.Errorf("debug line missing after level change: %q", buf.String())
	}
}

func TestSetLevelString(t *testing.T) {
	for _, level := range []string{"debug", "info", "", "warn", "warning", "error", "ERROR"} {
		if err := SetLevelString(level); err != nil {
			t.Errorf("level %q rejected: %v", level, err)
		}
	}
	if err := SetLevelString("verbose"); err == nil {
		t.Error("expected an error for an unknown level")
	}
}
