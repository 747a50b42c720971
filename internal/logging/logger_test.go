package logging

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func TestPrettyHandlerFormatsComponentAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelInfo)
	logger := slog.New(newPrettyHandler(&buf, levelVar, false))

	NewComponentLogger(logger, "assembler").Info("clip ready",
		String("output", "/tmp/video.mp4"),
		Int("images", 3),
	)

	line := buf.String()
	if !strings.Contains(line, "INFO assembler: clip ready") {
		t.Fatalf("unexpected line: %q", line)
	}
	if !strings.Contains(line, "output=/tmp/video.mp4") {
		t.Fatalf("expected output attr, got %q", line)
	}
	if !strings.Contains(line, "images=3") {
		t.Fatalf("expected images attr, got %q", line)
	}
}

func TestPrettyHandlerQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelInfo)
	logger := slog.New(newPrettyHandler(&buf, levelVar, false))

	logger.Info("msg", String("text", "hello world"))

	if !strings.Contains(buf.String(), `text="hello world"`) {
		t.Fatalf("expected quoted value, got %q", buf.String())
	}
}

func TestPrettyHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelWarn)
	logger := slog.New(newPrettyHandler(&buf, levelVar, false))

	logger.Info("dropped")
	logger.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Fatalf("expected info line suppressed, got %q", out)
	}
	if !strings.Contains(out, "kept") {
		t.Fatalf("expected warn line, got %q", out)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNoopHandlerDiscards(t *testing.T) {
	logger := NewNop()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("expected noop logger to be disabled")
	}
	logger.Error("ignored", Error(io.EOF))
}
