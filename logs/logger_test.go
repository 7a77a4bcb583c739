package logs

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestRequestIDAttached(t *testing.T) {
	buf := new(bytes.Buffer)
	logger := NewLogger(Options{Level: "debug", Writer: buf, DisableJournal: true})

	ctx := WithRequestID(context.Background(), "req-123")
	logger.InfoContext(ctx, "hello", "k", "v")
	logger.With("component", "test").InfoContext(ctx, "derived")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines: %q", len(lines), buf.String())
	}
	for _, line := range lines {
		if !strings.Contains(line, "request_id=req-123") {
			t.Fatalf("got %v", line)
		}
	}
	if !strings.Contains(lines[1], "component=test") {
		t.Fatalf("got %v", lines[1])
	}
}

func TestLevelFilter(t *testing.T) {
	buf := new(bytes.Buffer)
	logger := NewLogger(Options{Level: "warn", Writer: buf, DisableJournal: true})
	logger.Info("dropped")
	logger.Warn("kept")
	if strings.Contains(buf.String(), "dropped") || !strings.Contains(buf.String(), "kept") {
		t.Fatalf("got %v", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("DEBUG") != slog.LevelDebug {
		t.Fatal("debug")
	}
	if ParseLevel("nonsense") != slog.LevelInfo {
		t.Fatal("default")
	}
}

func TestToJournalKey(t *testing.T) {
	if got := toJournalKey("request_id.x"); got != "REQUEST_ID_X" {
		t.Fatalf("got %v", got)
	}
}
