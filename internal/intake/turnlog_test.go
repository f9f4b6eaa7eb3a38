package intake

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestTurnLoggerWritesPerSessionNDJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	logger, err := NewTurnLogger(TurnLogConfig{
		Enabled:   true,
		Dir:       dir,
		QueueSize: 16,
	}, slog.Default())
	if err != nil {
		t.Fatalf("NewTurnLogger failed: %v", err)
	}
	defer func() { _ = logger.Close() }()

	logger.Log(TurnEvent{
		SessionID: "sid-1",
		Role:      "user",
		Content:   "hi there",
		Progress:  0.25,
	})

	path := filepath.Join(dir, "sid-1.ndjson")
	line := waitForLogLine(t, path)
	var got TurnEvent
	if err := json.Unmarshal([]byte(line), &got); err != nil {
		t.Fatalf("failed to unmarshal log line: %v", err)
	}
	if got.Content != "hi there" {
		t.Fatalf("unexpected Content: %q", got.Content)
	}
	if got.Timestamp == 0 {
		t.Fatal("expected timestamp to be stamped")
	}
}

func TestTurnLoggerDisabledIsNoop(t *testing.T) {
	t.Parallel()

	logger, err := NewTurnLogger(TurnLogConfig{Enabled: false}, nil)
	if err != nil {
		t.Fatalf("NewTurnLogger failed: %v", err)
	}
	if _, ok := logger.(NoopTurnLogger); !ok {
		t.Fatalf("disabled config should yield the no-op logger, got %T", logger)
	}
	logger.Log(TurnEvent{SessionID: "sid-1"})
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}

func TestTurnLoggerCloseFlushesQueue(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	logger, err := NewTurnLogger(TurnLogConfig{Enabled: true, Dir: dir, QueueSize: 64}, slog.Default())
	if err != nil {
		t.Fatalf("NewTurnLogger failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		logger.Log(TurnEvent{SessionID: "sid-2", Role: "user", Content: "msg"})
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "sid-2.ndjson"))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 10 {
		t.Fatalf("expected 10 log lines after Close, got %d", len(lines))
	}
}

func waitForLogLine(t *testing.T, path string) string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		data, err := os.ReadFile(path)
		if err == nil && len(data) > 0 {
			lines := strings.Split(strings.TrimSpace(string(data)), "\n")
			if len(lines) > 0 {
				return lines[len(lines)-1]
			}
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for log file %s", path)
	return ""
}
