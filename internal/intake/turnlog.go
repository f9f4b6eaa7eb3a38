package intake

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// TurnEvent is one NDJSON line in a session's turn log.
type TurnEvent struct {
	Timestamp int64   `json:"ts"`
	SessionID string  `json:"session_id"`
	Role      string  `json:"role"`
	Content   string  `json:"content"`
	Progress  float64 `json:"progress"`
	Done      bool    `json:"done"`
}

// TurnLogger records conversation turns for offline review. Log must never
// block the request path.
type TurnLogger interface {
	Log(event TurnEvent)
	Close() error
}

// TurnLogConfig controls NDJSON turn logging.
type TurnLogConfig struct {
	Enabled   bool
	Dir       string
	QueueSize int
}

// NoopTurnLogger discards all events.
type NoopTurnLogger struct{}

func (NoopTurnLogger) Log(TurnEvent) {}

func (NoopTurnLogger) Close() error { return nil }

// fileTurnLogger appends events to one NDJSON file per session under Dir.
// Writes happen on a single background goroutine fed by a bounded queue;
// when the queue is full events are dropped rather than stalling a turn.
type fileTurnLogger struct {
	dir    string
	queue  chan TurnEvent
	done   chan struct{}
	logger *slog.Logger

	closeOnce sync.Once
}

// NewTurnLogger creates a turn logger per the config. Disabled config
// yields a no-op logger.
func NewTurnLogger(cfg TurnLogConfig, logger *slog.Logger) (TurnLogger, error) {
	if !cfg.Enabled {
		return NoopTurnLogger{}, nil
	}
	if cfg.Dir == "" {
		return nil, fmt.Errorf("turn log enabled but no directory configured")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create turn log dir: %w", err)
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 256
	}
	if logger == nil {
		logger = slog.Default()
	}

	l := &fileTurnLogger{
		dir:    cfg.Dir,
		queue:  make(chan TurnEvent, queueSize),
		done:   make(chan struct{}),
		logger: logger,
	}
	go l.run()
	return l, nil
}

// Log enqueues the event, stamping the time if unset. Drops the event when
// the queue is full.
func (l *fileTurnLogger) Log(event TurnEvent) {
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}
	select {
	case l.queue <- event:
	default:
		l.logger.Warn("turn log queue full, dropping event", "session_id", event.SessionID)
	}
}

// Close drains the queue and stops the writer goroutine.
func (l *fileTurnLogger) Close() error {
	l.closeOnce.Do(func() {
		close(l.queue)
		<-l.done
	})
	return nil
}

func (l *fileTurnLogger) run() {
	defer close(l.done)
	for event := range l.queue {
		if err := l.write(event); err != nil {
			l.logger.Warn("turn log write failed", "session_id", event.SessionID, "error", err)
		}
	}
}

func (l *fileTurnLogger) write(event TurnEvent) error {
	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	path := filepath.Join(l.dir, event.SessionID+".ndjson")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
