// Package chatlog appends chat exchanges to per-session NDJSON files.
// Writes happen on a background goroutine behind a bounded queue so a slow
// disk never stalls a request; events are dropped when the queue is full.
package chatlog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Config controls the logger. A disabled logger accepts events and does
// nothing.
type Config struct {
	Enabled   bool
	Dir       string
	QueueSize int
}

// Event is one logged message.
type Event struct {
	Timestamp string `json:"ts"`
	SessionID string `json:"session_id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
}

// Logger writes chat events asynchronously.
type Logger struct {
	cfg     Config
	log     *slog.Logger
	queue   chan Event
	wg      sync.WaitGroup
	dropsMu sync.Mutex
	drops   int64
}

// New creates the logger and starts its writer goroutine. The log
// directory is created up front so permission problems surface at startup
// rather than on the first dropped write.
func New(cfg Config, log *slog.Logger) (*Logger, error) {
	if log == nil {
		log = slog.Default()
	}
	l := &Logger{cfg: cfg, log: log}
	if !cfg.Enabled {
		return l, nil
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create chat log directory: %w", err)
	}
	l.queue = make(chan Event, cfg.QueueSize)
	l.wg.Add(1)
	go l.run()
	return l, nil
}

// Log enqueues an event without blocking. Events are dropped when the
// queue is full; drops are counted and reported on Close.
func (l *Logger) Log(e Event) {
	if !l.cfg.Enabled {
		return
	}
	if e.Timestamp == "" {
		e.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	}
	select {
	case l.queue <- e:
	default:
		l.dropsMu.Lock()
		l.drops++
		l.dropsMu.Unlock()
	}
}

// Close drains the queue and stops the writer.
func (l *Logger) Close() error {
	if !l.cfg.Enabled {
		return nil
	}
	close(l.queue)
	l.wg.Wait()
	l.dropsMu.Lock()
	drops := l.drops
	l.dropsMu.Unlock()
	if drops > 0 {
		l.log.Warn("chat log events dropped", "count", drops)
	}
	return nil
}

func (l *Logger) run() {
	defer l.wg.Done()
	for e := range l.queue {
		if err := l.write(e); err != nil {
			l.log.Error("failed to write chat log event", "session_id", e.SessionID, "error", err)
		}
	}
}

func (l *Logger) write(e Event) error {
	line, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	path := filepath.Join(l.cfg.Dir, sanitize(e.SessionID)+".ndjson")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			l.log.Debug("failed to close chat log file", "path", path, "error", closeErr)
		}
	}()
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append log line: %w", err)
	}
	return nil
}

// sanitize keeps session-derived file names inside the log directory.
func sanitize(name string) string {
	if name == "" {
		return "unknown"
	}
	safe := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			safe = append(safe, r)
		default:
			safe = append(safe, '_')
		}
	}
	return string(safe)
}
