// Package transcript writes chat turns to per-session NDJSON files.
package transcript

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ashureev/mood-reflect/internal/mood"
)

// Directions of a transcript event.
const (
	Inbound  = "inbound"
	Outbound = "outbound"
)

// Event is one line of a transcript.
type Event struct {
	Timestamp time.Time  `json:"timestamp"`
	SessionID string     `json:"session_id"`
	Direction string     `json:"direction"`
	Kind      string     `json:"kind"`
	Text      string     `json:"text"`
	Mood      mood.Label `json:"mood,omitempty"`
	Score     *float64   `json:"score,omitempty"`
}

// Config controls a Writer.
type Config struct {
	Dir       string
	QueueSize int
}

var sessionFilePattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,128}$`)

// Writer appends events asynchronously. Log never blocks: events are
// dropped when the queue is full.
type Writer struct {
	dir     string
	queue   chan Event
	logger  *slog.Logger
	dropped atomic.Int64

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewWriter creates dir and starts the writer goroutine.
func NewWriter(cfg Config, logger *slog.Logger) (*Writer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Dir == "" {
		return nil, errors.New("transcript dir cannot be empty")
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create transcript dir: %w", err)
	}

	w := &Writer{
		dir:    cfg.Dir,
		queue:  make(chan Event, cfg.QueueSize),
		logger: logger,
		done:   make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Log enqueues e. A zero Timestamp is set to now. Log after Close is a no-op.
func (w *Writer) Log(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return
	}
	select {
	case w.queue <- e:
	default:
		if n := w.dropped.Add(1); n == 1 || n%100 == 0 {
			w.logger.Warn("transcript queue full, dropping events", "dropped", n)
		}
	}
}

// Dropped returns how many events were discarded.
func (w *Writer) Dropped() int64 {
	return w.dropped.Load()
}

// Close drains the queue and stops the writer.
func (w *Writer) Close() error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.mu.Unlock()
	<-w.done
	return nil
}

func (w *Writer) run() {
	defer close(w.done)
	for e := range w.queue {
		if err := w.write(e); err != nil {
			w.logger.Warn("failed to write transcript event", "session_id", e.SessionID, "error", err)
		}
	}
}

func (w *Writer) write(e Event) error {
	if !sessionFilePattern.MatchString(e.SessionID) {
		return fmt.Errorf("invalid session id %q", e.SessionID)
	}
	line, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	path := filepath.Join(w.dir, e.SessionID+".ndjson")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open transcript: %w", err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		_ = f.Close()
		return fmt.Errorf("append transcript: %w", err)
	}
	return f.Close()
}
