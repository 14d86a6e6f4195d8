// Package audit implements the council ledger: an append-only JSONL log of
// security- and delivery-relevant events (backpressure drops, connection
// lifecycle, auth denials, ingest rejections).
package audit

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Entry is a single ledger line.
type Entry struct {
	Timestamp time.Time              `json:"ts"`
	Kind      string                 `json:"kind"`
	ConnID    string                 `json:"connId,omitempty"`
	User      string                 `json:"user,omitempty"`
	Detail    map[string]interface{} `json:"detail,omitempty"`
}

// Logger writes ledger entries as JSON lines. Safe for concurrent use.
type Logger struct {
	mu  sync.Mutex
	out io.WriteCloser
}

// NewLogger creates a ledger under logDir with size-based rotation.
func NewLogger(logDir string) (*Logger, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	return &Logger{
		out: &lumberjack.Logger{
			Filename:   filepath.Join(logDir, "council_ledger.jsonl"),
			MaxSize:    50, // megabytes
			MaxBackups: 5,
			Compress:   true,
		},
	}, nil
}

// NewLoggerWithWriter creates a ledger over an arbitrary writer. Used in
// tests.
func NewLoggerWithWriter(w io.WriteCloser) *Logger {
	return &Logger{out: w}
}

// Record writes one entry. Implements the hub's Recorder interface; write
// failures are reported on stderr and never propagate into the hot path.
func (l *Logger) Record(kind, connID string, detail map[string]interface{}) {
	l.write(Entry{
		Timestamp: time.Now().UTC(),
		Kind:      kind,
		ConnID:    connID,
		Detail:    detail,
	})
}

// RecordUser writes one entry attributed to a caller identity, for auth and
// query events.
func (l *Logger) RecordUser(kind, user string, detail map[string]interface{}) {
	l.write(Entry{
		Timestamp: time.Now().UTC(),
		Kind:      kind,
		User:      user,
		Detail:    detail,
	})
}

func (l *Logger) write(entry Entry) {
	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "audit: failed to marshal entry: %v\n", err)
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.out.Write(append(data, '\n')); err != nil {
		fmt.Fprintf(os.Stderr, "audit: failed to write entry: %v\n", err)
	}
}

// Close closes the underlying writer.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.out.Close()
}
