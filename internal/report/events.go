// Package report provides the structured JSONL event log written alongside
// the catalog, plus the run summary returned by a reconciliation pass.
package report

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// EventType represents the type of event
type EventType string

const (
	EventScan      EventType = "scan"
	EventHash      EventType = "hash"
	EventExtract   EventType = "extract"
	EventTokenize  EventType = "tokenize"
	EventMissing   EventType = "missing"
	EventCollision EventType = "collision"
	EventDuplicate EventType = "duplicate"
	EventBackup    EventType = "backup"
	EventFallback  EventType = "fallback"
	EventError     EventType = "error"
)

// EventLevel represents the severity level
type EventLevel string

const (
	LevelDebug   EventLevel = "debug"
	LevelInfo    EventLevel = "info"
	LevelWarning EventLevel = "warning"
	LevelError   EventLevel = "error"
)

var levelPriority = map[EventLevel]int{
	LevelDebug:   0,
	LevelInfo:    1,
	LevelWarning: 2,
	LevelError:   3,
}

// Event is a single event in the catalog pipeline
type Event struct {
	Timestamp time.Time         `json:"ts"`
	Level     EventLevel        `json:"level"`
	Event     EventType         `json:"event"`
	Key       string            `json:"key,omitempty"`
	Path      string            `json:"path,omitempty"`
	Hash      string            `json:"hash,omitempty"`
	Reason    string            `json:"reason,omitempty"`
	Error     string            `json:"error,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}

// EventLogger writes events to a size-rotated JSONL file in the catalog
// directory. The zero-value-nil logger discards everything, so callers can
// log unconditionally.
type EventLogger struct {
	out      *lumberjack.Logger
	encoder  *json.Encoder
	mu       sync.Mutex
	path     string
	minLevel EventLevel
}

// NewEventLogger creates an event logger writing to events.jsonl inside
// catalogDir. minLevel filters what gets written.
func NewEventLogger(catalogDir string, minLevel EventLevel) (*EventLogger, error) {
	path := filepath.Join(catalogDir, "events.jsonl")
	out := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    20, // MB
		MaxBackups: 5,
		Compress:   true,
	}

	return &EventLogger{
		out:      out,
		encoder:  json.NewEncoder(out),
		path:     path,
		minLevel: minLevel,
	}, nil
}

// NullLogger returns a logger that discards all events
func NullLogger() *EventLogger {
	return &EventLogger{minLevel: LevelError}
}

// Path returns the event log location, or "" for a null logger
func (l *EventLogger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Close flushes and closes the underlying file
func (l *EventLogger) Close() error {
	if l == nil || l.out == nil {
		return nil
	}
	return l.out.Close()
}

// Log writes an event to the JSONL file
func (l *EventLogger) Log(event *Event) error {
	if l == nil || l.out == nil {
		return nil
	}

	if levelPriority[event.Level] < levelPriority[l.minLevel] {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if err := l.encoder.Encode(event); err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	return nil
}

// LogScan logs the observation of one file during enumeration
func (l *EventLogger) LogScan(key, path string, sizeBytes int64) error {
	return l.Log(&Event{
		Level: LevelDebug,
		Event: EventScan,
		Key:   key,
		Path:  path,
		Extra: map[string]string{
			"size_bytes": fmt.Sprintf("%d", sizeBytes),
		},
	})
}

// LogHash logs a content hash computation
func (l *EventLogger) LogHash(key, path, hash string, err error) error {
	level := LevelInfo
	errMsg := ""
	if err != nil {
		level = LevelError
		errMsg = err.Error()
	}
	return l.Log(&Event{
		Level: level,
		Event: EventHash,
		Key:   key,
		Path:  path,
		Hash:  hash,
		Error: errMsg,
	})
}

// LogExtract logs a text extraction attempt
func (l *EventLogger) LogExtract(key, path, artifactPath string, err error) error {
	level := LevelInfo
	errMsg := ""
	if err != nil {
		level = LevelError
		errMsg = err.Error()
	}
	return l.Log(&Event{
		Level: level,
		Event: EventExtract,
		Key:   key,
		Path:  path,
		Error: errMsg,
		Extra: map[string]string{
			"artifact": artifactPath,
		},
	})
}

// LogMissing logs an entry that disappeared from the filesystem
func (l *EventLogger) LogMissing(key string) error {
	return l.Log(&Event{
		Level: LevelWarning,
		Event: EventMissing,
		Key:   key,
	})
}

// LogCollision logs two filesystem paths mapping to the same primary key
func (l *EventLogger) LogCollision(key, winnerPath string) error {
	return l.Log(&Event{
		Level:  LevelWarning,
		Event:  EventCollision,
		Key:    key,
		Path:   winnerPath,
		Reason: "second write wins",
	})
}

// LogBackup logs a store backup
func (l *EventLogger) LogBackup(backupPath string, err error) error {
	level := LevelInfo
	errMsg := ""
	if err != nil {
		level = LevelError
		errMsg = err.Error()
	}
	return l.Log(&Event{
		Level: level,
		Event: EventBackup,
		Path:  backupPath,
		Error: errMsg,
	})
}

// LogFallback logs a degraded-mode decision, e.g. an unreadable store being
// set aside before a from-scratch rebuild
func (l *EventLogger) LogFallback(reason string) error {
	return l.Log(&Event{
		Level:  LevelWarning,
		Event:  EventFallback,
		Reason: reason,
	})
}

// LogError logs a per-file error that did not abort the run
func (l *EventLogger) LogError(key, path string, err error) error {
	return l.Log(&Event{
		Level: LevelError,
		Event: EventError,
		Key:   key,
		Path:  path,
		Error: err.Error(),
	})
}
