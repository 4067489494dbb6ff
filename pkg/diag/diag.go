// Package diag defines where `message` output goes. A Sink always has a
// default channel; the level-specific channels are optional and fall back to
// the default one.
package diag

import (
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
)

// Level names a diagnostic channel.
type Level string

const (
	LevelLog   Level = "log"
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// ParseLevel validates a level name. Empty selects LevelLog.
func ParseLevel(raw string) (Level, error) {
	switch level := Level(strings.TrimSpace(raw)); level {
	case "":
		return LevelLog, nil
	case LevelLog, LevelDebug, LevelInfo, LevelWarn, LevelError:
		return level, nil
	default:
		return "", fmt.Errorf("diag: unknown level %q", raw)
	}
}

// Sink receives diagnostic text on the default channel.
type Sink interface {
	Log(text string)
}

type DebugSink interface{ Debug(text string) }
type InfoSink interface{ Info(text string) }
type WarnSink interface{ Warn(text string) }
type ErrorSink interface{ Error(text string) }

// Dispatch routes text to the channel for level, or to Log when the sink
// lacks that channel.
func Dispatch(sink Sink, level Level, text string) {
	if sink == nil {
		return
	}
	switch level {
	case LevelDebug:
		if s, ok := sink.(DebugSink); ok {
			s.Debug(text)
			return
		}
	case LevelInfo:
		if s, ok := sink.(InfoSink); ok {
			s.Info(text)
			return
		}
	case LevelWarn:
		if s, ok := sink.(WarnSink); ok {
			s.Warn(text)
			return
		}
	case LevelError:
		if s, ok := sink.(ErrorSink); ok {
			s.Error(text)
			return
		}
	}
	sink.Log(text)
}

// SinkFunc adapts a function into a Sink with only the default channel.
type SinkFunc func(text string)

func (fn SinkFunc) Log(text string) { fn(text) }

// Discard drops every message.
var Discard Sink = SinkFunc(func(string) {})

// LoggerSink writes `[LEVEL] text` lines through a standard logger and
// implements every channel.
type LoggerSink struct {
	logger *log.Logger
}

// NewLoggerSink writes to w with the standard date/time prefix.
func NewLoggerSink(w io.Writer) *LoggerSink {
	return &LoggerSink{logger: log.New(w, "", log.LstdFlags)}
}

func (s *LoggerSink) write(level Level, text string) {
	s.logger.Printf("[%s] %s", strings.ToUpper(string(level)), text)
}

func (s *LoggerSink) Log(text string)   { s.write(LevelLog, text) }
func (s *LoggerSink) Debug(text string) { s.write(LevelDebug, text) }
func (s *LoggerSink) Info(text string)  { s.write(LevelInfo, text) }
func (s *LoggerSink) Warn(text string)  { s.write(LevelWarn, text) }
func (s *LoggerSink) Error(text string) { s.write(LevelError, text) }

// Entry is one recorded message.
type Entry struct {
	Level Level
	Text  string
}

// Recorder keeps every message in memory, tagged with its channel.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) add(level Level, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Level: level, Text: text})
}

func (r *Recorder) Log(text string)   { r.add(LevelLog, text) }
func (r *Recorder) Debug(text string) { r.add(LevelDebug, text) }
func (r *Recorder) Info(text string)  { r.add(LevelInfo, text) }
func (r *Recorder) Warn(text string)  { r.add(LevelWarn, text) }
func (r *Recorder) Error(text string) { r.add(LevelError, text) }

// Entries returns a copy of the recorded messages.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}
