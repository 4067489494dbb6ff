// Package log provides structured logging for jdsl.
// Entries carry a level, a category and key=value fields. Logging is off
// until Init or InitFile installs a writer (the CLI does so for --debug or
// JDSL_DEBUG).
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a level name to a Level. Unknown names map to LevelInfo.
func ParseLevel(name string) Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Category groups related log messages.
type Category string

const (
	CatRender  Category = "render"  // Interpreter dispatch and template calls
	CatLoader  Category = "loader"  // Stylesheet parsing and registration
	CatConfig  Category = "config"  // Configuration loading
	CatWatcher Category = "watcher" // File watcher events
	CatCache   Category = "cache"   // Expression program cache
	CatCLI     Category = "cli"     // Command execution
)

// Logger provides structured logging.
type Logger struct {
	mu       sync.Mutex
	file     *os.File
	writer   io.Writer
	enabled  bool
	minLevel Level
}

var (
	defaultMu     sync.RWMutex
	defaultLogger *Logger
)

// Init installs a logger writing to w and returns a function that disables
// it again.
func Init(w io.Writer, minLevel Level) func() {
	logger := &Logger{writer: w, enabled: w != nil, minLevel: minLevel}
	defaultMu.Lock()
	defaultLogger = logger
	defaultMu.Unlock()
	return func() {
		defaultMu.Lock()
		if defaultLogger == logger {
			defaultLogger = nil
		}
		defaultMu.Unlock()
	}
}

// InitFile appends log entries to the file at path.
// Returns a cleanup function to close the log file.
func InitFile(path string, minLevel Level) (func(), error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec // G304: path is the user-chosen debug log
	if err != nil {
		return nil, fmt.Errorf("log: open %s: %w", path, err)
	}
	reset := Init(f, minLevel)
	defaultMu.Lock()
	defaultLogger.file = f
	defaultMu.Unlock()
	return func() {
		reset()
		_ = f.Close()
	}, nil
}

// SetEnabled toggles logging on/off.
func SetEnabled(enabled bool) {
	if logger := current(); logger != nil {
		logger.mu.Lock()
		logger.enabled = enabled
		logger.mu.Unlock()
	}
}

// SetMinLevel sets the minimum log level.
func SetMinLevel(level Level) {
	if logger := current(); logger != nil {
		logger.mu.Lock()
		logger.minLevel = level
		logger.mu.Unlock()
	}
}

// Enabled reports whether entries at level would be written.
func Enabled(level Level) bool {
	logger := current()
	if logger == nil {
		return false
	}
	logger.mu.Lock()
	defer logger.mu.Unlock()
	return logger.enabled && level >= logger.minLevel
}

// Debug logs at debug level.
func Debug(cat Category, msg string, fields ...any) {
	write(LevelDebug, cat, msg, fields...)
}

// Info logs at info level.
func Info(cat Category, msg string, fields ...any) {
	write(LevelInfo, cat, msg, fields...)
}

// Warn logs at warning level.
func Warn(cat Category, msg string, fields ...any) {
	write(LevelWarn, cat, msg, fields...)
}

// Error logs at error level.
func Error(cat Category, msg string, fields ...any) {
	write(LevelError, cat, msg, fields...)
}

// ErrorErr logs an error with the error value.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	if err != nil {
		fields = append(fields, "error", err.Error())
	} else {
		fields = append(fields, "error", "<nil>")
	}
	write(LevelError, cat, msg, fields...)
}

func current() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

func write(level Level, cat Category, msg string, fields ...any) {
	logger := current()
	if logger == nil {
		return
	}

	logger.mu.Lock()
	defer logger.mu.Unlock()

	if !logger.enabled || level < logger.minLevel || logger.writer == nil {
		return
	}

	// Format: 2026-01-02T10:45:00 [DEBUG] [render] message key=value key2=value2
	var entry strings.Builder
	entry.WriteString(time.Now().Format("2006-01-02T15:04:05"))
	fmt.Fprintf(&entry, " [%s] [%s] %s", level, cat, msg)
	for i := 0; i+1 < len(fields); i += 2 {
		fmt.Fprintf(&entry, " %v=%v", fields[i], fields[i+1])
	}
	if len(fields)%2 != 0 {
		fmt.Fprintf(&entry, " %v=<missing>", fields[len(fields)-1])
	}
	entry.WriteByte('\n')

	_, _ = io.WriteString(logger.writer, entry.String())
}
