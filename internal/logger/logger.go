// Package logger provides the leveled, key-value logger that every
// webdrivermanager component receives explicitly.
//
// Components never reach for a process-wide logger. The CLI builds one
// Logger with New and hands it down; library callers that do not care
// about output pass Nop.
//
// # Output Format
//
//	[LEVEL] YYYY-MM-DD HH:MM:SS message key=value key=value
//	[INFO] 2026-02-03 10:30:45 Created symlink link=/usr/local/bin/geckodriver
package logger

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Logger provides structured logging for driver operations.
type Logger interface {
	// Debug logs debug-level messages with optional key-value pairs.
	Debug(msg string, keysAndValues ...interface{})

	// Info logs info-level messages with optional key-value pairs.
	Info(msg string, keysAndValues ...interface{})

	// Warn logs warning-level messages with optional key-value pairs.
	Warn(msg string, keysAndValues ...interface{})

	// Error logs error-level messages with optional key-value pairs.
	Error(msg string, keysAndValues ...interface{})
}

// Level represents a logging severity level.
type Level int

// Log levels from least to most severe.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the log level.
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

var levelColors = map[Level]*color.Color{
	LevelDebug: color.New(color.FgHiBlack),
	LevelInfo:  color.New(color.FgCyan),
	LevelWarn:  color.New(color.FgYellow),
	LevelError: color.New(color.FgRed),
}

// StreamLogger writes leveled lines to an io.Writer. Safe for concurrent use.
type StreamLogger struct {
	mu    sync.Mutex
	out   io.Writer
	level Level
	now   func() time.Time
}

// New creates a StreamLogger that drops messages below level.
func New(out io.Writer, level Level) *StreamLogger {
	return &StreamLogger{
		out:   out,
		level: level,
		now:   time.Now,
	}
}

// SetLevel changes the minimum level that is written.
func (l *StreamLogger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *StreamLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.log(LevelDebug, msg, keysAndValues)
}

func (l *StreamLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log(LevelInfo, msg, keysAndValues)
}

func (l *StreamLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.log(LevelWarn, msg, keysAndValues)
}

func (l *StreamLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log(LevelError, msg, keysAndValues)
}

func (l *StreamLogger) log(level Level, msg string, keysAndValues []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	tag := levelColors[level].Sprintf("[%s]", level.String())
	timestamp := l.now().Format("2006-01-02 15:04:05")
	_, _ = fmt.Fprintf(l.out, "%s %s %s%s\n", tag, timestamp, msg, formatFields(keysAndValues))
}

// formatFields renders key-value pairs in call order. A trailing key without
// a value is rendered with the value "<missing>".
func formatFields(keysAndValues []interface{}) string {
	if len(keysAndValues) == 0 {
		return ""
	}

	var b strings.Builder
	for i := 0; i < len(keysAndValues); i += 2 {
		b.WriteByte(' ')
		b.WriteString(fmt.Sprint(keysAndValues[i]))
		b.WriteByte('=')
		if i+1 < len(keysAndValues) {
			b.WriteString(fmt.Sprint(keysAndValues[i+1]))
		} else {
			b.WriteString("<missing>")
		}
	}
	return b.String()
}

// noopLogger is a Logger implementation that does nothing.
type noopLogger struct{}

func (n noopLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (n noopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (n noopLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (n noopLogger) Error(msg string, keysAndValues ...interface{}) {}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return noopLogger{}
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return Nop()
	}
	return l
}
