package logx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) slog() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel maps "debug", "info", "warn" and "error" to a Level. Anything
// else is LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// Fields are structured key/value pairs attached to a log line.
type Fields map[string]any

var (
	mu     sync.RWMutex
	level  = new(slog.LevelVar)
	logger = newLogger(os.Stderr)
	exit   = os.Exit
)

func newLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func SetLevel(l Level) {
	level.Set(l.slog())
}

// SetOutput redirects all log output to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = newLogger(w)
}

func current() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func Debug(args ...any)                 { current().Debug(fmt.Sprint(args...)) }
func Debugf(format string, args ...any) { current().Debug(fmt.Sprintf(format, args...)) }
func Info(args ...any)                  { current().Info(fmt.Sprint(args...)) }
func Infof(format string, args ...any)  { current().Info(fmt.Sprintf(format, args...)) }
func Warn(args ...any)                  { current().Warn(fmt.Sprint(args...)) }
func Warnf(format string, args ...any)  { current().Warn(fmt.Sprintf(format, args...)) }
func Error(args ...any)                 { current().Error(fmt.Sprint(args...)) }
func Errorf(format string, args ...any) { current().Error(fmt.Sprintf(format, args...)) }

func Fatal(args ...any) {
	current().Error(fmt.Sprint(args...))
	exit(1)
}

func Fatalf(format string, args ...any) {
	current().Error(fmt.Sprintf(format, args...))
	exit(1)
}

// Entry is a logger carrying a fixed set of fields.
type Entry struct {
	attrs []any
}

func WithFields(fields Fields) *Entry {
	attrs := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		attrs = append(attrs, k, v)
	}
	return &Entry{attrs: attrs}
}

func WithField(key string, value any) *Entry {
	return &Entry{attrs: []any{key, value}}
}

func (e *Entry) log(l slog.Level, msg string) {
	current().Log(context.Background(), l, msg, e.attrs...)
}

func (e *Entry) Debug(args ...any)                 { e.log(slog.LevelDebug, fmt.Sprint(args...)) }
func (e *Entry) Debugf(format string, args ...any) { e.log(slog.LevelDebug, fmt.Sprintf(format, args...)) }
func (e *Entry) Info(args ...any)                  { e.log(slog.LevelInfo, fmt.Sprint(args...)) }
func (e *Entry) Infof(format string, args ...any)  { e.log(slog.LevelInfo, fmt.Sprintf(format, args...)) }
func (e *Entry) Warn(args ...any)                  { e.log(slog.LevelWarn, fmt.Sprint(args...)) }
func (e *Entry) Warnf(format string, args ...any)  { e.log(slog.LevelWarn, fmt.Sprintf(format, args...)) }
func (e *Entry) Error(args ...any)                 { e.log(slog.LevelError, fmt.Sprint(args...)) }
func (e *Entry) Errorf(format string, args ...any) { e.log(slog.LevelError, fmt.Sprintf(format, args...)) }
