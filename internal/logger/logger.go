// Package logger is the process wide levelled logger. The level can be changed at runtime.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/lmittmann/tint"
)

var (
	mu    sync.RWMutex
	level = new(slog.LevelVar)
	base  = newLogger(os.Stderr, "text")
)

func newLogger(w io.Writer, format string) *slog.Logger {
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: "2006-01-02 15:04:05",
	}))
}

// Init sets the level and keeps the text output format
func Init(lvl string) {
	SetLevel(lvl)
}

// Configure replaces the output and format ("text" or "json") and sets the level
func Configure(w io.Writer, format, lvl string) {
	mu.Lock()
	base = newLogger(w, strings.ToLower(format))
	mu.Unlock()
	SetLevel(lvl)
}

// SetLevel accepts debug, info, warn or error. Anything else means info.
func SetLevel(lvl string) {
	level.Set(parseLevel(lvl))
}

// GetLevel returns the current level name in lower case
func GetLevel() string {
	return strings.ToLower(level.Level().String())
}

func parseLevel(lvl string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// L returns the underlying structured logger
func L() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

func logf(l slog.Level, format string, args ...any) {
	lg := L()
	if !lg.Enabled(context.Background(), l) {
		return
	}
	lg.Log(context.Background(), l, fmt.Sprintf(format, args...))
}

func Debugf(format string, args ...any) { logf(slog.LevelDebug, format, args...) }
func Infof(format string, args ...any)  { logf(slog.LevelInfo, format, args...) }
func Warnf(format string, args ...any)  { logf(slog.LevelWarn, format, args...) }
func Errorf(format string, args ...any) { logf(slog.LevelError, format, args...) }
