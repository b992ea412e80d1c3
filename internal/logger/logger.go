// Package logger is the process-wide structured logger.
//
// It wraps log/slog behind package-level functions so call sites never
// thread a logger value through constructors. Init applies the [logging]
// section of the server config; tests redirect output with
// InitWithWriter.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

// Config mirrors the [logging] config section.
type Config struct {
	Level  string // DEBUG, INFO, WARNING, ERROR, CRITICAL
	Format string // text or json
	Output string // stdout, stderr, or a file path
}

var (
	// level is shared by every handler ever built, so a level change
	// takes effect without a rebuild.
	level slog.LevelVar

	// active is the logger behind the package-level functions.
	active atomic.Pointer[slog.Logger]

	mu     sync.Mutex
	out    io.Writer = os.Stdout
	color            = isTerminal(os.Stdout.Fd())
	format           = "text"
)

func init() {
	rebuild()
}

// rebuild swaps in a logger for the current output and format. Callers
// hold mu, except the package init.
func rebuild() {
	var h slog.Handler
	if format == "json" {
		h = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: &level})
	} else {
		h = newTextHandler(out, &level, color)
	}
	active.Store(slog.New(h))
}

// levelFromName maps a config level name to a slog level. Python-style
// names (WARNING, CRITICAL) are accepted alongside the Go ones so config
// files written for older deployments keep working.
func levelFromName(name string) (slog.Level, bool) {
	switch strings.ToUpper(name) {
	case "DEBUG":
		return slog.LevelDebug, true
	case "INFO":
		return slog.LevelInfo, true
	case "WARN", "WARNING":
		return slog.LevelWarn, true
	case "ERROR", "CRITICAL":
		return slog.LevelError, true
	}
	return 0, false
}

// normalizeFormat keeps the text handler for anything that is not
// "json", so legacy printf-style format strings in config files degrade
// gracefully.
func normalizeFormat(f string) string {
	if strings.ToLower(f) == "json" {
		return "json"
	}
	return "text"
}

// Init configures the logger from cfg. An empty field keeps the current
// setting. Output may be "stdout", "stderr", or a file path, which is
// opened for append.
func Init(cfg Config) error {
	mu.Lock()
	defer mu.Unlock()

	switch strings.ToLower(cfg.Output) {
	case "":
		// keep current writer
	case "stdout":
		out, color = os.Stdout, isTerminal(os.Stdout.Fd())
	case "stderr":
		out, color = os.Stderr, isTerminal(os.Stderr.Fd())
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file %q: %w", cfg.Output, err)
		}
		out, color = f, false
	}

	if cfg.Level != "" {
		if l, ok := levelFromName(cfg.Level); ok {
			level.Set(l)
		}
	}
	if cfg.Format != "" {
		format = normalizeFormat(cfg.Format)
	}

	rebuild()
	return nil
}

// InitWithWriter points the logger at w. Tests use it to capture output.
func InitWithWriter(w io.Writer, levelName, formatName string, enableColor bool) {
	mu.Lock()
	defer mu.Unlock()

	out, color = w, enableColor
	if levelName != "" {
		if l, ok := levelFromName(levelName); ok {
			level.Set(l)
		}
	}
	if formatName != "" {
		format = normalizeFormat(formatName)
	}

	rebuild()
}

// Debug logs at debug level: Debug("msg", "key", value, ...).
func Debug(msg string, args ...any) {
	active.Load().Debug(msg, args...)
}

// Info logs at info level.
func Info(msg string, args ...any) {
	active.Load().Info(msg, args...)
}

// Warn logs at warn level.
func Warn(msg string, args ...any) {
	active.Load().Warn(msg, args...)
}

// Error logs at error level.
func Error(msg string, args ...any) {
	active.Load().Error(msg, args...)
}

// With returns a logger carrying the given attributes on every record.
func With(args ...any) *slog.Logger {
	return active.Load().With(args...)
}
