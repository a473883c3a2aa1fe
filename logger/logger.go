// Package logger configures the process-wide zerolog logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ParseLevel maps SILENT, ERROR, WARN (or WARNING), INFO and DEBUG, in any
// case, to a zerolog level. Anything else is INFO.
func ParseLevel(name string) zerolog.Level {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "SILENT":
		return zerolog.Disabled
	case "ERROR":
		return zerolog.ErrorLevel
	case "WARN", "WARNING":
		return zerolog.WarnLevel
	case "DEBUG":
		return zerolog.DebugLevel
	default:
		return zerolog.InfoLevel
	}
}

// ValidLevel reports whether name is one of the names ParseLevel knows.
func ValidLevel(name string) bool {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "SILENT", "ERROR", "WARN", "WARNING", "INFO", "DEBUG":
		return true
	}
	return false
}

func LevelString(level zerolog.Level) string {
	switch level {
	case zerolog.Disabled:
		return "SILENT"
	case zerolog.ErrorLevel:
		return "ERROR"
	case zerolog.WarnLevel:
		return "WARN"
	case zerolog.DebugLevel:
		return "DEBUG"
	default:
		return "INFO"
	}
}

// Init replaces the global logger. With console set, output is the human
// readable zerolog console format; otherwise one JSON object per line.
func Init(level zerolog.Level, w io.Writer, console bool) {
	if w == nil {
		w = os.Stderr
	}
	if console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	}

	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}

// OpenFile opens path for appending log lines, creating its directory.
func OpenFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return file, nil
}
