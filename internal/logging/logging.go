// Package logging configures zerolog for askwidget.
//
// The chat TUI owns the terminal, so interactive runs log to a rotating file
// instead of stderr.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/lnmiit/askwidget/internal/config"
)

const (
	maxLogSizeMB  = 5
	maxLogBackups = 5
	maxLogAgeDays = 14
)

// Init points the global zerolog logger at the rotating log file for cfg.
// If the log directory cannot be created, logs are discarded and the error is
// returned so the caller can decide whether to warn.
func Init(cfg config.Config) (zerolog.Logger, error) {
	level := ParseLevel(cfg.LogLevel)

	logPath := config.GetLogPath(cfg)
	if err := os.MkdirAll(filepath.Dir(logPath), 0o700); err != nil {
		logger := New(io.Discard, level)
		log.Logger = logger
		return logger, err
	}

	writer := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    maxLogSizeMB,
		MaxBackups: maxLogBackups,
		MaxAge:     maxLogAgeDays,
		Compress:   true,
	}

	logger := New(writer, level)
	log.Logger = logger
	return logger, nil
}

// InitConsole points the global logger at a human-readable stderr writer.
// Used by commands that do not take over the terminal.
func InitConsole(cfg config.Config) zerolog.Logger {
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	logger := New(out, ParseLevel(cfg.LogLevel))
	log.Logger = logger
	return logger
}

// New builds a timestamped logger writing JSON lines to out.
func New(out io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// ParseLevel converts a string level into zerolog.Level with a safe default.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
