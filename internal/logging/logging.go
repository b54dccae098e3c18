// Package logging configures the process-wide structured logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config selects log outputs and verbosity.
type Config struct {
	Level   string    // debug, info, warn, error (default info)
	Out     io.Writer // console destination (default stderr)
	NoColor bool
	File    string // optional JSON log file, appended to
}

// Logger is the process-wide logger. It discards everything until Init.
var Logger = zerolog.Nop()

var logFile *os.File

// Init builds Logger from cfg and installs it as the zerolog/log default.
func Init(cfg Config) error {
	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}
	writers := []io.Writer{zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: "15:04:05",
		NoColor:    cfg.NoColor,
	}}

	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		Close()
		logFile = f
		writers = append(writers, f)
	}

	Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Logger()
	log.Logger = Logger
	return nil
}

// Close releases the log file opened by Init, if any.
func Close() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Module returns a child logger tagged with module.
func Module(module string) zerolog.Logger {
	return Logger.With().Str("module", module).Logger()
}

func Debug(module string) *zerolog.Event { return Logger.Debug().Str("module", module) }
func Info(module string) *zerolog.Event  { return Logger.Info().Str("module", module) }
func Warn(module string) *zerolog.Event  { return Logger.Warn().Str("module", module) }
func Error(module string) *zerolog.Event { return Logger.Error().Str("module", module) }
