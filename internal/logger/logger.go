// Package logger configures the process-wide zerolog logger.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

// Logger is the application logger instance
var Logger zerolog.Logger

// Init sends logs to stderr; stdout is reserved for command output.
func Init(level, format string) {
	InitWithWriter(level, format, os.Stderr)
}

// InitWithWriter configures Logger (and zerolog's global logger) to write
// to out. format is "json" or anything else for human-readable lines.
func InitWithWriter(level, format string, out io.Writer) {
	zerolog.SetGlobalLevel(parseLogLevel(level))

	w := out
	if !strings.EqualFold(format, "json") {
		w = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.Kitchen,
			NoColor:    !isTerminal(out),
		}
	}

	Logger = zerolog.New(w).With().Timestamp().Str("app", "eventctl").Logger()
	log.Logger = Logger
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// parseLogLevel maps a LOG_LEVEL value to zerolog. Unknown values mean warn.
func parseLogLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off", "none":
		return zerolog.Disabled
	}
	return zerolog.WarnLevel
}

// GetLogger returns the configured logger instance
func GetLogger() zerolog.Logger {
	return Logger
}
