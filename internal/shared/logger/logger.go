package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New configures the process logger. Console output is the default;
// LOG_FORMAT=json switches to plain JSON for log shippers. LOG_LEVEL
// accepts the usual zerolog level names.
func New() zerolog.Logger {
	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "json") {
		out = os.Stderr
	}
	return NewWithWriter(out)
}

// NewWithWriter builds a logger on the given writer and installs it as
// the global zerolog logger.
func NewWithWriter(out io.Writer) zerolog.Logger {
	level := zerolog.InfoLevel
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(raw)); err == nil {
			level = parsed
		}
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}
