package util

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds the process logger. Console rendering is opt-in via
// pretty so machine collectors keep JSON.
func NewLogger(level string, pretty bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	var out = zerolog.New(os.Stdout)
	if pretty {
		out = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.TimeOnly})
	}
	return out.With().Timestamp().Logger().Level(lvl)
}
