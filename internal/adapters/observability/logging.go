package observability

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns a zerolog Logger.
// APP_ENV=dev (or development) uses a human-friendly console writer and
// defaults to debug level; level, when parseable, overrides the default.
func NewLogger(env, level string) zerolog.Logger {
	dev := env == "dev" || env == "development"

	l := zerolog.New(os.Stdout).With().Timestamp().Logger()
	lvl := zerolog.InfoLevel
	if dev {
		l = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().Timestamp().Logger()
		lvl = zerolog.DebugLevel
	}
	if parsed, err := zerolog.ParseLevel(level); err == nil && level != "" {
		lvl = parsed
	}
	return l.Level(lvl)
}
