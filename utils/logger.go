package utils

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns the application logger. APP_ENV=dev (or development)
// switches to a human-friendly console writer.
func NewLogger(env string) zerolog.Logger {
	l := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if env == "dev" || env == "development" {
		l = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().Timestamp().Logger()
	}
	return l
}
