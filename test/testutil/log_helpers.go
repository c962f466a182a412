package testutil

import (
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitTestLogger configures a console logger suited to test output. Tests
// default to error level so expected per-metric warnings stay quiet; set
// LOG_LEVEL to override.
func InitTestLogger() {
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(ParseLogLevel(zerolog.ErrorLevel))
}

// TestLogLevel sets the global log level for one test and returns a restore
// function for deferring.
func TestLogLevel(t *testing.T, level zerolog.Level) func() {
	t.Helper()
	prevLevel := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(level)
	return func() {
		zerolog.SetGlobalLevel(prevLevel)
	}
}

// ParseLogLevel parses the LOG_LEVEL environment variable, falling back to
// the given default.
func ParseLogLevel(defaultLevel zerolog.Level) zerolog.Level {
	levelStr := os.Getenv("LOG_LEVEL")
	if levelStr == "" {
		return defaultLevel
	}

	level, err := zerolog.ParseLevel(levelStr)
	if err != nil {
		return defaultLevel
	}
	return level
}
