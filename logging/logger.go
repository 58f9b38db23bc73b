package logging

import (
	"os"
	"time"

	"github.com/masingita/countrybot/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Setup() {
	var logContext zerolog.Context
	if config.ConsoleOutput {
		logContext = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With()
	} else {
		logContext = log.With()
	}
	log.Logger = logContext.Timestamp().Caller().Logger().
		Hook(contextHook{}).
		Hook(FieldHook{Fields: map[string]string{"service": "countrybot"}})
	zerolog.LevelFieldName = "severity"
	zerolog.TimestampFieldName = "timestamp"
	zerolog.TimeFieldFormat = time.RFC3339Nano

	zerolog.SetGlobalLevel(parseLevel(config.LogLevel))
}

// parseLevel falls back to debug for unknown or empty levels
func parseLevel(level string) zerolog.Level {
	l, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		return zerolog.DebugLevel
	}
	return l
}
