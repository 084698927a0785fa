package cli

import (
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/billysbar/tlmerge/internal/config"
)

// initLogging points the global zerolog logger at root's log_level/log
// settings, tagging every line with a fresh run id so a run's diagnostics
// can be told apart in a shared log file.
func initLogging(root *config.RootConfig) error {
	zerolog.TimeFieldFormat = time.RFC3339

	level, disabled := parseLevel(root.LogLevel())
	zerolog.SetGlobalLevel(level)

	writers := []io.Writer{zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}}
	if path := root.LogFile(); path != "" {
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return err
		}
		writers = append(writers, file)
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		With().Timestamp().Str("run_id", uuid.NewString()).Logger()
	if disabled {
		logger = logger.Level(zerolog.Disabled)
	}
	log.Logger = logger
	return nil
}

// parseLevel maps RootConfig's log levels (debug/info/warn/error/silent)
// onto zerolog's, since zerolog has no "silent" level of its own.
func parseLevel(raw string) (zerolog.Level, bool) {
	if raw == "silent" {
		return zerolog.Disabled, true
	}
	level, err := zerolog.ParseLevel(raw)
	if err != nil {
		return zerolog.InfoLevel, false
	}
	return level, false
}
