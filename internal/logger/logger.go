package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/TrungLeDangThanh/personal-trainer/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global logger: human-readable lines on stderr plus an
// append-only log file at the configured path. The file and its directory are
// created if missing. Returns a close function for the file handle.
func Setup() (func(), error) {
	level, err := zerolog.ParseLevel(config.GetLogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}

	file, err := openLogFile(config.GetLogFilePath())
	if err != nil {
		log.Logger = zerolog.New(console).With().Timestamp().Logger()
		log.Error().Err(err).Str("path", config.GetLogFilePath()).
			Msg("Failed to open log file, logging to console only")
		return func() {}, nil
	}

	fileWriter := zerolog.ConsoleWriter{Out: file, TimeFormat: time.RFC3339, NoColor: true}
	log.Logger = zerolog.New(zerolog.MultiLevelWriter(console, fileWriter)).
		With().Timestamp().Logger()

	return func() { _ = file.Close() }, nil
}

func openLogFile(path string) (io.WriteCloser, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
}
