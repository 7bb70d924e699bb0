package config

import "path/filepath"

// GetLogFilePath returns the path of the append-only audit log file.
func GetLogFilePath() string {
	return GetEnvOrDefault("LOG_FILE_PATH", filepath.Join("temp", "trainer.log"))
}

// GetLogLevel returns the configured log level name, defaulting to info.
func GetLogLevel() string {
	return GetEnvOrDefault("LOG_LEVEL", "info")
}
