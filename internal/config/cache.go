package config

import "path/filepath"

// GetCacheFilePath returns the path of the JSON file caching the remote
// assistant and thread ids across restarts.
func GetCacheFilePath() string {
	return GetEnvOrDefault("CACHE_FILE_PATH", filepath.Join("temp", "cache.json"))
}
