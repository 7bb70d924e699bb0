package config

import (
	"time"

	"github.com/rs/zerolog/log"
)

type RateLimitConfig struct {
	Enabled bool
	MaxHits int
	Window  time.Duration
}

func GetRateLimitConfig(key string) RateLimitConfig {
	enabled := GetEnvOrDefault("RATELIMIT_ENABLED", "false") == "true"

	configs := map[string]RateLimitConfig{
		"chat_turn": {
			Enabled: enabled,
			MaxHits: parseEnvInt("RATELIMIT_CHAT_TURN", 30), // 30 turns per minute
			Window:  time.Minute,
		},
		"websocket": {
			Enabled: enabled,
			MaxHits: parseEnvInt("RATELIMIT_WEBSOCKET", 10), // 10 upgrades per minute
			Window:  time.Minute,
		},
	}

	if config, exists := configs[key]; exists {
		return config
	}

	log.Warn().Str("key", key).Msg("No rate limit config found for key")
	return RateLimitConfig{Enabled: false}
}
