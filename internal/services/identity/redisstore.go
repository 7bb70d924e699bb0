package identity

import (
	"context"
	"encoding/json"

	"github.com/TrungLeDangThanh/personal-trainer/internal/infrastructure/redis"
	"github.com/rs/zerolog/log"
)

const redisKeyPrefix = "trainer:identity:"

// RedisStore keeps one identity per scope, so each browser session gets its
// own assistant and thread. Entries carry no TTL: the remote objects they
// point at outlive any reasonable expiry.
type RedisStore struct {
	redis *redis.Service
}

func NewRedisStore(redisService *redis.Service) *RedisStore {
	return &RedisStore{redis: redisService}
}

func (r *RedisStore) Load(ctx context.Context, scope string) (*Identity, error) {
	data, err := r.redis.Get(ctx, redisKeyPrefix+scope)
	if err != nil {
		return nil, err
	}
	if data == "" {
		return nil, nil
	}

	var id Identity
	if err := json.Unmarshal([]byte(data), &id); err != nil {
		log.Warn().Err(err).Str("scope", scope).Msg("Identity cache corrupt, ignoring")
		return nil, nil
	}
	return &id, nil
}

func (r *RedisStore) Save(ctx context.Context, scope string, id Identity) error {
	data, err := json.Marshal(id)
	if err != nil {
		return err
	}
	return r.redis.Set(ctx, redisKeyPrefix+scope, string(data), 0)
}
