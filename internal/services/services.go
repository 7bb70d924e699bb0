package services

import (
	"sync"

	"github.com/TrungLeDangThanh/personal-trainer/internal/config"
	"github.com/TrungLeDangThanh/personal-trainer/internal/infrastructure/openai"
	"github.com/TrungLeDangThanh/personal-trainer/internal/infrastructure/redis"
	"github.com/TrungLeDangThanh/personal-trainer/internal/services/identity"
	"github.com/TrungLeDangThanh/personal-trainer/internal/services/session"
	"github.com/TrungLeDangThanh/personal-trainer/internal/services/trainer"
	"github.com/rs/zerolog/log"
)

var (
	// Mutex for thread-safe initialization
	servicesMu sync.RWMutex
)

type Services struct {
	redisService    *redis.Service
	openAIService   *openai.Service
	sessionService  *session.Service
	identityService *identity.Service
	trainerService  trainer.Service
}

// InitializeServices initializes all required services
func InitializeServices() (*Services, error) {
	servicesMu.Lock()
	defer servicesMu.Unlock()

	log.Info().Msg("Initializing core services")

	// Initialize Redis service (optional)
	redisService := redis.NewService()
	log.Info().Msg("Initializing Redis service")

	// Initialize session service with optional Redis
	sessionService := session.NewService(redisService)
	log.Info().Msg("Initializing session service")

	// Initialize OpenAI service (required)
	openAIService := openai.NewService()
	if openAIService == nil {
		log.Fatal().Msg("Failed to initialize OpenAI service - service is required for core functionality")
	}

	// Initialize identity service with the best available store
	identityService := identity.NewService(openAIService.GetClient(), newIdentityStore(redisService))
	log.Info().Msg("Initializing identity service")

	// Initialize trainer service (required)
	trainerService := trainer.NewService(openAIService.GetClient())
	log.Info().Msg("Initializing trainer service")

	log.Info().Msg("All services initialized successfully")

	return &Services{
		redisService:    redisService,
		openAIService:   openAIService,
		sessionService:  sessionService,
		identityService: identityService,
		trainerService:  trainerService,
	}, nil
}

// newIdentityStore picks where chat identities live: Redis when available so
// every instance shares one view, otherwise the JSON cache file. Memory is
// the last resort when the cache path cannot be created.
func newIdentityStore(redisService *redis.Service) identity.Store {
	if redisService != nil {
		log.Info().Msg("Using Redis identity store")
		return identity.NewRedisStore(redisService)
	}

	path := config.GetCacheFilePath()
	store, err := identity.NewFileStore(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Cache file unavailable, identities will not survive restarts")
		return identity.NewMemoryStore()
	}
	log.Info().Str("path", path).Msg("Using file identity store")
	return store
}

// GetSessionService returns the session service
func (s *Services) GetSessionService() *session.Service {
	return s.sessionService
}

// GetIdentityService returns the identity service
func (s *Services) GetIdentityService() *identity.Service {
	return s.identityService
}

// GetTrainerService returns the trainer service
func (s *Services) GetTrainerService() trainer.Service {
	return s.trainerService
}

// GetRedisService returns the redis service, nil when not configured
func (s *Services) GetRedisService() *redis.Service {
	return s.redisService
}
