package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/TrungLeDangThanh/personal-trainer/internal/connections"
	"github.com/TrungLeDangThanh/personal-trainer/internal/infrastructure/redis"
	"github.com/rs/zerolog/log"
)

type HealthResponse struct {
	Status            string `json:"status"`
	Redis             string `json:"redis"`
	ActiveConnections int    `json:"active_connections"`
}

// HandleHealth reports liveness, whether the shared Redis store is still
// reachable, and the number of connected chat sockets.
func HandleHealth(redisService *redis.Service, manager *connections.Manager, w http.ResponseWriter, r *http.Request) {
	redisStatus := "unconfigured"
	if redisService != nil {
		redisStatus = "ok"
		if err := redisService.Ping(r.Context()); err != nil {
			redisStatus = "unreachable"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(HealthResponse{
		Status:            "ok",
		Redis:             redisStatus,
		ActiveConnections: manager.Count(),
	}); err != nil {
		log.Error().Err(err).Msg("Failed to encode health response")
	}
}
