package main

import (
	"net/http"

	"github.com/TrungLeDangThanh/personal-trainer/internal/api/v1/handlers"
	"github.com/TrungLeDangThanh/personal-trainer/internal/config"
	"github.com/TrungLeDangThanh/personal-trainer/internal/connections"
	"github.com/TrungLeDangThanh/personal-trainer/internal/logger"
	"github.com/TrungLeDangThanh/personal-trainer/internal/services"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

func main() {
	closeLogs, err := logger.Setup()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up logging")
	}
	defer closeLogs()

	svcs, err := services.InitializeServices()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}

	manager := connections.NewManager(connections.DefaultTimeouts)
	router := setupRouter(svcs, manager)

	addr := config.GetServerAddr()
	log.Info().Str("addr", addr).Msg("Server starting")
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatal().Err(err).Msg("ListenAndServe error")
	}
}

func setupRouter(svcs *services.Services, manager *connections.Manager) *mux.Router {
	router := mux.NewRouter()
	handlers.RegisterRoutes(router, svcs, manager)
	return router
}
