package handlers

import (
	"net/http"

	v1chat "github.com/TrungLeDangThanh/personal-trainer/internal/api/v1/handlers/chat"
	v1ws "github.com/TrungLeDangThanh/personal-trainer/internal/api/v1/handlers/websocket"
	v1mware "github.com/TrungLeDangThanh/personal-trainer/internal/api/v1/middleware"
	"github.com/TrungLeDangThanh/personal-trainer/internal/connections"
	"github.com/TrungLeDangThanh/personal-trainer/internal/services"
	"github.com/gorilla/mux"
)

// RegisterRoutes wires the widget surface and the versioned chat API onto
// the router.
func RegisterRoutes(router *mux.Router, svcs *services.Services, manager *connections.Manager) {
	// Widget surface (no auth required, mints the session cookie)
	router.HandleFunc("/widget", func(w http.ResponseWriter, r *http.Request) {
		HandleWidgetPage(svcs.GetSessionService(), w, r)
	}).Methods("GET")
	router.HandleFunc("/widget.js", func(w http.ResponseWriter, r *http.Request) {
		HandleWidgetJS(svcs.GetSessionService(), w, r)
	}).Methods("GET")

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		HandleHealth(svcs.GetRedisService(), manager, w, r)
	}).Methods("GET")

	// Chat socket (requires the session cookie)
	router.Handle("/ws", v1mware.RateLimit("websocket")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v1ws.HandleChatSocket(manager, svcs.GetSessionService(), svcs.GetIdentityService(), svcs.GetTrainerService(), w, r)
	}))).Methods("GET")

	// v1 routes
	v1 := router.PathPrefix("/v1").Subrouter()

	v1chatRouter := v1.PathPrefix("/chat").Subrouter()
	v1chatRouter.Handle("/turns", v1mware.RateLimit("chat_turn")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v1chat.HandleChatTurn(svcs.GetSessionService(), svcs.GetIdentityService(), svcs.GetTrainerService(), w, r)
	}))).Methods("POST")
}
