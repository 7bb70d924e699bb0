package chat

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/TrungLeDangThanh/personal-trainer/internal/services/identity"
	"github.com/TrungLeDangThanh/personal-trainer/internal/services/session"
	"github.com/TrungLeDangThanh/personal-trainer/internal/services/trainer"
	"github.com/TrungLeDangThanh/personal-trainer/pkg/httpext"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

type TurnRequest struct {
	Prompt string `json:"prompt" validate:"required,max=4000"`
}

type TurnResponse struct {
	Response string `json:"response"`
	Runtime  string `json:"runtime"`
	Status   string `json:"status"`
}

// use a single instance of Validate, it caches struct info
var validate = validator.New(validator.WithRequiredStructEnabled())

// HandleChatTurn handles one prompt/reply exchange over plain HTTP. The
// response blocks until the assistant answers, fails, or the wait deadline
// passes.
func HandleChatTurn(sessionService *session.Service, identityService *identity.Service, trainerService trainer.Service, w http.ResponseWriter, r *http.Request) {
	// Parse request
	var req TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn().Err(err).Msg("Client sent malformed JSON request")
		httpext.JsonError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	// Validate request against model constraints
	if err := validate.Struct(req); err != nil {
		log.Warn().Err(err).Msg("Request validation failed")
		httpext.JsonError(w, fmt.Sprintf("Invalid request: %v", err), http.StatusBadRequest)
		return
	}

	sessionID, err := sessionService.EnsureSession(w, r)
	if err != nil {
		log.Error().Err(err).Msg("Failed to establish session")
		httpext.JsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	log.Info().
		Str("session_id", sessionID).
		Str("client_ip", r.RemoteAddr).
		Int("prompt_length", len(req.Prompt)).
		Msg("Received chat turn request")

	id, err := identityService.Resolve(r.Context(), sessionID)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("Failed to resolve chat identity")
		httpext.JsonErrorKind(w, "Could not reach the assistant", "identity_unavailable", http.StatusBadGateway)
		return
	}

	result := trainerService.ProcessTurn(r.Context(), id, req.Prompt)
	switch result.Outcome {
	case trainer.OutcomeSubmitFailed:
		log.Error().Err(result.Err).Str("session_id", sessionID).Msg("Failed to submit prompt")
		httpext.JsonErrorKind(w, "Could not submit prompt", string(result.Outcome), http.StatusBadGateway)
		return
	case trainer.OutcomeRunFailed:
		log.Error().Err(result.Err).Str("session_id", sessionID).Str("run_status", string(result.RunStatus)).Msg("Assistant run failed")
		httpext.JsonErrorKind(w, "The assistant could not answer", string(result.Outcome), http.StatusBadGateway)
		return
	case trainer.OutcomeTimedOut:
		log.Error().Err(result.Err).Str("session_id", sessionID).Str("run_status", string(result.RunStatus)).Msg("Gave up waiting for the assistant")
		httpext.JsonErrorKind(w, "Timed out waiting for the assistant", string(result.Outcome), http.StatusGatewayTimeout)
		return
	}

	// Send response
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(TurnResponse{
		Response: result.Response,
		Runtime:  result.Runtime,
		Status:   string(result.Outcome),
	}); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
		return
	}

	log.Info().
		Str("session_id", sessionID).
		Str("runtime", result.Runtime).
		Dur("elapsed", result.Elapsed).
		Int("status", http.StatusOK).
		Msg("Chat turn processed successfully")
}
