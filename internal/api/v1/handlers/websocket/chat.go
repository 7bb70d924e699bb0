package websocket

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/TrungLeDangThanh/personal-trainer/internal/assistant"
	"github.com/TrungLeDangThanh/personal-trainer/internal/connections"
	"github.com/TrungLeDangThanh/personal-trainer/internal/services/identity"
	"github.com/TrungLeDangThanh/personal-trainer/internal/services/session"
	"github.com/TrungLeDangThanh/personal-trainer/internal/services/trainer"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: Implement proper origin checking based on configuration
		return true
	},
}

// HandleChatSocket upgrades the request and runs the widget's chat loop.
// Each incoming prompt gets a processing acknowledgement, then the reply or
// an error. Prompts on one socket are handled in order.
func HandleChatSocket(manager *connections.Manager, sessionService *session.Service, identityService *identity.Service, trainerService trainer.Service, w http.ResponseWriter, r *http.Request) {
	claims, err := sessionService.ValidateSession(r)
	if err != nil || claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Could not upgrade chat socket")
		return
	}

	manager.Add(conn, claims.SessionID)
	defer func() {
		manager.Remove(conn)
		conn.Close()
		log.Info().Str("session_id", claims.SessionID).Int("active", manager.Count()).Msg("Chat socket closed")
	}()

	log.Info().Str("session_id", claims.SessionID).Int("active", manager.Count()).Msg("Chat socket connected")

	timeouts := manager.Timeouts()

	// Set up ping/pong handlers
	conn.SetReadDeadline(time.Now().Add(timeouts.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(timeouts.PongWait))
	})

	// Start ping ticker in separate goroutine
	done := make(chan struct{})
	defer close(done)

	go func() {
		ticker := time.NewTicker(timeouts.PingPeriod)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				deadline := time.Now().Add(timeouts.WriteWait)
				if err := conn.WriteControl(websocket.PingMessage, []byte{}, deadline); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	// Message handling loop
	for {
		conn.SetReadDeadline(time.Now().Add(timeouts.PongWait))

		var msg assistant.UserMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("session_id", claims.SessionID).Msg("Chat socket read failed")
			}
			break
		}

		requestID := uuid.New().String()

		if strings.TrimSpace(msg.Content) == "" {
			if err := writeResponse(conn, timeouts.WriteWait, assistant.AssistantResponse{
				RequestID: requestID,
				MessageID: msg.MessageID,
				Content:   "Prompt cannot be empty",
				Status:    assistant.StatusError,
			}); err != nil {
				break
			}
			continue
		}

		// Acknowledge before the long wait so the widget can show progress.
		if err := writeResponse(conn, timeouts.WriteWait, assistant.AssistantResponse{
			RequestID: requestID,
			MessageID: msg.MessageID,
			Status:    assistant.StatusProcessing,
		}); err != nil {
			break
		}

		response := processTurn(r.Context(), identityService, trainerService, claims.SessionID, msg, requestID)
		if err := writeResponse(conn, timeouts.WriteWait, response); err != nil {
			break
		}
	}
}

func processTurn(ctx context.Context, identityService *identity.Service, trainerService trainer.Service, sessionID string, msg assistant.UserMessage, requestID string) assistant.AssistantResponse {
	id, err := identityService.Resolve(ctx, sessionID)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("Failed to resolve chat identity")
		return assistant.AssistantResponse{
			RequestID: requestID,
			MessageID: msg.MessageID,
			Content:   "Could not reach the assistant",
			Status:    assistant.StatusError,
		}
	}

	result := trainerService.ProcessTurn(ctx, id, msg.Content)
	if result.Outcome != trainer.OutcomeCompleted {
		log.Error().Err(result.Err).
			Str("session_id", sessionID).
			Str("outcome", string(result.Outcome)).
			Str("run_status", string(result.RunStatus)).
			Msg("Chat turn failed on socket")

		content := "The assistant could not answer"
		switch result.Outcome {
		case trainer.OutcomeSubmitFailed:
			content = "Could not submit prompt"
		case trainer.OutcomeTimedOut:
			content = "Timed out waiting for the assistant"
		}

		return assistant.AssistantResponse{
			RequestID: requestID,
			MessageID: msg.MessageID,
			Content:   content,
			Status:    assistant.StatusError,
		}
	}

	return assistant.AssistantResponse{
		RequestID: requestID,
		MessageID: msg.MessageID,
		Content:   result.Response,
		Runtime:   result.Runtime,
		Status:    assistant.StatusComplete,
	}
}

func writeResponse(conn *websocket.Conn, writeWait time.Duration, response assistant.AssistantResponse) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(response); err != nil {
		log.Warn().Err(err).Msg("Failed to write chat socket response")
		return err
	}
	return nil
}
