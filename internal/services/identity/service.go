package identity

import (
	"context"
	"fmt"
	"sync"

	"github.com/TrungLeDangThanh/personal-trainer/internal/config"
	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
)

// Identity carries the remote-assigned assistant and thread ids for one chat
// session. It is resolved once per turn and passed explicitly through every
// call; nothing caches it in package state.
type Identity struct {
	AssistantID string `json:"assistant_id"`
	ThreadID    string `json:"thread_id"`
}

// Store persists identities across restarts and page reloads. Implementations
// must treat missing or corrupt state as absent rather than failing.
type Store interface {
	// Load returns the cached identity for scope, or nil when absent.
	Load(ctx context.Context, scope string) (*Identity, error)
	Save(ctx context.Context, scope string, id Identity) error
}

// Client is the slice of the OpenAI Assistants API the resolver needs.
// *openai.Client satisfies it.
type Client interface {
	CreateAssistant(ctx context.Context, request openai.AssistantRequest) (openai.Assistant, error)
	RetrieveAssistant(ctx context.Context, assistantID string) (openai.Assistant, error)
	CreateThread(ctx context.Context, request openai.ThreadRequest) (openai.Thread, error)
	RetrieveThread(ctx context.Context, threadID string) (openai.Thread, error)
}

// Service resolves the assistant/thread pair for a session: cached ids are
// verified against the remote API and silently replaced when the lookup
// fails; absent ids are created. Creations are persisted immediately.
type Service struct {
	client Client
	store  Store

	mu     sync.Mutex
	scopes map[string]*scopeLock
}

// scopeLock serializes resolves for one scope. refs counts holders and
// waiters; the entry is dropped once it reaches zero, so the table does not
// grow with session churn.
type scopeLock struct {
	sync.Mutex
	refs int
}

func NewService(client Client, store Store) *Service {
	return &Service{
		client: client,
		store:  store,
		scopes: make(map[string]*scopeLock),
	}
}

// Resolve loads, verifies, and completes the identity for scope. Lookup
// failures are healed by recreation and never surfaced; only creation
// failures propagate. Concurrent resolves for one scope are serialized so a
// shared store cannot race duplicate creations.
func (s *Service) Resolve(ctx context.Context, scope string) (Identity, error) {
	lock := s.lockScope(scope)
	defer s.unlockScope(scope, lock)

	var id Identity
	cached, err := s.store.Load(ctx, scope)
	if err != nil {
		log.Warn().Err(err).Str("scope", scope).Msg("Identity cache unreadable, starting fresh")
	} else if cached != nil {
		id = *cached
	}

	if id.AssistantID != "" {
		log.Info().Str("assistant_id", id.AssistantID).Msg("Assistant ID exists. Retrieving Assistant")
		if _, err := s.client.RetrieveAssistant(ctx, id.AssistantID); err != nil {
			log.Error().Err(err).Str("assistant_id", id.AssistantID).Msg("Failed to retrieve Assistant")
			id.AssistantID = ""
		} else {
			log.Info().Str("assistant_id", id.AssistantID).Msg("Assistant retrieved successfully")
		}
	}
	if id.AssistantID == "" {
		log.Info().Msg("Assistant ID not found. Creating new Assistant")
		assistantID, err := s.createAssistant(ctx)
		if err != nil {
			return Identity{}, fmt.Errorf("create assistant: %w", err)
		}
		id.AssistantID = assistantID
		log.Info().Str("assistant_id", id.AssistantID).Msg("New Assistant has been created")
		s.persist(ctx, scope, id)
	}

	if id.ThreadID != "" {
		log.Info().Str("thread_id", id.ThreadID).Msg("Thread ID exists. Retrieving Thread")
		if _, err := s.client.RetrieveThread(ctx, id.ThreadID); err != nil {
			log.Error().Err(err).Str("thread_id", id.ThreadID).Msg("Failed to retrieve Thread")
			id.ThreadID = ""
		} else {
			log.Info().Str("thread_id", id.ThreadID).Msg("Thread retrieved successfully")
		}
	}
	if id.ThreadID == "" {
		log.Info().Msg("Thread ID not found. Creating new Thread")
		thread, err := s.client.CreateThread(ctx, openai.ThreadRequest{})
		if err != nil {
			return Identity{}, fmt.Errorf("create thread: %w", err)
		}
		id.ThreadID = thread.ID
		log.Info().Str("thread_id", id.ThreadID).Msg("New Thread has been created")
		s.persist(ctx, scope, id)
	}

	return id, nil
}

func (s *Service) createAssistant(ctx context.Context) (string, error) {
	name := config.GetAssistantName()
	instructions := config.GetInstructions()

	assistant, err := s.client.CreateAssistant(ctx, openai.AssistantRequest{
		Model:        config.GetAssistantModel(),
		Name:         &name,
		Instructions: &instructions,
	})
	if err != nil {
		return "", err
	}
	return assistant.ID, nil
}

// persist writes the identity back after a creation. A failed write costs a
// re-creation on the next cold start but must not fail the live session.
func (s *Service) persist(ctx context.Context, scope string, id Identity) {
	if err := s.store.Save(ctx, scope, id); err != nil {
		log.Error().Err(err).Str("scope", scope).Msg("Failed to persist identity cache")
	}
}

func (s *Service) lockScope(scope string) *scopeLock {
	s.mu.Lock()
	lock, ok := s.scopes[scope]
	if !ok {
		lock = &scopeLock{}
		s.scopes[scope] = lock
	}
	lock.refs++
	s.mu.Unlock()

	lock.Lock()
	return lock
}

// unlockScope must release the scope lock before touching the table: a
// deleted entry may only ever have been free, or a fresh resolve could enter
// the critical section alongside a holder of the old lock.
func (s *Service) unlockScope(scope string, lock *scopeLock) {
	lock.Unlock()

	s.mu.Lock()
	lock.refs--
	if lock.refs == 0 {
		delete(s.scopes, scope)
	}
	s.mu.Unlock()
}
