package trainer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/TrungLeDangThanh/personal-trainer/internal/config"
	"github.com/TrungLeDangThanh/personal-trainer/internal/services/identity"
	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
)

// Client is the slice of the OpenAI Assistants API the coordinator needs.
// *openai.Client satisfies it.
type Client interface {
	CreateMessage(ctx context.Context, threadID string, request openai.MessageRequest) (openai.Message, error)
	CreateRun(ctx context.Context, threadID string, request openai.RunRequest) (openai.Run, error)
	RetrieveRun(ctx context.Context, threadID string, runID string) (openai.Run, error)
	ListMessage(ctx context.Context, threadID string, limit *int, order *string, after *string, before *string, runID *string) (openai.MessagesList, error)
}

type Implementation struct {
	client Client

	pollInterval   time.Duration
	requestTimeout time.Duration
	runDeadline    time.Duration

	mu      sync.Mutex
	threads map[string]*threadLock
}

// threadLock serializes turns against one thread. refs counts holders and
// waiters; the entry is dropped once it reaches zero.
type threadLock struct {
	sync.Mutex
	refs int
}

func NewService(client Client) Service {
	return &Implementation{
		client:         client,
		pollInterval:   config.GetPollInterval(),
		requestTimeout: config.GetRequestTimeout(),
		runDeadline:    config.GetRunDeadline(),
		threads:        make(map[string]*threadLock),
	}
}

// ProcessTurn runs one prompt/reply exchange. Turns on the same thread are
// serialized: the Assistants API rejects a new run while another is active.
func (s *Implementation) ProcessTurn(ctx context.Context, id identity.Identity, prompt string) TurnResult {
	lock := s.lockThread(id.ThreadID)
	defer s.unlockThread(id.ThreadID, lock)

	if err := s.SubmitPrompt(ctx, id.ThreadID, prompt); err != nil {
		return TurnResult{Outcome: OutcomeSubmitFailed, Err: err}
	}

	run, err := s.StartRun(ctx, id)
	if err != nil {
		return TurnResult{Outcome: OutcomeSubmitFailed, Err: err}
	}

	return s.AwaitCompletion(ctx, id.ThreadID, run)
}

// SubmitPrompt appends the user's prompt to the thread.
func (s *Implementation) SubmitPrompt(ctx context.Context, threadID, prompt string) error {
	reqCtx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	_, err := s.client.CreateMessage(reqCtx, threadID, openai.MessageRequest{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})
	if err != nil {
		log.Error().Err(err).Str("thread_id", threadID).Msg("Failed to append user message")
		return fmt.Errorf("append message: %w", err)
	}

	log.Debug().Str("thread_id", threadID).Msg("User message appended to thread")
	return nil
}

// StartRun asks the assistant to process the thread.
func (s *Implementation) StartRun(ctx context.Context, id identity.Identity) (openai.Run, error) {
	reqCtx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	run, err := s.client.CreateRun(reqCtx, id.ThreadID, openai.RunRequest{
		AssistantID:  id.AssistantID,
		Instructions: config.GetInstructions(),
	})
	if err != nil {
		log.Error().Err(err).Str("thread_id", id.ThreadID).Msg("Failed to start run")
		return openai.Run{}, fmt.Errorf("start run: %w", err)
	}

	log.Info().Str("run_id", run.ID).Str("thread_id", id.ThreadID).Msg("Run started")
	return run, nil
}

// AwaitCompletion polls the run until it reaches a terminal state or the
// overall deadline expires. Every refresh uses its own request timeout, so a
// hung poll cannot stall the loop past the deadline.
func (s *Implementation) AwaitCompletion(ctx context.Context, threadID string, run openai.Run) TurnResult {
	started := time.Now()
	deadline := started.Add(s.runDeadline)
	current := run

	for {
		switch current.Status {
		case openai.RunStatusCompleted:
			return s.completedResult(ctx, threadID, current, started)
		case openai.RunStatusFailed, openai.RunStatusCancelled, openai.RunStatusExpired, openai.RunStatusIncomplete:
			log.Error().Str("run_id", current.ID).Str("status", string(current.Status)).Msg("Run ended without a reply")
			return TurnResult{
				Outcome:   OutcomeRunFailed,
				Elapsed:   time.Since(started),
				RunStatus: current.Status,
				Err:       fmt.Errorf("run %s ended with status %s", current.ID, current.Status),
			}
		}

		if time.Now().After(deadline) {
			log.Warn().Str("run_id", current.ID).Str("status", string(current.Status)).Dur("deadline", s.runDeadline).Msg("Gave up waiting for run")
			return TurnResult{
				Outcome:   OutcomeTimedOut,
				Elapsed:   time.Since(started),
				RunStatus: current.Status,
				Err:       fmt.Errorf("run %s still %s after %s", current.ID, current.Status, s.runDeadline),
			}
		}

		select {
		case <-ctx.Done():
			return TurnResult{
				Outcome:   OutcomeTimedOut,
				Elapsed:   time.Since(started),
				RunStatus: current.Status,
				Err:       ctx.Err(),
			}
		case <-time.After(s.pollInterval):
		}

		refreshed, err := s.retrieveRun(ctx, threadID, current.ID)
		if err != nil {
			// A fetch torn down by caller cancellation is the caller giving
			// up, not the run failing.
			if ctx.Err() != nil {
				return TurnResult{
					Outcome:   OutcomeTimedOut,
					Elapsed:   time.Since(started),
					RunStatus: current.Status,
					Err:       ctx.Err(),
				}
			}
			log.Error().Err(err).Str("run_id", current.ID).Msg("Failed to poll run")
			return TurnResult{
				Outcome:   OutcomeRunFailed,
				Elapsed:   time.Since(started),
				RunStatus: current.Status,
				Err:       fmt.Errorf("poll run: %w", err),
			}
		}
		current = refreshed
		log.Debug().Str("run_id", current.ID).Str("status", string(current.Status)).Msg("Polled run")
	}
}

func (s *Implementation) retrieveRun(ctx context.Context, threadID, runID string) (openai.Run, error) {
	reqCtx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()
	return s.client.RetrieveRun(reqCtx, threadID, runID)
}

func (s *Implementation) completedResult(ctx context.Context, threadID string, run openai.Run, started time.Time) TurnResult {
	response, err := s.extractResponse(ctx, threadID, run)
	if err != nil {
		log.Error().Err(err).Str("run_id", run.ID).Msg("Failed to read back reply")
		return TurnResult{
			Outcome:   OutcomeRunFailed,
			Elapsed:   time.Since(started),
			RunStatus: run.Status,
			Err:       err,
		}
	}

	completedAt := time.Now().Unix()
	if run.CompletedAt != nil {
		completedAt = *run.CompletedAt
	}
	runtime := FormatRuntime(run.CreatedAt, completedAt)

	log.Info().Str("run_id", run.ID).Str("runtime", runtime).Msg("Run completed")
	return TurnResult{
		Outcome:   OutcomeCompleted,
		Response:  response,
		Elapsed:   time.Since(started),
		Runtime:   runtime,
		RunStatus: run.Status,
	}
}

// extractResponse reads the assistant's reply for the given run. Listing is
// scoped to the run id, newest first, so replies from earlier turns on the
// same thread can never bleed through.
func (s *Implementation) extractResponse(ctx context.Context, threadID string, run openai.Run) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	limit := 1
	order := "desc"
	list, err := s.client.ListMessage(reqCtx, threadID, &limit, &order, nil, nil, &run.ID)
	if err != nil {
		return "", fmt.Errorf("list messages: %w", err)
	}

	for _, msg := range list.Messages {
		if msg.Role != openai.ChatMessageRoleAssistant {
			continue
		}
		for _, part := range msg.Content {
			if part.Type == "text" && part.Text != nil {
				return part.Text.Value, nil
			}
		}
	}
	return "", fmt.Errorf("run %s produced no assistant text", run.ID)
}

// FormatRuntime renders the provider-side duration between two unix
// timestamps as HH:MM:SS. Negative spans clamp to zero and spans of a day or
// more wrap, matching a 24-hour clock face.
func FormatRuntime(createdAt, completedAt int64) string {
	elapsed := completedAt - createdAt
	if elapsed < 0 {
		elapsed = 0
	}
	elapsed %= 24 * 60 * 60

	hours := elapsed / 3600
	minutes := (elapsed % 3600) / 60
	seconds := elapsed % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

func (s *Implementation) lockThread(threadID string) *threadLock {
	s.mu.Lock()
	lock, ok := s.threads[threadID]
	if !ok {
		lock = &threadLock{}
		s.threads[threadID] = lock
	}
	lock.refs++
	s.mu.Unlock()

	lock.Lock()
	return lock
}

// unlockThread must release the thread lock before touching the table; see
// identity.Service.unlockScope for the ordering constraint.
func (s *Implementation) unlockThread(threadID string, lock *threadLock) {
	lock.Unlock()

	s.mu.Lock()
	lock.refs--
	if lock.refs == 0 {
		delete(s.threads, threadID)
	}
	s.mu.Unlock()
}
