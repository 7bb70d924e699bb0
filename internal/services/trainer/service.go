package trainer

import (
	"context"
	"time"

	"github.com/TrungLeDangThanh/personal-trainer/internal/services/identity"
	"github.com/sashabaranov/go-openai"
)

// Outcome classifies how a chat turn ended.
type Outcome string

const (
	// OutcomeCompleted means the run finished and the reply was read back.
	OutcomeCompleted Outcome = "completed"
	// OutcomeSubmitFailed means the turn never reached a running state:
	// appending the prompt or starting the run failed.
	OutcomeSubmitFailed Outcome = "submit_failed"
	// OutcomeRunFailed means the provider reported a terminal failure, or a
	// completed run yielded no readable reply.
	OutcomeRunFailed Outcome = "run_failed"
	// OutcomeTimedOut means the run was still not terminal when the overall
	// deadline expired, or the caller gave up waiting.
	OutcomeTimedOut Outcome = "timed_out"
)

// TurnResult is the full account of one turn. Outcome is always set; Err is
// set for every outcome except OutcomeCompleted. Runtime is the provider-side
// duration formatted as HH:MM:SS, Elapsed the wall-clock wait on our side.
type TurnResult struct {
	Outcome   Outcome
	Response  string
	Elapsed   time.Duration
	Runtime   string
	RunStatus openai.RunStatus
	Err       error
}

// Service defines the interface for turn processing
type Service interface {
	// ProcessTurn appends the prompt to the session's thread, drives a run to
	// a terminal state, and reads back the assistant's reply.
	ProcessTurn(ctx context.Context, id identity.Identity, prompt string) TurnResult
}
