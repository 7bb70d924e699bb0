package assistant

// UserMessage represents one prompt sent by the widget over the chat socket
type UserMessage struct {
	Content   string `json:"content"`
	MessageID string `json:"message_id,omitempty"`
}

// AssistantResponse represents a server push on the chat socket. Each prompt
// gets two: a processing acknowledgement, then the reply or an error.
type AssistantResponse struct {
	RequestID string `json:"request_id"`
	MessageID string `json:"message_id,omitempty"`
	Content   string `json:"content,omitempty"`
	Runtime   string `json:"runtime,omitempty"`
	Status    string `json:"status"` // "processing", "complete", or "error"
}

// ResponseStatus defines the possible states of an assistant response
const (
	StatusProcessing = "processing"
	StatusComplete   = "complete"
	StatusError      = "error"
)
