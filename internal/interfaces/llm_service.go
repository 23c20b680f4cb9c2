package interfaces

import "context"

// LLMMode indicates where inference runs.
type LLMMode string

const (
	LLMModeCloud   LLMMode = "cloud"
	LLMModeOffline LLMMode = "offline"
)

// Message is one turn of a model conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// LLMService generates chat completions.
type LLMService interface {
	// Chat sends the message sequence to the model and returns the reply text.
	Chat(ctx context.Context, messages []Message) (string, error)

	// ChatWithSystem is Chat with a system instruction prepended.
	ChatWithSystem(ctx context.Context, system string, messages []Message) (string, error)

	// HealthCheck verifies the backing model is reachable.
	HealthCheck(ctx context.Context) error

	// GetMode returns whether this service calls a cloud API or runs locally.
	GetMode() LLMMode

	// Close releases any client resources.
	Close() error
}
