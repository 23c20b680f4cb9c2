package interfaces

import (
	"context"

	"github.com/AjjayK/Kronia-Pesticide-LLM/internal/models"
)

// AskResult is the outcome of one answered question.
type AskResult struct {
	// Answer is the generated reply text.
	Answer string

	// Citations point at the label documents the answer drew on.
	Citations []models.Citation

	// Query is the retrieval query actually used, after any rewriting.
	Query string

	// Weather is the shaped forecast attached to this turn, if any.
	Weather *models.WeatherSnapshot
}

// ChatService runs the full question-answering pipeline for a conversation.
type ChatService interface {
	// Ask answers the question in the context of the conversation, appending
	// both the user turn and the assistant turn to it. Calls for the same
	// conversation are serialized.
	Ask(ctx context.Context, conv *models.Conversation, question string) (*AskResult, error)
}
