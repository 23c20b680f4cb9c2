package llm

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/AjjayK/Kronia-Pesticide-LLM/internal/common"
	"github.com/AjjayK/Kronia-Pesticide-LLM/internal/interfaces"
)

// NewLLMService creates the completion service for the configured default
// provider.
func NewLLMService(config *common.Config, logger arbor.ILogger) (interfaces.LLMService, error) {
	switch config.LLM.DefaultProvider {
	case common.LLMProviderGemini:
		return NewGeminiService(&config.Gemini, logger)
	case common.LLMProviderClaude:
		return NewClaudeService(&config.Claude, logger)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", config.LLM.DefaultProvider)
	}
}
