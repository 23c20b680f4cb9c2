package chat

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/AjjayK/Kronia-Pesticide-LLM/internal/models"
)

// PromptBundle is the composed prompt for one answer generation. It is built,
// sent, and discarded; nothing here is persisted.
type PromptBundle struct {
	System string
	User   string
}

// PromptBuilder assembles the tagged answer prompt from the turn's inputs.
type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// Build composes the answer prompt. History and evidence are always present
// as blocks (possibly empty); image analysis and weather blocks appear only
// when they carry data.
func (b *PromptBuilder) Build(history []*models.ConversationTurn, evidence *models.SearchResponse, imageAnalysis string, weather *models.WeatherSnapshot, question string) (*PromptBundle, error) {
	var user strings.Builder

	writeBlock(&user, "chat_history", formatHistory(history))
	writeBlock(&user, "context", formatEvidence(evidence))

	if imageAnalysis != "" {
		writeBlock(&user, "image_analysis", imageAnalysis)
	}

	if !weather.Empty() {
		weatherText, err := formatWeather(weather)
		if err != nil {
			return nil, err
		}
		writeBlock(&user, "weather", weatherText)
	}

	writeBlock(&user, "question", question)
	user.WriteString("Answer:")

	return &PromptBundle{
		System: answerSystemPrompt,
		User:   user.String(),
	}, nil
}

func writeBlock(b *strings.Builder, tag, content string) {
	b.WriteString("<" + tag + ">\n")
	if content != "" {
		b.WriteString(content)
		b.WriteString("\n")
	}
	b.WriteString("</" + tag + ">\n")
}

// formatEvidence renders retrieved chunks with their product metadata so the
// model can attribute statements to a label.
func formatEvidence(evidence *models.SearchResponse) string {
	if evidence == nil || len(evidence.Results) == 0 {
		return ""
	}

	var parts []string
	for i, chunk := range evidence.Results {
		header := fmt.Sprintf("Excerpt %d", i+1)
		if chunk.ProductName != "" {
			header += fmt.Sprintf(" (product: %s", chunk.ProductName)
			if chunk.SignalWord != "" {
				header += fmt.Sprintf(", signal word: %s", chunk.SignalWord)
			}
			header += ")"
		}
		parts = append(parts, header+":\n"+chunk.Chunk)
	}

	return strings.Join(parts, "\n\n")
}

// formatWeather renders the shaped snapshot as compact JSON. The snapshot is
// already reduced to the prompt metric set.
func formatWeather(weather *models.WeatherSnapshot) (string, error) {
	data, err := json.Marshal(weather)
	if err != nil {
		return "", fmt.Errorf("failed to render weather snapshot: %w", err)
	}
	return string(data), nil
}
