package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/AjjayK/Kronia-Pesticide-LLM/internal/interfaces"
	"github.com/AjjayK/Kronia-Pesticide-LLM/internal/models"
)

// QueryRewriter condenses the recent conversation plus a follow-up question
// into one standalone retrieval query.
type QueryRewriter struct {
	llm    interfaces.LLMService
	logger arbor.ILogger
}

func NewQueryRewriter(llm interfaces.LLMService, logger arbor.ILogger) *QueryRewriter {
	return &QueryRewriter{
		llm:    llm,
		logger: logger,
	}
}

// Rewrite returns the retrieval query for the question. With no history the
// question passes through untouched; otherwise the completion service folds
// the history into a standalone query. Rewrite failures propagate so the
// turn fails rather than retrieving against the wrong query.
func (r *QueryRewriter) Rewrite(ctx context.Context, history []*models.ConversationTurn, question string) (string, error) {
	if len(history) == 0 {
		return question, nil
	}

	prompt := fmt.Sprintf(rewritePromptTemplate, formatHistory(history), question)

	response, err := r.llm.Chat(ctx, []interfaces.Message{
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return "", fmt.Errorf("query rewrite failed: %w", err)
	}

	query := normalizeQuery(response)
	if query == "" {
		return "", &interfaces.MalformedResponseError{Service: "llm", Detail: "query rewrite returned empty query"}
	}

	r.logger.Debug().
		Str("question", question).
		Str("query", query).
		Int("history_turns", len(history)).
		Msg("Query rewritten with history")

	return query, nil
}

// normalizeQuery trims whitespace and one wrapping quote pair the model
// sometimes adds around its answer. Interior quotes are content and stay.
func normalizeQuery(response string) string {
	query := strings.TrimSpace(response)
	if len(query) >= 2 {
		first, last := query[0], query[len(query)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			query = strings.TrimSpace(query[1 : len(query)-1])
		}
	}
	return query
}

// formatHistory renders turns as role-prefixed lines for prompt inclusion.
func formatHistory(history []*models.ConversationTurn) string {
	var b strings.Builder
	for i, turn := range history {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(string(turn.Role))
		b.WriteString(": ")
		b.WriteString(turn.Content)
	}
	return b.String()
}
