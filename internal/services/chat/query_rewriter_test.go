package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/AjjayK/Kronia-Pesticide-LLM/internal/interfaces"
	"github.com/AjjayK/Kronia-Pesticide-LLM/internal/models"
)

// fakeLLM records the last messages it received and replies with a fixed
// response per call.
type fakeLLM struct {
	responses []string
	calls     int
	lastSent  []interfaces.Message
	allSent   [][]interfaces.Message
	lastSys   string
	err       error
}

func (f *fakeLLM) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	f.lastSent = messages
	f.allSent = append(f.allSent, messages)
	if f.err != nil {
		return "", f.err
	}
	if f.calls >= len(f.responses) {
		return "", errors.New("no scripted response left")
	}
	response := f.responses[f.calls]
	f.calls++
	return response, nil
}

func (f *fakeLLM) ChatWithSystem(ctx context.Context, system string, messages []interfaces.Message) (string, error) {
	f.lastSys = system
	return f.Chat(ctx, messages)
}

func (f *fakeLLM) HealthCheck(ctx context.Context) error { return nil }
func (f *fakeLLM) GetMode() interfaces.LLMMode           { return interfaces.LLMModeOffline }
func (f *fakeLLM) Close() error                          { return nil }

func turn(role models.Role, content string) *models.ConversationTurn {
	return &models.ConversationTurn{Role: role, Content: content}
}

func TestRewriteBypassedWithoutHistory(t *testing.T) {
	llm := &fakeLLM{responses: []string{"should never be used"}}
	rewriter := NewQueryRewriter(llm, arbor.NewLogger())

	query, err := rewriter.Rewrite(context.Background(), nil, "What is the REI for Sevin?")
	require.NoError(t, err)
	assert.Equal(t, "What is the REI for Sevin?", query)
	assert.Equal(t, 0, llm.calls, "rewriter must not call the model without history")
}

func TestRewriteUsesHistory(t *testing.T) {
	llm := &fakeLLM{responses: []string{"restricted entry interval for Sevin on tomatoes"}}
	rewriter := NewQueryRewriter(llm, arbor.NewLogger())

	history := []*models.ConversationTurn{
		turn(models.RoleUser, "Tell me about Sevin on tomatoes"),
		turn(models.RoleAssistant, "Sevin is a carbaryl insecticide..."),
	}

	query, err := rewriter.Rewrite(context.Background(), history, "What is the REI?")
	require.NoError(t, err)
	assert.Equal(t, "restricted entry interval for Sevin on tomatoes", query)

	require.Len(t, llm.lastSent, 1)
	prompt := llm.lastSent[0].Content
	assert.Contains(t, prompt, "user: Tell me about Sevin on tomatoes")
	assert.Contains(t, prompt, "assistant: Sevin is a carbaryl insecticide...")
	assert.Contains(t, prompt, "<question>\nWhat is the REI?")
}

func TestRewriteErrorPropagates(t *testing.T) {
	llm := &fakeLLM{err: errors.New("model unavailable")}
	rewriter := NewQueryRewriter(llm, arbor.NewLogger())

	_, err := rewriter.Rewrite(context.Background(), []*models.ConversationTurn{
		turn(models.RoleUser, "earlier question"),
	}, "follow-up")
	assert.Error(t, err)
}

func TestNormalizeQuery(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "sevin dosage tomatoes", "sevin dosage tomatoes"},
		{"wrapping double quotes", `"sevin dosage tomatoes"`, "sevin dosage tomatoes"},
		{"wrapping single quotes", "'sevin dosage'", "sevin dosage"},
		{"interior quotes kept", `rate for "Sevin XLR" on corn`, `rate for "Sevin XLR" on corn`},
		{"whitespace trimmed", "  query  \n", "query"},
		{"lone quote kept", `"`, `"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeQuery(tt.in))
		})
	}
}
